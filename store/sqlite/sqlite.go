/*
Package sqlite provides SQLite-backed persistence of weeks and tasks.

PURPOSE:
  The engine itself is a pure calculation library; this package owns the
  rows it calculates over. Weeks carry their pay configuration, tasks
  belong to exactly one week and cascade-delete with it.

KEY TABLES:
  weeks: Label plus per-week bonus and office-hour configuration
  tasks: One audited unit of work; FK to weeks with ON DELETE CASCADE

WEEK ORDERING:
  Week labels are "dd/MM/yyyy - dd/MM/yyyy" strings. ListWeeks sorts
  chronologically by parsing the start date out of the label, tolerating
  a few legacy date formats; labels that parse with none of them sort
  first rather than failing the listing.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single SQLite
  connection. Opened with WAL for better read concurrency and foreign
  keys on so week deletion cascades.

USAGE:
  store, err := sqlite.New("./tasks.db")   // ":memory:" for tests
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - engine/types.go: The Task and WeekConfig values stored here
  - api/handlers.go: The consumer of this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tally/earnings-engine/engine"
)

// Sentinel errors. Use with errors.Is().
var (
	ErrWeekNotFound = errors.New("week not found")
	ErrTaskNotFound = errors.New("task not found")
)

// Store implements weeks/tasks persistence on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store backed by the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS weeks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week_label TEXT NOT NULL,
		is_bonus_week INTEGER NOT NULL DEFAULT 0,
		use_global_bonus_settings INTEGER NOT NULL DEFAULT 1,
		bonus_start_day INTEGER NOT NULL DEFAULT 0,
		bonus_start_time TEXT NOT NULL DEFAULT '',
		bonus_end_day INTEGER NOT NULL DEFAULT 0,
		bonus_end_time TEXT NOT NULL DEFAULT '',
		bonus_payrate REAL NOT NULL DEFAULT 0,
		enable_task_bonus INTEGER NOT NULL DEFAULT 0,
		bonus_task_threshold INTEGER NOT NULL DEFAULT 0,
		bonus_additional_amount REAL NOT NULL DEFAULT 0,
		office_hour_count INTEGER NOT NULL DEFAULT 0,
		office_hour_payrate REAL NOT NULL DEFAULT 0,
		office_hour_session_minutes INTEGER NOT NULL DEFAULT 0,
		use_global_office_hours INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week_id INTEGER NOT NULL,
		duration TEXT NOT NULL DEFAULT '00:00:00',
		time_limit TEXT NOT NULL DEFAULT '00:00:00',
		score INTEGER,
		project_name TEXT NOT NULL DEFAULT '',
		locale TEXT NOT NULL DEFAULT '',
		date_audited TEXT NOT NULL DEFAULT '',
		time_begin TEXT NOT NULL DEFAULT '',
		time_end TEXT NOT NULL DEFAULT '',
		bonus_paid INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (week_id) REFERENCES weeks(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_week ON tasks(week_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_date_audited ON tasks(date_audited);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WEEKS
// =============================================================================

const weekColumns = `id, week_label, is_bonus_week, use_global_bonus_settings,
	bonus_start_day, bonus_start_time, bonus_end_day, bonus_end_time,
	bonus_payrate, enable_task_bonus, bonus_task_threshold,
	bonus_additional_amount, office_hour_count, office_hour_payrate,
	office_hour_session_minutes, use_global_office_hours`

// CreateWeek inserts a week and returns its assigned ID.
func (s *Store) CreateWeek(ctx context.Context, w engine.WeekConfig) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO weeks (week_label, is_bonus_week, use_global_bonus_settings,
			bonus_start_day, bonus_start_time, bonus_end_day, bonus_end_time,
			bonus_payrate, enable_task_bonus, bonus_task_threshold,
			bonus_additional_amount, office_hour_count, office_hour_payrate,
			office_hour_session_minutes, use_global_office_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.Label, w.IsBonusWeek, w.UseGlobalBonusSettings,
		w.BonusStartDay, w.BonusStartTime, w.BonusEndDay, w.BonusEndTime,
		w.BonusPayrate, w.EnableTaskBonus, w.BonusTaskThreshold,
		w.BonusAdditionalAmount, w.OfficeHourCount, w.OfficeHourPayrate,
		w.OfficeHourSessionMinutes, w.UseGlobalOfficeHours)
	if err != nil {
		return 0, fmt.Errorf("insert week: %w", err)
	}
	return res.LastInsertId()
}

// UpdateWeek rewrites a week's label and configuration.
func (s *Store) UpdateWeek(ctx context.Context, w engine.WeekConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE weeks SET week_label = ?, is_bonus_week = ?,
			use_global_bonus_settings = ?, bonus_start_day = ?,
			bonus_start_time = ?, bonus_end_day = ?, bonus_end_time = ?,
			bonus_payrate = ?, enable_task_bonus = ?, bonus_task_threshold = ?,
			bonus_additional_amount = ?, office_hour_count = ?,
			office_hour_payrate = ?, office_hour_session_minutes = ?,
			use_global_office_hours = ?
		WHERE id = ?`,
		w.Label, w.IsBonusWeek, w.UseGlobalBonusSettings,
		w.BonusStartDay, w.BonusStartTime, w.BonusEndDay, w.BonusEndTime,
		w.BonusPayrate, w.EnableTaskBonus, w.BonusTaskThreshold,
		w.BonusAdditionalAmount, w.OfficeHourCount, w.OfficeHourPayrate,
		w.OfficeHourSessionMinutes, w.UseGlobalOfficeHours, w.ID)
	if err != nil {
		return fmt.Errorf("update week: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWeekNotFound
	}
	return nil
}

// GetWeek loads one week by ID.
func (s *Store) GetWeek(ctx context.Context, id int64) (*engine.WeekConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+weekColumns+` FROM weeks WHERE id = ?`, id)
	w, err := scanWeek(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWeekNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWeeks returns all weeks sorted chronologically by the start date
// parsed from their label.
func (s *Store) ListWeeks(ctx context.Context) ([]engine.WeekConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+weekColumns+` FROM weeks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	defer rows.Close()

	var weeks []engine.WeekConfig
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		return labelStartDate(weeks[i].Label).Before(labelStartDate(weeks[j].Label))
	})
	return weeks, nil
}

// DeleteWeek removes a week; its tasks cascade.
func (s *Store) DeleteWeek(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM weeks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete week: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWeekNotFound
	}
	return nil
}

// labelFormats are the date layouts historically seen at the front of
// week labels.
var labelFormats = []string{"02/01/2006", "01/02/2006", "2006-01-02", "02-01-2006"}

// labelStartDate parses the start date out of a "start - end" week
// label. Unparseable labels get a very old date so they sort first
// instead of breaking the listing.
func labelStartDate(label string) time.Time {
	start, _, _ := strings.Cut(label, " - ")
	start = strings.TrimSpace(start)
	for _, layout := range labelFormats {
		if t, err := time.Parse(layout, start); err == nil {
			return t
		}
	}
	return time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWeek(row rowScanner) (engine.WeekConfig, error) {
	var w engine.WeekConfig
	err := row.Scan(&w.ID, &w.Label, &w.IsBonusWeek, &w.UseGlobalBonusSettings,
		&w.BonusStartDay, &w.BonusStartTime, &w.BonusEndDay, &w.BonusEndTime,
		&w.BonusPayrate, &w.EnableTaskBonus, &w.BonusTaskThreshold,
		&w.BonusAdditionalAmount, &w.OfficeHourCount, &w.OfficeHourPayrate,
		&w.OfficeHourSessionMinutes, &w.UseGlobalOfficeHours)
	if err != nil {
		return engine.WeekConfig{}, err
	}
	return w, nil
}

// =============================================================================
// TASKS
// =============================================================================

const taskColumns = `id, week_id, duration, time_limit, score, project_name,
	locale, date_audited, time_begin, time_end, bonus_paid`

// AddTask inserts a task and returns its assigned ID.
func (s *Store) AddTask(ctx context.Context, t engine.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (week_id, duration, time_limit, score, project_name,
			locale, date_audited, time_begin, time_end, bonus_paid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.WeekID, t.Duration, t.TimeLimit, scoreValue(t.Score),
		t.ProjectName, t.Locale, t.DateAudited, t.TimeBegin, t.TimeEnd,
		t.BonusPaid)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTask rewrites a task's editable fields.
func (s *Store) UpdateTask(ctx context.Context, t engine.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET duration = ?, time_limit = ?, score = ?,
			project_name = ?, locale = ?, date_audited = ?,
			time_begin = ?, time_end = ?, bonus_paid = ?
		WHERE id = ?`,
		t.Duration, t.TimeLimit, scoreValue(t.Score),
		t.ProjectName, t.Locale, t.DateAudited, t.TimeBegin, t.TimeEnd,
		t.BonusPaid, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// GetTask loads one task by ID.
func (s *Store) GetTask(ctx context.Context, id int64) (*engine.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrTaskNotFound
	}
	return &tasks[0], nil
}

// TasksByWeek lists a week's tasks in insertion order.
func (s *Store) TasksByWeek(ctx context.Context, weekID int64) ([]engine.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE week_id = ? ORDER BY id`, weekID)
}

// TasksByDateRange lists tasks with date_audited inside [start, end],
// both "YYYY-MM-DD", inclusive.
func (s *Store) TasksByDateRange(ctx context.Context, start, end string) ([]engine.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE date_audited BETWEEN ? AND ? ORDER BY date_audited, id`,
		start, end)
}

// DeleteTask removes one task.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTasks removes a batch of tasks in one transaction and reports
// how many rows actually existed.
func (s *Store) DeleteTasks(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var deleted int64
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("delete task %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		deleted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]engine.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []engine.Task
	for rows.Next() {
		var t engine.Task
		var score sql.NullInt64
		err := rows.Scan(&t.ID, &t.WeekID, &t.Duration, &t.TimeLimit, &score,
			&t.ProjectName, &t.Locale, &t.DateAudited, &t.TimeBegin,
			&t.TimeEnd, &t.BonusPaid)
		if err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			t.Score = &v
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scoreValue(score *int) any {
	if score == nil {
		return nil
	}
	return *score
}

// Reset wipes all rows. Dev/test helper.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks; DELETE FROM weeks;`)
	return err
}

/*
scheduler.go - Automated week rollover

PURPOSE:
  Periodically checks whether the newest audit week has ended and, when
  auto-creation is enabled in settings, creates the following week so
  new tasks always have a current week to land in.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Reads the week list, parses the newest label's end date
  - Creates the next 7-day week once the end boundary (end date at the
    configured week end hour) has passed
  - Skips creation when the next label already exists (idempotent)

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewWeekRolloverScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - factory/settings.go: Week-duration defaults and the auto-create flag
*/
package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tally/earnings-engine/engine"
	"github.com/tally/earnings-engine/store/sqlite"
)

const weekLabelLayout = "02/01/2006"

// WeekRolloverScheduler creates the next audit week when the current one
// ends.
type WeekRolloverScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	now func() time.Time // test hook
}

// NewWeekRolloverScheduler creates a new scheduler.
func NewWeekRolloverScheduler(store *sqlite.Store, handler *Handler) *WeekRolloverScheduler {
	return &WeekRolloverScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
		now:           time.Now,
	}
}

// Start begins the scheduler.
func (ws *WeekRolloverScheduler) Start() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.Enabled {
		return
	}

	ws.ticker = time.NewTicker(ws.CheckInterval)
	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		for {
			select {
			case <-ws.ticker.C:
				if err := ws.RunOnce(context.Background()); err != nil {
					log.Printf("week rollover check failed: %v", err)
				}
			case <-ws.stop:
				return
			}
		}
	}()
	log.Printf("week rollover scheduler started (interval: %s)", ws.CheckInterval)
}

// Stop halts the scheduler and waits for the goroutine to exit.
func (ws *WeekRolloverScheduler) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.ticker == nil {
		return
	}
	ws.ticker.Stop()
	close(ws.stop)
	ws.wg.Wait()
	ws.ticker = nil
}

// RunOnce performs a single rollover check. Exported so a manual
// trigger or test can drive it directly.
func (ws *WeekRolloverScheduler) RunOnce(ctx context.Context) error {
	settings := ws.Handler.Settings()
	if !settings.Week.AutoCreateNext {
		return nil
	}

	weeks, err := ws.Store.ListWeeks(ctx)
	if err != nil {
		return fmt.Errorf("list weeks: %w", err)
	}
	if len(weeks) == 0 {
		// Nothing to roll over from; the first week is created by hand.
		return nil
	}

	latest := weeks[len(weeks)-1]
	start, end, ok := parseWeekLabel(latest.Label)
	if !ok {
		return fmt.Errorf("cannot parse week label %q", latest.Label)
	}

	boundary := end.Add(time.Duration(settings.Week.EndHour) * time.Hour)
	if ws.now().Before(boundary) {
		return nil
	}

	nextLabel := formatWeekLabel(start.AddDate(0, 0, 7), end.AddDate(0, 0, 7))
	for _, w := range weeks {
		if w.Label == nextLabel {
			return nil
		}
	}

	id, err := ws.Store.CreateWeek(ctx, engine.WeekConfig{
		Label:                  nextLabel,
		UseGlobalBonusSettings: true,
		UseGlobalOfficeHours:   true,
	})
	if err != nil {
		return fmt.Errorf("create week %q: %w", nextLabel, err)
	}
	log.Printf("created week %d (%s) by rollover", id, nextLabel)
	return nil
}

func parseWeekLabel(label string) (start, end time.Time, ok bool) {
	first, second, found := strings.Cut(label, " - ")
	if !found {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(weekLabelLayout, strings.TrimSpace(first))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(weekLabelLayout, strings.TrimSpace(second))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func formatWeekLabel(start, end time.Time) string {
	return start.Format(weekLabelLayout) + " - " + end.Format(weekLabelLayout)
}

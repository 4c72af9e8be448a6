package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/importer"
	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
)

// Scheduler fires the importer on a recurring cadence. Intervals that divide
// an hour evenly run on clock marks (:00, :05, :10, ...); anything else
// falls back to a fixed-period ticker. One instance owns one importer; the
// importer's own single-flight lock serializes scheduled and manual runs.
type Scheduler struct {
	imp      *importer.Importer
	settings *data.Settings

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	next    time.Time
}

func New(imp *importer.Importer, settings *data.Settings) *Scheduler {
	return &Scheduler{imp: imp, settings: settings}
}

// Start installs the recurring trigger. Starting a running scheduler is a
// warned no-op. The poll interval is resolved through the settings chain at
// start time; Restart picks up changes.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Printf("scheduler: already running")
		return
	}

	interval := s.settings.GetInt("poll_interval_minutes")
	if interval < 1 {
		log.Printf("scheduler: invalid poll interval %d, using 5", interval)
		interval = 5
	}
	every := time.Duration(interval) * time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	if time.Hour%every == 0 {
		log.Printf("scheduler: started, every %d minutes on clock marks", interval)
		go s.runAligned(ctx, every)
	} else {
		log.Printf("scheduler: started, every %d minutes (interval-based)", interval)
		go s.runInterval(ctx, every)
	}
}

// Stop prevents further runs. It does not wait for or cancel an in-flight
// import.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.next = time.Time{}
	log.Printf("scheduler: stopped")
}

// Restart applies a changed poll interval.
func (s *Scheduler) Restart() {
	log.Printf("scheduler: restarting with current settings")
	s.Stop()
	s.Start()
}

// Running reports scheduler state for the status endpoint.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled fire time, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.next.IsZero() {
		return nil
	}
	next := s.next
	return &next
}

func (s *Scheduler) setNext(t time.Time) {
	s.mu.Lock()
	s.next = t
	s.mu.Unlock()
}

// TriggerImport runs an on-demand import through the same importer the
// timer uses, so it shares the single-flight guard and all run semantics.
func (s *Scheduler) TriggerImport(ctx context.Context) (importer.Result, error) {
	return s.imp.Run(ctx)
}

// NextMark returns the first instant after now that sits on a clock mark of
// the given interval.
func NextMark(now time.Time, every time.Duration) time.Time {
	return now.Truncate(every).Add(every).In(now.Location())
}

func (s *Scheduler) runAligned(ctx context.Context, every time.Duration) {
	for {
		next := NextMark(timeutil.Now(), every)
		s.setNext(next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runInterval(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		s.setNext(timeutil.Now().Add(every))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	res, err := s.imp.Run(ctx)
	if errors.Is(err, importer.ErrRunInProgress) {
		// Overlap collapses to a drop, never a queue.
		log.Printf("scheduler: previous import still running, skipping this tick")
		return
	}
	if err != nil {
		log.Printf("scheduler: import did not start: %v", err)
		return
	}
	if !res.Success {
		log.Printf("scheduler: scheduled import failed: %s", res.Error)
	}
}

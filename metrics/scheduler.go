package metrics

import (
	"context"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/sirupsen/logrus"
)

// Ticker is implemented by instruments with moving averages.
type Ticker interface {
	Tick()
}

// Scheduler ticks registered instruments every interval from a background
// goroutine.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	logger   logrus.FieldLogger

	mu      sync.Mutex
	tickers []Ticker
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(clk clock.Clock, interval time.Duration, logger logrus.FieldLogger) *Scheduler {
	if clk == nil {
		clk = clock.NewClock()
	}
	if interval <= 0 {
		interval = TickInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{clock: clk, interval: interval, logger: logger}
}

// Add registers t. Instruments can be added while the scheduler runs.
func (s *Scheduler) Add(t Ticker) {
	s.mu.Lock()
	s.tickers = append(s.tickers, t)
	s.mu.Unlock()
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start begins ticking until ctx is done or Stop is called. Starting a
// running scheduler has no effect.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	ticker := s.clock.NewTicker(s.interval)

	s.wg.Add(1)
	go s.run(ctx, ticker)

	s.logger.WithField("interval", s.interval).Debug("metrics scheduler started")
}

func (s *Scheduler) run(ctx context.Context, ticker clock.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.TickAll()
		}
	}
}

// TickAll ticks every registered instrument once.
func (s *Scheduler) TickAll() {
	s.mu.Lock()
	tickers := make([]Ticker, len(s.tickers))
	copy(tickers, s.tickers)
	s.mu.Unlock()

	for _, t := range tickers {
		t.Tick()
	}
}

// Stop halts the background goroutine and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Debug("metrics scheduler stopped")
}

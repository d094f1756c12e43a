// internal/schedule/schedule.go
//
// Repeating tasks with cancel handles.
// Responsibilities:
//   - Scheduler: run fn every interval until its Handle is cancelled.
//   - Ticker: production implementation on time.Ticker, one goroutine per task.
//   - Manual: test implementation; tasks fire only when the test says so.
//
// Cancel is idempotent and never blocks, so a task may cancel itself.

package schedule

import (
	"sync"
	"time"
)

// Handle cancels a scheduled task.
type Handle interface {
	Cancel()
}

// Scheduler runs fn every interval until cancelled.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Handle
}

// Cancel cancels h if it is non-nil.
func Cancel(h Handle) {
	if h != nil {
		h.Cancel()
	}
}

// ----------------------------- Ticker --------------------------------------

// Ticker schedules tasks on real time.
type Ticker struct {
	wg sync.WaitGroup
}

// NewTicker returns a real-time scheduler.
func NewTicker() *Ticker { return &Ticker{} }

type tickerHandle struct {
	once sync.Once
	stop chan struct{}
}

func (h *tickerHandle) Cancel() { h.once.Do(func() { close(h.stop) }) }

// Every starts a goroutine that calls fn on each tick.
func (t *Ticker) Every(interval time.Duration, fn func()) Handle {
	h := &tickerHandle{stop: make(chan struct{})}
	tk := time.NewTicker(interval)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer tk.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-tk.C:
				// A cancel may race with a tick; prefer the cancel.
				select {
				case <-h.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

// Wait blocks until every task started by t has exited.
// Tasks must already be cancelled, otherwise Wait never returns.
func (t *Ticker) Wait() { t.wg.Wait() }

// ----------------------------- Manual --------------------------------------

// Manual is a Scheduler for tests: Tick fires every live task once.
type Manual struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	interval  time.Duration
	fn        func()
	cancelled bool
	m         *Manual
}

func (mt *manualTask) Cancel() {
	mt.m.mu.Lock()
	mt.cancelled = true
	mt.m.mu.Unlock()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual { return &Manual{} }

// Every registers fn; it runs only from Tick or Fire.
func (m *Manual) Every(interval time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt := &manualTask{interval: interval, fn: fn, m: m}
	m.tasks = append(m.tasks, mt)
	return mt
}

// Tick fires every live task once, in registration order.
// Tasks registered during the tick wait for the next one.
func (m *Manual) Tick() { m.fire(func(*manualTask) bool { return true }) }

// Fire fires every live task registered with the given interval once.
func (m *Manual) Fire(interval time.Duration) {
	m.fire(func(mt *manualTask) bool { return mt.interval == interval })
}

// Live reports how many tasks have not been cancelled.
func (m *Manual) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, mt := range m.tasks {
		if !mt.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) fire(match func(*manualTask) bool) {
	m.mu.Lock()
	batch := append([]*manualTask(nil), m.tasks...)
	m.mu.Unlock()
	for _, mt := range batch {
		m.mu.Lock()
		run := !mt.cancelled && match(mt)
		m.mu.Unlock()
		if run {
			mt.fn()
		}
	}
}

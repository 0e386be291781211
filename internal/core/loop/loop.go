package loop

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Updater is what the loop drives once per frame; *system.Manager satisfies it.
type Updater interface {
	UpdateAll(dt time.Duration)
}

// Scheduler arranges for fn to run once, later. The returned func cancels
// the call if it has not started yet.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// Loop is a frame clock. Each frame measures the time since the previous one
// and hands it to the Updater, then asks the Scheduler for the next frame.
// Frames never overlap: the next one is scheduled only after the current
// one returns.
type Loop struct {
	mu      sync.Mutex
	running bool
	gen     uint64 // bumped by Start so frames of an older run stop on their own
	last    time.Time
	hasLast bool
	cancel  func()
	frames  uint64

	updater Updater
	sched   Scheduler
	now     func() time.Time
	log     *zap.Logger
}

func New(u Updater, sched Scheduler, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		updater: u,
		sched:   sched,
		now:     time.Now,
		log:     log,
	}
}

// SetClock replaces time.Now, for deterministic tests.
func (l *Loop) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		l.log.Warn("game loop already running")
		return
	}
	l.running = true
	l.hasLast = false
	l.gen++
	l.schedule(l.gen)
}

// Stop cancels the next frame. A frame already in progress runs to the end.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		l.log.Warn("game loop already stopped")
		return
	}
	l.running = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Frames counts completed frames across all runs.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Run starts the loop and blocks until ctx is done, then stops it.
func (l *Loop) Run(ctx context.Context) {
	l.Start()
	<-ctx.Done()
	if l.Running() {
		l.Stop()
	}
}

// schedule must be called with mu held.
func (l *Loop) schedule(gen uint64) {
	l.cancel = l.sched.Schedule(func() { l.frame(gen) })
}

func (l *Loop) frame(gen uint64) {
	l.mu.Lock()
	if !l.running || gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.cancel = nil
	now := l.now()
	var dt time.Duration
	if l.hasLast {
		dt = now.Sub(l.last)
	}
	l.last, l.hasLast = now, true
	l.mu.Unlock()

	// Unlocked so a system may stop the loop from inside its update.
	l.updater.UpdateAll(dt)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	if !l.running || gen != l.gen {
		return
	}
	l.schedule(gen)
}

// TimerScheduler schedules frames a fixed interval apart on time.AfterFunc.
type TimerScheduler struct {
	interval time.Duration
}

func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TimerScheduler{interval: interval}
}

func (s *TimerScheduler) Schedule(fn func()) func() {
	t := time.AfterFunc(s.interval, fn)
	return func() { t.Stop() }
}

package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Timer states
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerPaused  TimerState = "paused"
	TimerExpired TimerState = "expired"
)

const dangerThreshold = 10 // seconds

// QuestionTimer is a countdown state machine for per-question and
// per-session time limits. Ticks arrive on a background goroutine, so all
// state access is mutex-guarded. The expiry callback fires exactly once.
type QuestionTimer struct {
	mu               sync.Mutex
	initialSeconds   int
	remaining        int
	state            TimerState
	warningThreshold int
	onExpiry         func()
	onTick           func(remaining int)
	expiryFired      bool
	stopTick         chan struct{}
}

// TimerOption configures a QuestionTimer
type TimerOption func(*QuestionTimer)

// WithWarningThreshold overrides the default 30s warning band
func WithWarningThreshold(seconds int) TimerOption {
	return func(t *QuestionTimer) {
		t.warningThreshold = seconds
	}
}

// WithOnTick registers a per-second callback with the remaining count
func WithOnTick(fn func(remaining int)) TimerOption {
	return func(t *QuestionTimer) {
		t.onTick = fn
	}
}

// NewQuestionTimer creates an idle timer with the given duration and
// expiry callback. onExpiry may be nil.
func NewQuestionTimer(initialSeconds int, onExpiry func(), opts ...TimerOption) *QuestionTimer {
	t := &QuestionTimer{
		initialSeconds:   initialSeconds,
		remaining:        initialSeconds,
		state:            TimerIdle,
		warningThreshold: 30,
		onExpiry:         onExpiry,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start transitions idle/paused to running. A timer with no remaining
// seconds never starts.
func (t *QuestionTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TimerRunning || t.state == TimerExpired {
		return
	}
	if t.remaining <= 0 {
		return
	}

	t.state = TimerRunning
	t.stopTick = make(chan struct{})
	go t.run(t.stopTick)

	slog.Debug("Timer started", "remaining", t.remaining)
}

func (t *QuestionTimer) run(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.tick() {
				return
			}
		}
	}
}

// tick deducts one second; returns false once the timer leaves running
func (t *QuestionTimer) tick() bool {
	t.mu.Lock()

	if t.state != TimerRunning {
		t.mu.Unlock()
		return false
	}

	t.remaining--
	remaining := t.remaining
	onTick := t.onTick

	var expiry func()
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = TimerExpired
		if !t.expiryFired {
			t.expiryFired = true
			expiry = t.onExpiry
		}
	}
	t.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if expiry != nil {
		slog.Info("Timer expired")
		expiry()
		return false
	}
	return true
}

// Pause halts ticking without resetting the remaining time
func (t *QuestionTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerRunning {
		return
	}
	t.state = TimerPaused
	close(t.stopTick)
	t.stopTick = nil
}

// Reset returns to idle with the original duration and re-arms the expiry
// callback.
func (t *QuestionTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
	t.state = TimerIdle
	t.remaining = t.initialSeconds
	t.expiryFired = false
}

// AddTime adds seconds to the remaining count in any state without
// changing state; an expired timer does not resume.
func (t *QuestionTimer) AddTime(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining += seconds
}

// Stop tears the timer down; used when a session ends mid-question
func (t *QuestionTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
	if t.state == TimerRunning {
		t.state = TimerPaused
	}
}

// Remaining returns the current countdown value
func (t *QuestionTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// State returns the current timer state
func (t *QuestionTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsWarning reports whether the countdown entered the warning band
func (t *QuestionTimer) IsWarning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining <= t.warningThreshold && t.remaining > dangerThreshold
}

// IsDanger reports whether the countdown is in the final stretch
func (t *QuestionTimer) IsDanger() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining <= dangerThreshold
}

// FormattedTime renders the remaining time as mm:ss
func (t *QuestionTimer) FormattedTime() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("%02d:%02d", t.remaining/60, t.remaining%60)
}

package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerDoesNotStartAtZero(t *testing.T) {
	timer := NewQuestionTimer(0, nil)
	timer.Start()
	if got := timer.State(); got != TimerIdle {
		t.Errorf("timer with no remaining time started, state = %s", got)
	}
}

func TestTimerExpiresExactlyOnce(t *testing.T) {
	var fired int32
	timer := NewQuestionTimer(1, func() {
		atomic.AddInt32(&fired, 1)
	})
	timer.Start()

	time.Sleep(2500 * time.Millisecond)

	if got := timer.State(); got != TimerExpired {
		t.Fatalf("state = %s, expected expired", got)
	}
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("expiry callback fired %d times, expected 1", got)
	}
	if got := timer.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d after expiry, expected 0", got)
	}
}

func TestTimerAddTimeWhileExpiredDoesNotResume(t *testing.T) {
	timer := NewQuestionTimer(1, nil)
	timer.Start()
	time.Sleep(1500 * time.Millisecond)

	if got := timer.State(); got != TimerExpired {
		t.Fatalf("state = %s, expected expired", got)
	}

	timer.AddTime(30)
	if got := timer.Remaining(); got != 30 {
		t.Errorf("Remaining() = %d after AddTime, expected 30", got)
	}
	if got := timer.State(); got != TimerExpired {
		t.Errorf("AddTime changed state to %s, expected still expired", got)
	}

	// An expired timer never restarts
	timer.Start()
	if got := timer.State(); got != TimerExpired {
		t.Errorf("Start() resumed an expired timer, state = %s", got)
	}
}

func TestTimerPauseHoldsRemaining(t *testing.T) {
	timer := NewQuestionTimer(60, nil)
	timer.Start()
	timer.Pause()

	if got := timer.State(); got != TimerPaused {
		t.Fatalf("state = %s, expected paused", got)
	}

	remaining := timer.Remaining()
	time.Sleep(1200 * time.Millisecond)
	if got := timer.Remaining(); got != remaining {
		t.Errorf("Remaining() changed from %d to %d while paused", remaining, got)
	}
}

func TestTimerResetRearmsExpiry(t *testing.T) {
	var fired int32
	timer := NewQuestionTimer(1, func() {
		atomic.AddInt32(&fired, 1)
	})

	timer.Start()
	time.Sleep(1500 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("expiry fired %d times before reset, expected 1", got)
	}

	timer.Reset()
	if got := timer.State(); got != TimerIdle {
		t.Fatalf("state after reset = %s, expected idle", got)
	}
	if got := timer.Remaining(); got != 1 {
		t.Fatalf("Remaining() after reset = %d, expected 1", got)
	}

	timer.Start()
	time.Sleep(1500 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Errorf("expiry fired %d times total, expected 2 after reset", got)
	}
}

func TestTimerWarningAndDangerBands(t *testing.T) {
	tests := []struct {
		name        string
		seconds     int
		wantWarning bool
		wantDanger  bool
	}{
		{"well above warning", 120, false, false},
		{"inside warning band", 25, true, false},
		{"at warning threshold", 30, true, false},
		{"inside danger band", 8, false, true},
		{"at danger threshold", 10, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := NewQuestionTimer(tt.seconds, nil)
			if got := timer.IsWarning(); got != tt.wantWarning {
				t.Errorf("IsWarning() = %v, expected %v", got, tt.wantWarning)
			}
			if got := timer.IsDanger(); got != tt.wantDanger {
				t.Errorf("IsDanger() = %v, expected %v", got, tt.wantDanger)
			}
		})
	}
}

func TestTimerCustomWarningThreshold(t *testing.T) {
	// Session-level countdowns warn earlier than question countdowns
	timer := NewQuestionTimer(250, nil, WithWarningThreshold(300))
	if !timer.IsWarning() {
		t.Error("IsWarning() = false with a 300s threshold at 250s remaining")
	}
}

func TestTimerFormattedTime(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{9, "00:09"},
		{60, "01:00"},
		{90, "01:30"},
		{605, "10:05"},
	}

	for _, tt := range tests {
		timer := NewQuestionTimer(tt.seconds, nil)
		if got := timer.FormattedTime(); got != tt.expected {
			t.Errorf("FormattedTime() for %ds = %q, expected %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestTimerOnTickReportsCountdown(t *testing.T) {
	var last int32 = -1
	timer := NewQuestionTimer(2, nil, WithOnTick(func(remaining int) {
		atomic.StoreInt32(&last, int32(remaining))
	}))
	timer.Start()
	time.Sleep(1500 * time.Millisecond)
	timer.Pause()

	if got := atomic.LoadInt32(&last); got != 1 {
		t.Errorf("last tick reported %d remaining, expected 1", got)
	}
}

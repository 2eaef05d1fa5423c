package models

import "testing"

func TestCanComplete(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{StatusSetup, false},
		{StatusInProgress, true},
		{StatusCompleted, false},
		{StatusAbandoned, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			session := &InterviewSession{Status: tt.status}
			if got := session.CanComplete(); got != tt.expected {
				t.Errorf("CanComplete() with status %s = %v, expected %v", tt.status, got, tt.expected)
			}
		})
	}
}

package services

import "testing"

func TestVoiceForInterviewerDeterministic(t *testing.T) {
	first := VoiceForInterviewer("Hương")
	for i := 0; i < 5; i++ {
		if got := VoiceForInterviewer("Hương"); got != first {
			t.Fatalf("voice changed between calls: %q then %q", first, got)
		}
	}
}

func TestVoiceForInterviewerPools(t *testing.T) {
	female := map[string]bool{}
	for _, v := range femaleVoices {
		female[v] = true
	}
	male := map[string]bool{}
	for _, v := range maleVoices {
		male[v] = true
	}

	tests := []struct {
		name       string
		wantFemale bool
	}{
		{"Hương", true},
		{"Sarah", true},
		{"sarah", true},
		{"Tuấn", false},
		{"David", false},
	}

	for _, tt := range tests {
		voice := VoiceForInterviewer(tt.name)
		if tt.wantFemale && !female[voice] {
			t.Errorf("VoiceForInterviewer(%q) = %q, expected a female-pool voice", tt.name, voice)
		}
		if !tt.wantFemale && !male[voice] {
			t.Errorf("VoiceForInterviewer(%q) = %q, expected a male-pool voice", tt.name, voice)
		}
	}
}

func TestNewTTSServiceWithoutKey(t *testing.T) {
	if svc := NewTTSService("", nil); svc != nil {
		t.Error("NewTTSService with empty key should return nil")
	}
}

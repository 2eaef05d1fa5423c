package services

import (
	"strings"
	"testing"
)

func validSetup() SessionSetup {
	return SessionSetup{
		Role:           "backend",
		Level:          "junior",
		Mode:           "mixed",
		Language:       "vi",
		TotalQuestions: 5,
	}
}

func TestValidateSessionSetup(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*SessionSetup)
		wantErrors int
	}{
		{
			name:       "valid setup",
			mutate:     func(s *SessionSetup) {},
			wantErrors: 0,
		},
		{
			name:       "minimum question count accepted",
			mutate:     func(s *SessionSetup) { s.TotalQuestions = 1 },
			wantErrors: 0,
		},
		{
			name:       "maximum question count accepted",
			mutate:     func(s *SessionSetup) { s.TotalQuestions = 50 },
			wantErrors: 0,
		},
		{
			name:       "zero questions rejected",
			mutate:     func(s *SessionSetup) { s.TotalQuestions = 0 },
			wantErrors: 1,
		},
		{
			name:       "too many questions rejected",
			mutate:     func(s *SessionSetup) { s.TotalQuestions = 51 },
			wantErrors: 1,
		},
		{
			name:       "unknown role",
			mutate:     func(s *SessionSetup) { s.Role = "astronaut" },
			wantErrors: 1,
		},
		{
			name:       "business role accepted",
			mutate:     func(s *SessionSetup) { s.Role = "marketing" },
			wantErrors: 0,
		},
		{
			name:       "unknown level",
			mutate:     func(s *SessionSetup) { s.Level = "principal" },
			wantErrors: 1,
		},
		{
			name:       "unknown mode",
			mutate:     func(s *SessionSetup) { s.Mode = "rapid_fire" },
			wantErrors: 1,
		},
		{
			name:       "unknown language",
			mutate:     func(s *SessionSetup) { s.Language = "fr" },
			wantErrors: 1,
		},
		{
			name:       "jd text too long",
			mutate:     func(s *SessionSetup) { s.JDText = strings.Repeat("a", MaxTextLen+1) },
			wantErrors: 1,
		},
		{
			name: "multiple errors collected",
			mutate: func(s *SessionSetup) {
				s.Role = "astronaut"
				s.Level = "principal"
				s.TotalQuestions = 0
			},
			wantErrors: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := validSetup()
			tt.mutate(&setup)
			errs := ValidateSessionSetup(setup)
			if len(errs) != tt.wantErrors {
				t.Errorf("ValidateSessionSetup() returned %d errors (%v), expected %d",
					len(errs), errs, tt.wantErrors)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Tell me about yourself",
			expected: "Tell me about yourself",
		},
		{
			name:     "html tags stripped",
			input:    "<script>alert(1)</script>hello",
			expected: "alert(1)hello",
		},
		{
			name:     "dangerous characters removed",
			input:    `a<b>"c"'d'`,
			expected: "abcd",
		},
		{
			name:     "whitespace trimmed",
			input:    "   padded answer   ",
			expected: "padded answer",
		},
		{
			name:     "vietnamese text preserved",
			input:    "Tôi là lập trình viên backend",
			expected: "Tôi là lập trình viên backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeTextCapsLength(t *testing.T) {
	long := strings.Repeat("ề", MaxTextLen+500)
	got := SanitizeText(long)
	if runeLen := len([]rune(got)); runeLen != MaxTextLen {
		t.Errorf("SanitizeText() kept %d runes, expected cap at %d", runeLen, MaxTextLen)
	}
}

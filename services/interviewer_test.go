package services

import (
	"testing"
)

func TestInterviewerNameDeterministic(t *testing.T) {
	sessionID := "2b0f8c1e-9a6d-4a7c-8f3b-1d2e3f4a5b6c"

	first := InterviewerName(sessionID, "vi")
	for i := 0; i < 10; i++ {
		if got := InterviewerName(sessionID, "vi"); got != first {
			t.Fatalf("InterviewerName changed between calls: %q then %q", first, got)
		}
	}
}

func TestInterviewerNamePerLanguagePool(t *testing.T) {
	sessionID := "7f3a9b2c-1d4e-4f5a-9b8c-0d1e2f3a4b5c"

	viName := InterviewerName(sessionID, "vi")
	if !contains(viInterviewerNames, viName) {
		t.Errorf("vi name %q not in the Vietnamese pool", viName)
	}

	enName := InterviewerName(sessionID, "en")
	if !contains(enInterviewerNames, enName) {
		t.Errorf("en name %q not in the English pool", enName)
	}

	// Unknown languages fall back to the English pool
	fallback := InterviewerName(sessionID, "fr")
	if !contains(enInterviewerNames, fallback) {
		t.Errorf("fallback name %q not in the English pool", fallback)
	}
}

func TestRoleTopicsCoverAllRoles(t *testing.T) {
	for _, role := range InterviewRoles {
		topics, ok := roleTopics[role]
		if !ok {
			t.Errorf("no topics defined for role %q", role)
			continue
		}
		if len(topics) == 0 {
			t.Errorf("empty topic list for role %q", role)
		}
	}
}

func TestLevelExpectationsCoverAllLevels(t *testing.T) {
	for _, level := range InterviewLevels {
		if _, ok := levelExpectations[level]; !ok {
			t.Errorf("no expectations defined for level %q", level)
		}
	}
}

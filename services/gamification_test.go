package services

import "testing"

func TestChallengeTemplates(t *testing.T) {
	if len(challengeTemplates) != 7 {
		t.Fatalf("challenge template count = %d, expected 7", len(challengeTemplates))
	}

	validTypes := map[string]bool{
		"interview": true,
		"questions": true,
		"score":     true,
		"streak":    true,
	}

	for i, tmpl := range challengeTemplates {
		if !validTypes[tmpl.ChallengeType] {
			t.Errorf("template %d has unknown type %q", i, tmpl.ChallengeType)
		}
		if tmpl.TargetValue <= 0 {
			t.Errorf("template %d (%s) has target %d, expected > 0", i, tmpl.Title, tmpl.TargetValue)
		}
		if tmpl.XPReward <= 0 {
			t.Errorf("template %d (%s) has XP reward %d, expected > 0", i, tmpl.Title, tmpl.XPReward)
		}
		if tmpl.Title == "" || tmpl.TitleVi == "" {
			t.Errorf("template %d is missing a bilingual title", i)
		}
	}
}

func TestScoreChallengeTargetsWithinScale(t *testing.T) {
	for _, tmpl := range challengeTemplates {
		if tmpl.ChallengeType != "score" {
			continue
		}
		if tmpl.TargetValue < 1 || tmpl.TargetValue > 5 {
			t.Errorf("score challenge %q target %d outside the 0-5 scale", tmpl.Title, tmpl.TargetValue)
		}
	}
}

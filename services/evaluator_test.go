package services

import (
	"math"
	"testing"

	"github.com/prepmate/backend/models"
)

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name     string
		scores   models.AnswerScores
		expected float64
	}{
		{
			name:     "all zeros",
			scores:   scoresWith(0, 0, 0, 0),
			expected: 0,
		},
		{
			name:     "all fives",
			scores:   scoresWith(5, 5, 5, 5),
			expected: 5,
		},
		{
			name:     "relevance and depth weigh more",
			scores:   scoresWith(5, 0, 5, 0),
			expected: 3.0, // 0.3*5 + 0.3*5
		},
		{
			name:     "structure and clarity weigh less",
			scores:   scoresWith(0, 5, 0, 5),
			expected: 2.0, // 0.2*5 + 0.2*5
		},
		{
			name:     "mixed scores",
			scores:   scoresWith(4, 3, 2, 5),
			expected: 0.3*4 + 0.3*2 + 0.2*3 + 0.2*5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverallScore(tt.scores)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("OverallScore() = %f, expected %f", got, tt.expected)
			}
		})
	}
}

func TestOverallScoreIgnoresModelOverall(t *testing.T) {
	// A model-supplied overall must never leak into the weighted result
	scores := scoresWith(3, 3, 3, 3)
	scores.Overall = 5
	if got := OverallScore(scores); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("OverallScore() = %f, expected 3.0 regardless of stored overall", got)
	}
}

func TestValidateScores(t *testing.T) {
	tests := []struct {
		name    string
		scores  models.AnswerScores
		wantErr bool
	}{
		{"all in range", scoresWith(0, 2.5, 5, 3), false},
		{"boundary values accepted", scoresWith(0, 0, 5, 5), false},
		{"negative relevance", scoresWith(-0.1, 3, 3, 3), true},
		{"structure above five", scoresWith(3, 5.1, 3, 3), true},
		{"depth above five", scoresWith(3, 3, 6, 3), true},
		{"negative clarity", scoresWith(3, 3, 3, -2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScores(tt.scores)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateScores() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*ParseError); !ok {
					t.Errorf("validateScores() error type = %T, expected *ParseError", err)
				}
			}
		})
	}
}

func TestDifficultyRaiseThreshold(t *testing.T) {
	tests := []struct {
		name    string
		overall float64
		raise   bool
	}{
		{"below threshold", 3.9, false},
		{"exactly at threshold", 4.0, true},
		{"above threshold", 4.7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.overall >= difficultyRaiseThreshold; got != tt.raise {
				t.Errorf("raise at %f = %v, expected %v", tt.overall, got, tt.raise)
			}
		})
	}
}

func TestLevelRubricsCoverAllLevels(t *testing.T) {
	for _, level := range InterviewLevels {
		if _, ok := levelRubrics[level]; !ok {
			t.Errorf("no rubric defined for level %q", level)
		}
	}
}

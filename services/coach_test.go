package services

import (
	"math"
	"testing"

	"github.com/prepmate/backend/models"
)

func scoresWith(relevance, structure, depth, clarity float64) models.AnswerScores {
	return models.AnswerScores{
		Relevance: relevance,
		Structure: structure,
		Depth:     depth,
		Clarity:   clarity,
	}
}

func uniformScores(value float64, count int) []models.AnswerScores {
	scores := make([]models.AnswerScores, count)
	for i := range scores {
		scores[i] = scoresWith(value, value, value, value)
	}
	return scores
}

func findSkill(t *testing.T, analysis []SkillAnalysis, skill string) SkillAnalysis {
	t.Helper()
	for _, a := range analysis {
		if a.Skill == skill {
			return a
		}
	}
	t.Fatalf("skill %q missing from analysis", skill)
	return SkillAnalysis{}
}

func TestAnalyzeSkillsEmptyHistory(t *testing.T) {
	if analysis := AnalyzeSkills(nil); len(analysis) != 0 {
		t.Errorf("AnalyzeSkills(nil) returned %d entries, expected 0", len(analysis))
	}
}

func TestAnalyzeSkillsAverages(t *testing.T) {
	scores := []models.AnswerScores{
		scoresWith(4, 3, 2, 5),
		scoresWith(2, 3, 4, 3),
	}

	analysis := AnalyzeSkills(scores)
	if len(analysis) != 4 {
		t.Fatalf("expected 4 skills, got %d", len(analysis))
	}

	relevance := findSkill(t, analysis, "relevance")
	if math.Abs(relevance.AvgScore-3.0) > 1e-9 {
		t.Errorf("relevance avg = %f, expected 3.0", relevance.AvgScore)
	}
	if relevance.Count != 2 {
		t.Errorf("relevance count = %d, expected 2", relevance.Count)
	}

	clarity := findSkill(t, analysis, "clarity")
	if math.Abs(clarity.AvgScore-4.0) > 1e-9 {
		t.Errorf("clarity avg = %f, expected 4.0", clarity.AvgScore)
	}
}

func TestSkillTrend(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected string
	}{
		{
			name:     "too few samples is stable",
			values:   []float64{1, 5, 1},
			expected: TrendStable,
		},
		{
			name:     "clear improvement",
			values:   []float64{2, 2, 4, 4},
			expected: TrendImproving,
		},
		{
			name:     "clear decline",
			values:   []float64{4.5, 4.5, 2, 2},
			expected: TrendDeclining,
		},
		{
			name:     "small shift inside the band",
			values:   []float64{3, 3, 3.2, 3.2},
			expected: TrendStable,
		},
		{
			name:     "exactly at the band edge stays stable",
			values:   []float64{3, 3, 3.3, 3.3},
			expected: TrendStable,
		},
		{
			name:     "odd length splits at the midpoint",
			values:   []float64{2, 2, 4, 4, 4},
			expected: TrendImproving,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := skillTrend(tt.values); got != tt.expected {
				t.Errorf("skillTrend(%v) = %s, expected %s", tt.values, got, tt.expected)
			}
		})
	}
}

func TestBuildRecommendations(t *testing.T) {
	tests := []struct {
		name           string
		analysis       []SkillAnalysis
		wantCount      int
		wantSkills     []string
		wantPriorities []int
	}{
		{
			name: "all skills strong yields nothing",
			analysis: []SkillAnalysis{
				{Skill: "relevance", AvgScore: 4.2},
				{Skill: "structure", AvgScore: 4.0},
				{Skill: "depth", AvgScore: 3.8},
				{Skill: "clarity", AvgScore: 4.5},
			},
			wantCount: 0,
		},
		{
			name: "bottom two weak skills selected",
			analysis: []SkillAnalysis{
				{Skill: "relevance", AvgScore: 4.0},
				{Skill: "structure", AvgScore: 3.0},
				{Skill: "depth", AvgScore: 2.0},
				{Skill: "clarity", AvgScore: 3.2},
			},
			wantCount:      2,
			wantSkills:     []string{"depth", "structure"},
			wantPriorities: []int{1, 2},
		},
		{
			name: "weak skill outside bottom two is skipped",
			analysis: []SkillAnalysis{
				{Skill: "relevance", AvgScore: 1.0},
				{Skill: "structure", AvgScore: 1.5},
				{Skill: "depth", AvgScore: 3.0},
				{Skill: "clarity", AvgScore: 4.0},
			},
			wantCount:      2,
			wantSkills:     []string{"relevance", "structure"},
			wantPriorities: []int{1, 1},
		},
		{
			name: "borderline 3.5 does not qualify",
			analysis: []SkillAnalysis{
				{Skill: "relevance", AvgScore: 3.5},
				{Skill: "structure", AvgScore: 3.4},
				{Skill: "depth", AvgScore: 4.0},
				{Skill: "clarity", AvgScore: 4.0},
			},
			wantCount:      1,
			wantSkills:     []string{"structure"},
			wantPriorities: []int{2},
		},
		{
			name: "exactly 2.5 is normal priority",
			analysis: []SkillAnalysis{
				{Skill: "depth", AvgScore: 2.5},
				{Skill: "clarity", AvgScore: 4.0},
			},
			wantCount:      1,
			wantSkills:     []string{"depth"},
			wantPriorities: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := BuildRecommendations("user-1", tt.analysis)
			if len(recs) != tt.wantCount {
				t.Fatalf("got %d recommendations, expected %d", len(recs), tt.wantCount)
			}
			for i, rec := range recs {
				if rec.RelatedSkill == nil || *rec.RelatedSkill != tt.wantSkills[i] {
					t.Errorf("rec %d skill = %v, expected %s", i, rec.RelatedSkill, tt.wantSkills[i])
				}
				if rec.Priority != tt.wantPriorities[i] {
					t.Errorf("rec %d priority = %d, expected %d", i, rec.Priority, tt.wantPriorities[i])
				}
				if rec.Title == "" || rec.Description == "" {
					t.Errorf("rec %d is missing coaching copy", i)
				}
				if rec.IsCompleted {
					t.Errorf("rec %d should start incomplete", i)
				}
			}
		})
	}
}

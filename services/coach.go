package services

import (
	"sort"

	"github.com/prepmate/backend/models"
)

// Skill trend labels
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// SkillNames are the fixed axes along which answers are scored
var SkillNames = []string{"relevance", "structure", "depth", "clarity"}

// SkillAnalysis summarizes one skill dimension over a user's history
type SkillAnalysis struct {
	Skill    string  `json:"skill"`
	AvgScore float64 `json:"avg_score"`
	Count    int     `json:"count"`
	Trend    string  `json:"trend"`
}

// recommendationCopy is the fixed coaching text keyed by skill name
var recommendationCopy = map[string]struct {
	Title       string
	Description string
}{
	"relevance": {
		Title:       "Cải thiện tính liên quan",
		Description: "Tập trung vào việc trả lời đúng trọng tâm câu hỏi. Hãy xác định yêu cầu chính trước khi trả lời.",
	},
	"structure": {
		Title:       "Cấu trúc câu trả lời",
		Description: "Sử dụng phương pháp STAR (Situation, Task, Action, Result) để tổ chức câu trả lời rõ ràng.",
	},
	"depth": {
		Title:       "Tăng chiều sâu nội dung",
		Description: "Đưa ra ví dụ cụ thể, số liệu và chi tiết kỹ thuật để làm phong phú câu trả lời.",
	},
	"clarity": {
		Title:       "Nâng cao sự rõ ràng",
		Description: "Sử dụng ngôn ngữ đơn giản, tránh lan man và đi thẳng vào vấn đề.",
	},
}

// AnalyzeSkills groups a time-ordered (ascending) score history by skill
// dimension and computes per-skill averages and trends. Skills with no
// samples are omitted. Deterministic for identical input ordering.
func AnalyzeSkills(scores []models.AnswerScores) []SkillAnalysis {
	skillMap := map[string][]float64{
		"relevance": nil,
		"structure": nil,
		"depth":     nil,
		"clarity":   nil,
	}

	for _, s := range scores {
		skillMap["relevance"] = append(skillMap["relevance"], s.Relevance)
		skillMap["structure"] = append(skillMap["structure"], s.Structure)
		skillMap["depth"] = append(skillMap["depth"], s.Depth)
		skillMap["clarity"] = append(skillMap["clarity"], s.Clarity)
	}

	var analysis []SkillAnalysis
	for _, skill := range SkillNames {
		values := skillMap[skill]
		if len(values) == 0 {
			continue
		}
		analysis = append(analysis, SkillAnalysis{
			Skill:    skill,
			AvgScore: mean(values),
			Count:    len(values),
			Trend:    skillTrend(values),
		})
	}
	return analysis
}

// skillTrend compares the first-half mean against the second-half mean.
// Fewer than 4 samples is always stable; the 0.3 band filters noise.
func skillTrend(values []float64) string {
	if len(values) < 4 {
		return TrendStable
	}

	midpoint := len(values) / 2
	firstAvg := mean(values[:midpoint])
	secondAvg := mean(values[midpoint:])

	switch {
	case secondAvg-firstAvg > 0.3:
		return TrendImproving
	case firstAvg-secondAvg > 0.3:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// BuildRecommendations selects the two weakest skills by average score and
// turns each one below 3.5 into a fixed-text recommendation. Priority is 1
// when the average is below 2.5, 2 otherwise. Returns nil when no skill
// qualifies.
func BuildRecommendations(userID string, analysis []SkillAnalysis) []models.AIRecommendation {
	sorted := make([]SkillAnalysis, len(analysis))
	copy(sorted, analysis)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgScore < sorted[j].AvgScore
	})

	if len(sorted) > 2 {
		sorted = sorted[:2]
	}

	var recs []models.AIRecommendation
	for _, skill := range sorted {
		if skill.AvgScore >= 3.5 {
			continue
		}
		info, ok := recommendationCopy[skill.Skill]
		if !ok {
			continue
		}
		priority := 2
		if skill.AvgScore < 2.5 {
			priority = 1
		}
		related := skill.Skill
		recs = append(recs, models.AIRecommendation{
			UserID:             userID,
			RecommendationType: "skill_focus",
			Title:              info.Title,
			Description:        info.Description,
			Priority:           priority,
			IsCompleted:        false,
			RelatedSkill:       &related,
		})
	}
	return recs
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prepmate/backend/models"
)

// Overall-score weights for the four skill dimensions
const (
	weightRelevance = 0.3
	weightDepth     = 0.3
	weightStructure = 0.2
	weightClarity   = 0.2

	// An answer scoring at or above this overall unlocks harder questions
	difficultyRaiseThreshold = 4.0

	evaluationTemperature = 0.3
)

// levelRubrics map each level to its qualitative 1-5 scoring tiers
var levelRubrics = map[string]string{
	"intern": `
- 5 điểm: Thể hiện tư duy logic tốt, chủ động tìm hiểu
- 4 điểm: Hiểu concepts cơ bản, có tiềm năng phát triển
- 3 điểm: Có kiến thức nền, cần học thêm
- 2 điểm: Thiếu kiến thức cơ bản nhưng có thái độ tốt
- 1 điểm: Chưa chuẩn bị, cần học từ đầu`,
	"junior": `
- 5 điểm: Giải thích rõ ràng, có ví dụ thực tế, biết best practices
- 4 điểm: Hiểu đúng concept, có kinh nghiệm thực hành
- 3 điểm: Hiểu cơ bản, cần thêm kinh nghiệm
- 2 điểm: Lý thuyết yếu, thiếu thực hành
- 1 điểm: Không nắm được yêu cầu cơ bản`,
	"mid": `
- 5 điểm: Trả lời sâu, biết trade-offs, có kinh nghiệm production
- 4 điểm: Kiến thức vững, giải quyết vấn đề độc lập
- 3 điểm: Làm được nhưng cần guidance
- 2 điểm: Kiến thức bề mặt, thiếu depth
- 1 điểm: Chưa đạt expectation mid-level`,
	"senior": `
- 5 điểm: Expert level, system thinking, mentor được người khác
- 4 điểm: Deep knowledge, đã lead projects
- 3 điểm: Kỹ thuật tốt nhưng thiếu leadership
- 2 điểm: Mid-level disguised as senior
- 1 điểm: Chưa đạt yêu cầu senior`,
}

// EvaluationRequest carries one answer and its session context
type EvaluationRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Role      string `json:"role"`
	Level     string `json:"level"`
	Mode      string `json:"mode"`
	Language  string `json:"language"`
}

// EvaluationResult is the full evaluator output for one answer
type EvaluationResult struct {
	Scores                   models.AnswerScores   `json:"scores"`
	Feedback                 models.AnswerFeedback `json:"feedback"`
	ShouldIncreaseDifficulty bool                  `json:"shouldIncreaseDifficulty"`
	NextFocusTags            []string              `json:"nextFocusTags"`
}

// AnswerEvaluator scores free-text answers along the four skill dimensions
// using a rubric-grounded LLM call.
type AnswerEvaluator struct {
	groq *GroqService
}

func NewAnswerEvaluator(groq *GroqService) *AnswerEvaluator {
	return &AnswerEvaluator{groq: groq}
}

// OverallScore computes the weighted overall from the four sub-scores
func OverallScore(s models.AnswerScores) float64 {
	return weightRelevance*s.Relevance + weightDepth*s.Depth +
		weightStructure*s.Structure + weightClarity*s.Clarity
}

// Evaluate submits the answer for rubric-based scoring and validates the
// structured response. Upstream and parse failures are terminal for this
// call; the caller decides whether to retry.
func (e *AnswerEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (*EvaluationResult, error) {
	rubric, ok := levelRubrics[req.Level]
	if !ok {
		rubric = levelRubrics["junior"]
	}

	systemPrompt := buildEvaluationSystemPrompt(req.Role, req.Level, req.Language, rubric)
	userPrompt := buildEvaluationUserPrompt(req.Question, req.Answer, req.Language)

	content, err := e.groq.CompleteJSON(ctx, systemPrompt, userPrompt, evaluationTemperature)
	if err != nil {
		return nil, err
	}

	var result EvaluationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, &ParseError{Reason: "evaluation response is not valid JSON", Err: err}
	}

	if err := validateScores(result.Scores); err != nil {
		return nil, err
	}

	// Overall is always recomputed server-side; the model's copy is ignored.
	result.Scores.Overall = OverallScore(result.Scores)
	result.ShouldIncreaseDifficulty = result.Scores.Overall >= difficultyRaiseThreshold

	slog.Info("Answer evaluated",
		"session_id", req.SessionID,
		"overall", result.Scores.Overall,
		"increase_difficulty", result.ShouldIncreaseDifficulty)

	return &result, nil
}

// validateScores enforces the [0,5] range on every sub-score; a violation
// is a parse error, not a silent clamp.
func validateScores(s models.AnswerScores) error {
	checks := map[string]float64{
		"relevance": s.Relevance,
		"structure": s.Structure,
		"depth":     s.Depth,
		"clarity":   s.Clarity,
	}
	for name, value := range checks {
		if value < 0 || value > 5 {
			return &ParseError{Reason: fmt.Sprintf("score %q out of range: %v", name, value)}
		}
	}
	return nil
}

func buildEvaluationSystemPrompt(role, level, language, rubric string) string {
	if language == "vi" {
		return fmt.Sprintf(`Bạn là evaluator chuyên đánh giá câu trả lời phỏng vấn cho vị trí %s cấp độ %s.

## RUBRIC CHẤM ĐIỂM (0-5)

### 1. RELEVANCE (Độ liên quan)
- 5: Trả lời đúng trọng tâm, đầy đủ ý
- 3: Có liên quan nhưng lan man hoặc thiếu ý chính
- 1: Lạc đề hoặc không trả lời

### 2. STRUCTURE (Cấu trúc)
- 5: Mạch lạc, logic, dùng STAR/framework phù hợp
- 3: Có cấu trúc cơ bản
- 1: Lộn xộn, khó theo dõi

### 3. DEPTH (Độ sâu)
- 5: Insight sâu, ví dụ thực tế, biết trade-offs
- 3: Hiểu concept, ví dụ chung chung
- 1: Bề mặt, thiếu hiểu biết

### 4. CLARITY (Độ rõ ràng)
- 5: Diễn đạt chuyên nghiệp, dễ hiểu
- 3: Hiểu được nhưng cần cải thiện
- 1: Khó hiểu, ngôn ngữ không phù hợp

### LEVEL %s EXPECTATIONS
%s

## HƯỚNG DẪN FEEDBACK
1. **evidence**: Chỉ ra điểm yếu CỤ THỂ trong câu trả lời (quote nếu cần)
2. **suggestions**: Gợi ý ACTIONABLE, có thể áp dụng ngay
3. **improved_answer**: Viết câu trả lời mẫu NGẮN GỌN nhưng đủ ý, phù hợp với level %s

## OUTPUT FORMAT (JSON)
{
  "scores": {
    "relevance": 0-5,
    "structure": 0-5,
    "depth": 0-5,
    "clarity": 0-5,
    "overall": 0-5 (trung bình có trọng số: relevance 30%%, depth 30%%, structure 20%%, clarity 20%%)
  },
  "feedback": {
    "evidence": ["điểm yếu cụ thể 1", "điểm yếu cụ thể 2"],
    "suggestions": ["gợi ý cải thiện 1", "gợi ý cải thiện 2"],
    "improved_answer": "Câu trả lời mẫu ngắn gọn, đủ ý, phù hợp level %s"
  },
  "shouldIncreaseDifficulty": true/false (true nếu overall >= 4),
  "nextFocusTags": ["skills cần tập trung dựa trên điểm yếu"]
}`, role, level, strings.ToUpper(level), rubric, level, level)
	}

	return fmt.Sprintf(`You are an evaluator assessing interview answers for %s position at %s level.

## SCORING RUBRIC (0-5)

### 1. RELEVANCE
- 5: Directly addresses the question, complete
- 3: Related but misses key points or rambles
- 1: Off-topic or non-answer

### 2. STRUCTURE
- 5: Clear, logical, uses STAR/appropriate framework
- 3: Basic structure
- 1: Disorganized, hard to follow

### 3. DEPTH
- 5: Deep insight, real examples, knows trade-offs
- 3: Understands concept, generic examples
- 1: Surface level, lacks understanding

### 4. CLARITY
- 5: Professional communication, easy to understand
- 3: Understandable but needs improvement
- 1: Hard to understand, inappropriate language

### %s LEVEL EXPECTATIONS
%s

## FEEDBACK GUIDELINES
1. **evidence**: Point out SPECIFIC weaknesses (quote if needed)
2. **suggestions**: ACTIONABLE tips they can apply immediately
3. **improved_answer**: Write a CONCISE model answer appropriate for %s level

## OUTPUT FORMAT (JSON)
{
  "scores": {
    "relevance": 0-5,
    "structure": 0-5,
    "depth": 0-5,
    "clarity": 0-5,
    "overall": 0-5 (weighted average: relevance 30%%, depth 30%%, structure 20%%, clarity 20%%)
  },
  "feedback": {
    "evidence": ["specific weakness 1", "specific weakness 2"],
    "suggestions": ["improvement tip 1", "improvement tip 2"],
    "improved_answer": "Concise model answer appropriate for %s level"
  },
  "shouldIncreaseDifficulty": true/false (true if overall >= 4),
  "nextFocusTags": ["skills to focus based on weaknesses"]
}`, role, level, strings.ToUpper(level), rubric, level, level)
}

func buildEvaluationUserPrompt(question, answer, language string) string {
	if language == "vi" {
		return fmt.Sprintf(`Câu hỏi phỏng vấn: "%s"

Câu trả lời của ứng viên: "%s"

Hãy đánh giá chi tiết theo rubric và đưa ra feedback hữu ích.`, question, answer)
	}

	return fmt.Sprintf(`Interview question: "%s"

Candidate's answer: "%s"

Evaluate in detail using the rubric and provide helpful feedback.`, question, answer)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
	"gorm.io/datatypes"
)

// SummaryService synthesizes a completed session into an overall score,
// strengths/weaknesses, a 7-day improvement plan and a learning roadmap.
type SummaryService struct {
	repo *repository.GORMRepository
	groq *GroqService

	// Serializes generation per session so concurrent completion requests
	// produce one summary instead of racing LLM calls.
	mu         sync.Mutex
	generating map[string]bool
}

func NewSummaryService(repo *repository.GORMRepository, groq *GroqService) *SummaryService {
	return &SummaryService{
		repo:       repo,
		groq:       groq,
		generating: make(map[string]bool),
	}
}

type summaryResponse struct {
	Strengths       []string                     `json:"strengths"`
	Weaknesses      []string                     `json:"weaknesses"`
	ImprovementPlan []models.ImprovementDay      `json:"improvement_plan"`
	SkillBreakdown  map[string]float64           `json:"skill_breakdown"`
	LearningRoadmap []models.LearningRoadmapItem `json:"learning_roadmap"`
}

// GenerateSummary builds and persists the session summary. Repeated calls
// for the same session replace the stored row. When another generation for
// the session is already in flight, the call returns the stored summary
// (or nil) without starting a second LLM call.
func (s *SummaryService) GenerateSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	s.mu.Lock()
	if s.generating[sessionID] {
		s.mu.Unlock()
		slog.Info("Summary generation already in flight", "session_id", sessionID)
		return s.repo.GetSessionSummary(ctx, sessionID)
	}
	s.generating[sessionID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.generating, sessionID)
		s.mu.Unlock()
	}()

	session, err := s.repo.GetInterviewSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	role, level := "frontend", "junior"
	if session != nil {
		role, level = session.Role, session.Level
	}

	answers, err := s.repo.GetInterviewAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(answers) == 0 {
		return s.saveEmptySummary(ctx, sessionID)
	}

	avgScore := 0.0
	for _, a := range answers {
		avgScore += a.Scores.Data().Overall
	}
	avgScore /= float64(len(answers))

	parsed, err := s.synthesize(ctx, role, level, avgScore, answers)
	if err != nil {
		return nil, err
	}

	summary := &models.SessionSummary{
		SessionID:       sessionID,
		OverallScore:    avgScore,
		Strengths:       datatypes.NewJSONSlice(parsed.Strengths),
		Weaknesses:      datatypes.NewJSONSlice(parsed.Weaknesses),
		ImprovementPlan: datatypes.NewJSONType(parsed.ImprovementPlan),
		SkillBreakdown:  datatypes.NewJSONType(parsed.SkillBreakdown),
		LearningRoadmap: datatypes.NewJSONType(parsed.LearningRoadmap),
	}
	if err := s.repo.UpsertSessionSummary(ctx, summary); err != nil {
		return nil, err
	}

	slog.Info("Session summary generated", "session_id", sessionID, "overall_score", avgScore, "answers", len(answers))
	return summary, nil
}

// saveEmptySummary persists the placeholder for sessions that ended with
// no answers. No LLM call is made.
func (s *SummaryService) saveEmptySummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	summary := &models.SessionSummary{
		SessionID:       sessionID,
		OverallScore:    0,
		Strengths:       datatypes.NewJSONSlice([]string{"Chưa có dữ liệu để phân tích"}),
		Weaknesses:      datatypes.NewJSONSlice([]string{"Phiên phỏng vấn chưa có câu trả lời nào"}),
		ImprovementPlan: datatypes.NewJSONType([]models.ImprovementDay{}),
		SkillBreakdown:  datatypes.NewJSONType(map[string]float64{}),
		LearningRoadmap: datatypes.NewJSONType([]models.LearningRoadmapItem{}),
	}
	if err := s.repo.UpsertSessionSummary(ctx, summary); err != nil {
		return nil, err
	}
	slog.Info("Empty session summary saved", "session_id", sessionID)
	return summary, nil
}

func (s *SummaryService) synthesize(ctx context.Context, role, level string, avgScore float64, answers []models.InterviewAnswer) (*summaryResponse, error) {
	type answerDigest struct {
		Q        string                `json:"q"`
		Scores   models.AnswerScores   `json:"scores"`
		Feedback models.AnswerFeedback `json:"feedback"`
	}
	digests := make([]answerDigest, 0, len(answers))
	for _, a := range answers {
		digests = append(digests, answerDigest{
			Q:        a.QuestionText,
			Scores:   a.Scores.Data(),
			Feedback: a.Feedback.Data(),
		})
	}
	detail, err := json.MarshalIndent(digests, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	systemPrompt := buildSummarySystemPrompt(role, level)
	userPrompt := fmt.Sprintf(
		"Phân tích kết quả phỏng vấn %s %s sau và tạo lộ trình học tập cá nhân hóa:\n\nĐiểm trung bình: %.1f/5\n\nChi tiết câu trả lời:\n%s",
		role, level, avgScore, detail)

	content, err := s.groq.CompleteJSON(ctx, systemPrompt, userPrompt, evaluationTemperature)
	if err != nil {
		return nil, err
	}

	var parsed summaryResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ParseError{Reason: "summary response is not valid JSON", Err: err}
	}

	// Missing sections degrade to empty, never to nil JSON columns
	if parsed.Strengths == nil {
		parsed.Strengths = []string{}
	}
	if parsed.Weaknesses == nil {
		parsed.Weaknesses = []string{}
	}
	if parsed.ImprovementPlan == nil {
		parsed.ImprovementPlan = []models.ImprovementDay{}
	}
	if parsed.SkillBreakdown == nil {
		parsed.SkillBreakdown = map[string]float64{}
	}
	if parsed.LearningRoadmap == nil {
		parsed.LearningRoadmap = []models.LearningRoadmapItem{}
	}
	return &parsed, nil
}

func buildSummarySystemPrompt(role, level string) string {
	return fmt.Sprintf(`You are an interview coach analyzing performance for a %s %s position. Respond in Vietnamese.

Return JSON with this exact structure:
{
  "strengths": ["điểm mạnh 1", "điểm mạnh 2", "điểm mạnh 3"],
  "weaknesses": ["điểm yếu 1", "điểm yếu 2", "điểm yếu 3"],
  "improvement_plan": [
    {"day": 1, "focus": "Chủ đề ngày 1", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]},
    {"day": 2, "focus": "Chủ đề ngày 2", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]},
    {"day": 3, "focus": "Chủ đề ngày 3", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]},
    {"day": 4, "focus": "Chủ đề ngày 4", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]},
    {"day": 5, "focus": "Chủ đề ngày 5", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]},
    {"day": 6, "focus": "Chủ đề ngày 6", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]},
    {"day": 7, "focus": "Chủ đề ngày 7", "tasks": ["Nhiệm vụ 1", "Nhiệm vụ 2"]}
  ],
  "skill_breakdown": {
    "communication": 3.5,
    "relevance": 4.0,
    "structure": 3.0,
    "depth": 2.5,
    "clarity": 3.5
  },
  "learning_roadmap": [
    {
      "id": "topic-1",
      "title": "Tên chủ đề",
      "description": "Mô tả ngắn",
      "priority": "high",
      "skills": ["skill1", "skill2"],
      "resources": ["Link hoặc tài liệu gợi ý"],
      "estimated_hours": 10
    }
  ]
}

RULES:
1. skill_breakdown keys MUST be in English: communication, relevance, structure, depth, clarity. Values are scores from 1-5.
2. All text content MUST be in Vietnamese.
3. learning_roadmap should contain 4-6 topics the candidate should learn, ordered by priority.
4. priority can be: "high" (cần học ngay), "medium" (nên học), "low" (có thể học sau).
5. Base the roadmap on the candidate's weaknesses and the %s role requirements.
6. For %s role, focus on relevant technical skills like:
   - Frontend: JavaScript, TypeScript, React, CSS, Performance, Testing
   - Backend: Database, API Design, System Design, Security, DevOps
   - Fullstack: Both frontend and backend skills
7. Include soft skills if communication/structure scores are low.`, role, level, role, role)
}

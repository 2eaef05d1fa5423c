package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
	"gorm.io/datatypes"
)

// SessionEndpoints owns the interview lifecycle: setup, question flow,
// answer evaluation, completion and summaries.
type SessionEndpoints struct {
	repo         *repository.GORMRepository
	interviewer  *Interviewer
	evaluator    *AnswerEvaluator
	summaries    *SummaryService
	gamification *GamificationService
	tts          *TTSService
}

func NewSessionEndpoints(
	repo *repository.GORMRepository,
	interviewer *Interviewer,
	evaluator *AnswerEvaluator,
	summaries *SummaryService,
	gamification *GamificationService,
	tts *TTSService,
) *SessionEndpoints {
	return &SessionEndpoints{
		repo:         repo,
		interviewer:  interviewer,
		evaluator:    evaluator,
		summaries:    summaries,
		gamification: gamification,
		tts:          tts,
	}
}

type CreateSessionRequest struct {
	Role              string   `json:"role"`
	Level             string   `json:"level"`
	Mode              string   `json:"mode"`
	Language          string   `json:"language"`
	TotalQuestions    int      `json:"total_questions"`
	JDText            string   `json:"jd_text"`
	FocusTags         []string `json:"focus_tags"`
	QuestionTimeLimit int      `json:"question_time_limit"`
}

type SubmitAnswerRequest struct {
	AnswerText string `json:"answer_text"`
}

type SubmitAnswerResponse struct {
	Answer       *models.InterviewAnswer `json:"answer"`
	NextQuestion *InterviewerQuestion    `json:"next_question,omitempty"`
	IsLast       bool                    `json:"is_last"`
	XP           *XPAward                `json:"xp,omitempty"`
}

type SpeakRequest struct {
	Text string `json:"text"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", e.CreateSessionHandler)
		r.Get("/", e.GetSessionsHandler)
		r.Get("/{id}", e.GetSessionHandler)
		r.Delete("/{id}", e.DeleteSessionHandler)
		r.Delete("/bulk", e.BulkDeleteSessionsHandler)
		r.Post("/{id}/start", e.StartSessionHandler)
		r.Post("/{id}/answers", e.SubmitAnswerHandler)
		r.Post("/{id}/complete", e.CompleteSessionHandler)
		r.Post("/{id}/speak", e.SpeakHandler)
	})

	r.Route("/summaries", func(r chi.Router) {
		r.Get("/session/{id}", e.GetSummaryBySessionHandler)
		r.Post("/session/{id}/generate", e.GenerateSummaryHandler)
	})
}

func (e *SessionEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	setup := SessionSetup{
		Role:           req.Role,
		Level:          req.Level,
		Mode:           req.Mode,
		Language:       req.Language,
		TotalQuestions: req.TotalQuestions,
		JDText:         SanitizeText(req.JDText),
	}
	if errs := ValidateSessionSetup(setup); len(errs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"errors": errs})
		return
	}

	timeLimit := req.QuestionTimeLimit
	if timeLimit <= 0 {
		timeLimit = 90
	}

	session := models.InterviewSession{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		Role:              req.Role,
		Level:             req.Level,
		Mode:              req.Mode,
		Language:          req.Language,
		JDText:            setup.JDText,
		Status:            models.StatusSetup,
		TotalQuestions:    req.TotalQuestions,
		FocusTags:         datatypes.NewJSONSlice(req.FocusTags),
		QuestionTimeLimit: timeLimit,
	}

	if err := e.repo.CreateInterviewSession(r.Context(), &session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": session,
		"message": "Session created successfully",
	})
}

func (e *SessionEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	sessions, err := e.repo.GetInterviewSessions(r.Context(), user.ID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get sessions")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (e *SessionEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": session,
	})
}

func (e *SessionEndpoints) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if err := e.repo.DeleteInterviewSession(r.Context(), sessionID, user.ID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type BulkDeleteRequest struct {
	SessionIDs []string `json:"session_ids"`
}

// BulkDeleteSessionsHandler deletes a batch of the caller's sessions.
// IDs not owned by the caller are skipped, reflected in deleted_count.
func (e *SessionEndpoints) BulkDeleteSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.SessionIDs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one session ID is required")
		return
	}

	deletedCount, err := e.repo.BulkDeleteInterviewSessions(r.Context(), req.SessionIDs, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete sessions")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Sessions deleted successfully",
		"deleted_count": deletedCount,
	})
}

// StartSessionHandler moves a setup session into progress and returns the
// interviewer's opening question.
func (e *SessionEndpoints) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if session.Status != models.StatusSetup {
		writeError(w, http.StatusConflict, "Session already started")
		return
	}

	question, err := e.interviewer.StartInterview(r.Context(), session)
	if err != nil {
		slog.Error("Failed to start interview", "error", err, "session_id", session.ID)
		writeError(w, http.StatusBadGateway, "Failed to generate opening question")
		return
	}

	now := time.Now()
	session.Status = models.StatusInProgress
	session.StartedAt = &now
	session.QuestionStartedAt = &now
	session.CurrentQuestionIndex = 0
	session.DifficultyScore = question.Difficulty
	session.PendingQuestion = question.Question
	if err := e.repo.UpdateInterviewSession(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session":          session,
		"question":         question,
		"interviewer_name": InterviewerName(session.ID, session.Language),
	})

	slog.Info("Interview started", "session_id", session.ID, "user_id", user.ID)
}

// SubmitAnswerHandler evaluates one answer, persists it, and returns the
// next question. Gamification updates are best-effort: a failed XP or
// streak write never loses the evaluated answer.
func (e *SessionEndpoints) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if session.Status != models.StatusInProgress {
		writeError(w, http.StatusConflict, "Session is not in progress")
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answerText := SanitizeText(req.AnswerText)
	if answerText == "" {
		writeError(w, http.StatusBadRequest, "Answer text is required")
		return
	}

	if len(session.Answers) > session.CurrentQuestionIndex {
		writeError(w, http.StatusConflict, "Question already answered")
		return
	}
	questionText := session.PendingQuestion
	if questionText == "" {
		writeError(w, http.StatusConflict, "No active question for this session")
		return
	}

	result, err := e.evaluator.Evaluate(r.Context(), EvaluationRequest{
		SessionID: session.ID,
		Question:  questionText,
		Answer:    answerText,
		Role:      session.Role,
		Level:     session.Level,
		Mode:      session.Mode,
		Language:  session.Language,
	})
	if err != nil {
		slog.Error("Answer evaluation failed", "error", err, "session_id", session.ID)
		writeError(w, http.StatusBadGateway, "Failed to evaluate answer")
		return
	}

	var timeTaken *int
	if session.QuestionStartedAt != nil {
		seconds := int(time.Since(*session.QuestionStartedAt).Seconds())
		timeTaken = &seconds
	}

	answer := &models.InterviewAnswer{
		SessionID:        session.ID,
		QuestionIndex:    session.CurrentQuestionIndex,
		QuestionText:     questionText,
		AnswerText:       answerText,
		Scores:           datatypes.NewJSONType(result.Scores),
		Feedback:         datatypes.NewJSONType(result.Feedback),
		TimeTakenSeconds: timeTaken,
	}
	if err := e.repo.CreateInterviewAnswer(r.Context(), answer); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save answer")
		return
	}

	isLast := session.CurrentQuestionIndex+1 >= session.TotalQuestions

	var nextQuestion *InterviewerQuestion
	if !isLast {
		scores := result.Scores
		nextQuestion, err = e.interviewer.NextQuestion(r.Context(), QuestionRequest{
			Session:         session,
			PreviousAnswer:  answerText,
			PreviousScores:  &scores,
			RaiseDifficulty: result.ShouldIncreaseDifficulty,
			FocusTags:       result.NextFocusTags,
			QuestionIndex:   session.CurrentQuestionIndex + 1,
			History:         e.conversationHistory(session),
		})
		if err != nil {
			slog.Error("Failed to generate next question", "error", err, "session_id", session.ID)
			writeError(w, http.StatusBadGateway, "Failed to generate next question")
			return
		}
	}

	now := time.Now()
	session.CurrentQuestionIndex++
	session.QuestionStartedAt = &now
	session.PendingQuestion = ""
	if nextQuestion != nil {
		session.DifficultyScore = nextQuestion.Difficulty
		session.PendingQuestion = nextQuestion.Question
		if len(nextQuestion.FocusTags) > 0 {
			session.FocusTags = datatypes.NewJSONSlice(nextQuestion.FocusTags)
		}
	}
	if err := e.repo.UpdateInterviewSession(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update session")
		return
	}

	// Best-effort gamification
	var award *XPAward
	if e.gamification != nil {
		if err := e.gamification.RecordQuestionAnswered(r.Context(), user.ID); err != nil {
			slog.Error("Failed to record answered question", "error", err, "user_id", user.ID)
		}
		if err := e.gamification.CheckScoreBadge(r.Context(), user.ID, result.Scores.Overall); err != nil {
			slog.Error("Score badge check failed", "error", err, "user_id", user.ID)
		}
		award, err = e.gamification.AddXP(r.Context(), user.ID, XPAnswerSubmitted, "Trả lời câu hỏi phỏng vấn")
		if err != nil {
			slog.Error("Failed to award answer XP", "error", err, "user_id", user.ID)
			award = nil
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SubmitAnswerResponse{
		Answer:       answer,
		NextQuestion: nextQuestion,
		IsLast:       isLast,
		XP:           award,
	})
}

// CompleteSessionHandler ends a session, updates streaks and counters, and
// kicks off summary generation in the background.
func (e *SessionEndpoints) CompleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if !session.CanComplete() {
		writeError(w, http.StatusConflict, "Session is not in progress")
		return
	}

	now := time.Now()
	session.PendingQuestion = ""
	session.QuestionStartedAt = nil
	session.Status = models.StatusCompleted
	session.EndedAt = &now
	if err := e.repo.UpdateInterviewSession(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to complete session")
		return
	}

	// Best-effort gamification
	var award *XPAward
	if e.gamification != nil {
		if _, err := e.gamification.UpdateStreak(r.Context(), user.ID, now); err != nil {
			slog.Error("Failed to update streak", "error", err, "user_id", user.ID)
		}
		if err := e.gamification.RecordInterviewCompleted(r.Context(), user.ID); err != nil {
			slog.Error("Failed to record completed interview", "error", err, "user_id", user.ID)
		}
		award, err = e.gamification.AddXP(r.Context(), user.ID, XPInterviewCompleted, "Hoàn thành buổi phỏng vấn")
		if err != nil {
			slog.Error("Failed to award completion XP", "error", err, "user_id", user.ID)
			award = nil
		}
		if _, err := e.gamification.SyncChallengeProgress(r.Context(), user.ID, now); err != nil {
			slog.Error("Failed to sync challenge progress", "error", err, "user_id", user.ID)
		}
	}

	go func() {
		if _, err := e.summaries.GenerateSummary(context.Background(), session.ID); err != nil {
			slog.Error("Background summary generation failed", "error", err, "session_id", session.ID)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": session,
		"xp":      award,
		"message": "Session completed, summary generation started",
	})

	slog.Info("Interview session completed", "session_id", session.ID, "user_id", user.ID)
}

// SpeakHandler returns MP3 audio of the given text in the session's
// interviewer voice.
func (e *SessionEndpoints) SpeakHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	if e.tts == nil {
		writeError(w, http.StatusServiceUnavailable, "Question audio is not configured")
		return
	}

	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := e.tts.SpeakQuestion(r.Context(), req.Text, InterviewerName(session.ID, session.Language))
	if err != nil {
		slog.Error("Failed to synthesize question audio", "error", err, "session_id", session.ID)
		writeError(w, http.StatusBadGateway, "Failed to generate audio")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audio)
}

func (e *SessionEndpoints) GetSummaryBySessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), sessionID, user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	summary, err := e.repo.GetSessionSummary(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get summary")
		return
	}

	if summary == nil {
		slog.Info("No summary found, triggering generation", "session_id", sessionID, "user_id", user.ID)
		go func() {
			if _, err := e.summaries.GenerateSummary(context.Background(), sessionID); err != nil {
				slog.Error("Background summary generation failed", "error", err, "session_id", sessionID)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "generating",
			"message":    "Summary generation has been triggered. Please check back shortly.",
			"session_id": sessionID,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary": summary,
		"status":  "ready",
	})
}

// GenerateSummaryHandler forces regeneration; the stored summary row is
// replaced for the session.
func (e *SessionEndpoints) GenerateSummaryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.repo.GetInterviewSessionWithDetails(r.Context(), sessionID, user.ID)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if session.Status != models.StatusCompleted && session.Status != models.StatusAbandoned {
		writeError(w, http.StatusBadRequest, "Session must be finished to generate a summary")
		return
	}

	summary, err := e.summaries.GenerateSummary(r.Context(), sessionID)
	if err != nil {
		slog.Error("Summary generation failed", "error", err, "session_id", sessionID)
		writeError(w, http.StatusBadGateway, "Failed to generate summary")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary": summary,
		"status":  "ready",
	})
}

// conversationHistory rebuilds the interviewer/candidate turn list from
// persisted answers for prompt context.
func (e *SessionEndpoints) conversationHistory(session *models.InterviewSession) []ChatTurn {
	var turns []ChatTurn
	for _, a := range session.Answers {
		turns = append(turns, ChatTurn{Role: "assistant", Content: a.QuestionText})
		turns = append(turns, ChatTurn{Role: "user", Content: a.AnswerText})
	}
	return turns
}

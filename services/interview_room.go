package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
	ws "github.com/prepmate/backend/websocket"
	"gorm.io/datatypes"
)

// safeSend tries to send a message to the client channel, recovers if closed
func safeSend(ch chan<- []byte, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			// Channel is closed, ignore
		}
	}()
	select {
	case ch <- msg:
		// sent
	default:
		// channel full or closed
	}
}

// InterviewRoom drives a live interview over a WebSocket connection:
// question delivery, inline answer evaluation, countdown events and
// completion. One question timer runs per session; reconnects resume it
// from the persisted question start time.
type InterviewRoom struct {
	repo         *repository.GORMRepository
	interviewer  *Interviewer
	evaluator    *AnswerEvaluator
	summaries    *SummaryService
	gamification *GamificationService

	mu     sync.Mutex
	timers map[string]*QuestionTimer // sessionID -> active countdown
}

func NewInterviewRoom(
	repo *repository.GORMRepository,
	interviewer *Interviewer,
	evaluator *AnswerEvaluator,
	summaries *SummaryService,
	gamification *GamificationService,
) *InterviewRoom {
	return &InterviewRoom{
		repo:         repo,
		interviewer:  interviewer,
		evaluator:    evaluator,
		summaries:    summaries,
		gamification: gamification,
		timers:       make(map[string]*QuestionTimer),
	}
}

// HandleConnection runs when a client joins the room. An in-progress
// session gets its pending question re-sent and the countdown resumed
// from where the persisted question start time left it.
func (room *InterviewRoom) HandleConnection(client *ws.Client) {
	ctx := context.Background()

	session, err := room.repo.GetInterviewSessionWithDetails(ctx, client.SessionID, client.UserID)
	if err != nil || session == nil {
		room.sendError(client, "Session not found")
		return
	}

	switch session.Status {
	case models.StatusSetup:
		// Wait for an explicit start frame
		slog.Info("Room joined, awaiting start", "session_id", session.ID, "user_id", client.UserID)
	case models.StatusInProgress:
		if session.PendingQuestion == "" {
			room.sendError(client, "Session has no active question")
			return
		}
		remaining := session.QuestionTimeLimit
		if session.QuestionStartedAt != nil {
			remaining -= int(time.Since(*session.QuestionStartedAt).Seconds())
		}
		room.sendJSON(client, map[string]interface{}{
			"type":             "question",
			"question":         session.PendingQuestion,
			"question_index":   session.CurrentQuestionIndex,
			"total_questions":  session.TotalQuestions,
			"interviewer_name": InterviewerName(session.ID, session.Language),
			"time_remaining":   remaining,
			"resumed":          true,
		})
		room.startQuestionTimer(client, remaining)
	default:
		room.sendError(client, "Session is already finished")
	}
}

// HandleMessage routes an inbound frame.
func (room *InterviewRoom) HandleMessage(client *ws.Client, messageBytes []byte) {
	var msg ws.Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		slog.Error("Failed to unmarshal room message", "error", err, "session_id", client.SessionID)
		return
	}

	switch msg.Type {
	case "start":
		room.handleStart(client)
	case "answer":
		room.handleAnswer(client, msg.Content)
	case "end":
		room.handleEnd(client)
	default:
		slog.Warn("Unknown message type", "type", msg.Type, "session_id", client.SessionID)
	}
}

// HandleDisconnect stops the countdown; the session stays in progress so
// the client can reconnect. The inactivity sweeper reaps it eventually.
func (room *InterviewRoom) HandleDisconnect(client *ws.Client) {
	room.stopQuestionTimer(client.SessionID)
}

func (room *InterviewRoom) handleStart(client *ws.Client) {
	ctx := context.Background()

	session, err := room.repo.GetInterviewSessionWithDetails(ctx, client.SessionID, client.UserID)
	if err != nil || session == nil {
		room.sendError(client, "Session not found")
		return
	}
	if session.Status != models.StatusSetup {
		room.sendError(client, "Session already started")
		return
	}

	question, err := room.interviewer.StartInterview(ctx, session)
	if err != nil {
		slog.Error("Failed to start interview", "error", err, "session_id", session.ID)
		room.sendError(client, "Failed to generate opening question")
		return
	}

	now := time.Now()
	session.Status = models.StatusInProgress
	session.StartedAt = &now
	session.QuestionStartedAt = &now
	session.CurrentQuestionIndex = 0
	session.DifficultyScore = question.Difficulty
	session.PendingQuestion = question.Question
	if err := room.repo.UpdateInterviewSession(ctx, session); err != nil {
		room.sendError(client, "Failed to start session")
		return
	}

	room.sendJSON(client, map[string]interface{}{
		"type":             "question",
		"question":         question.Question,
		"question_type":    question.QuestionType,
		"question_index":   0,
		"total_questions":  session.TotalQuestions,
		"interviewer_name": InterviewerName(session.ID, session.Language),
		"time_remaining":   session.QuestionTimeLimit,
	})
	room.startQuestionTimer(client, session.QuestionTimeLimit)

	slog.Info("Interview started over WebSocket", "session_id", session.ID, "user_id", client.UserID)
}

func (room *InterviewRoom) handleAnswer(client *ws.Client, content string) {
	ctx := context.Background()

	session, err := room.repo.GetInterviewSessionWithDetails(ctx, client.SessionID, client.UserID)
	if err != nil || session == nil {
		room.sendError(client, "Session not found")
		return
	}
	if session.Status != models.StatusInProgress {
		room.sendError(client, "Session is not in progress")
		return
	}

	answerText := SanitizeText(content)
	if answerText == "" {
		room.sendError(client, "Answer text is required")
		return
	}
	if len(session.Answers) > session.CurrentQuestionIndex {
		room.sendError(client, "Question already answered")
		return
	}
	questionText := session.PendingQuestion
	if questionText == "" {
		room.sendError(client, "No active question for this session")
		return
	}

	room.stopQuestionTimer(session.ID)

	result, err := room.evaluator.Evaluate(ctx, EvaluationRequest{
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
		room.sendError(client, "Failed to evaluate answer")
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
	if err := room.repo.CreateInterviewAnswer(ctx, answer); err != nil {
		room.sendError(client, "Failed to save answer")
		return
	}

	// Best-effort gamification
	var award *XPAward
	if room.gamification != nil {
		if err := room.gamification.RecordQuestionAnswered(ctx, client.UserID); err != nil {
			slog.Error("Failed to record answered question", "error", err, "user_id", client.UserID)
		}
		if err := room.gamification.CheckScoreBadge(ctx, client.UserID, result.Scores.Overall); err != nil {
			slog.Error("Score badge check failed", "error", err, "user_id", client.UserID)
		}
		award, err = room.gamification.AddXP(ctx, client.UserID, XPAnswerSubmitted, "Trả lời câu hỏi phỏng vấn")
		if err != nil {
			slog.Error("Failed to award answer XP", "error", err, "user_id", client.UserID)
			award = nil
		}
	}

	room.sendJSON(client, map[string]interface{}{
		"type":     "evaluation",
		"scores":   result.Scores,
		"feedback": result.Feedback,
		"xp":       award,
	})

	isLast := session.CurrentQuestionIndex+1 >= session.TotalQuestions
	if isLast {
		now := time.Now()
		session.CurrentQuestionIndex++
		session.PendingQuestion = ""
		session.QuestionStartedAt = nil
		session.Status = models.StatusCompleted
		session.EndedAt = &now
		if err := room.repo.UpdateInterviewSession(ctx, session); err != nil {
			room.sendError(client, "Failed to complete session")
			return
		}
		room.finalizeSession(client, session, now)
		return
	}

	scores := result.Scores
	nextQuestion, err := room.interviewer.NextQuestion(ctx, QuestionRequest{
		Session:         session,
		PreviousAnswer:  answerText,
		PreviousScores:  &scores,
		RaiseDifficulty: result.ShouldIncreaseDifficulty,
		FocusTags:       result.NextFocusTags,
		QuestionIndex:   session.CurrentQuestionIndex + 1,
		History:         room.conversationHistory(session, questionText, answerText),
	})
	if err != nil {
		slog.Error("Failed to generate next question", "error", err, "session_id", session.ID)
		room.sendError(client, "Failed to generate next question")
		return
	}

	now := time.Now()
	session.CurrentQuestionIndex++
	session.QuestionStartedAt = &now
	session.PendingQuestion = nextQuestion.Question
	session.DifficultyScore = nextQuestion.Difficulty
	if len(nextQuestion.FocusTags) > 0 {
		session.FocusTags = datatypes.NewJSONSlice(nextQuestion.FocusTags)
	}
	if err := room.repo.UpdateInterviewSession(ctx, session); err != nil {
		room.sendError(client, "Failed to update session")
		return
	}

	room.sendJSON(client, map[string]interface{}{
		"type":            "question",
		"question":        nextQuestion.Question,
		"question_type":   nextQuestion.QuestionType,
		"question_index":  session.CurrentQuestionIndex,
		"total_questions": session.TotalQuestions,
		"time_remaining":  session.QuestionTimeLimit,
	})
	room.startQuestionTimer(client, session.QuestionTimeLimit)
}

// handleEnd finishes the session early. With at least one answer it
// completes normally; with none it is abandoned.
func (room *InterviewRoom) handleEnd(client *ws.Client) {
	ctx := context.Background()

	session, err := room.repo.GetInterviewSessionWithDetails(ctx, client.SessionID, client.UserID)
	if err != nil || session == nil {
		room.sendError(client, "Session not found")
		return
	}
	if session.Status != models.StatusInProgress && session.Status != models.StatusSetup {
		room.sendError(client, "Session is already finished")
		return
	}

	room.stopQuestionTimer(session.ID)

	now := time.Now()
	session.PendingQuestion = ""
	session.QuestionStartedAt = nil
	session.EndedAt = &now
	if len(session.Answers) > 0 {
		session.Status = models.StatusCompleted
	} else {
		session.Status = models.StatusAbandoned
	}
	if err := room.repo.UpdateInterviewSession(ctx, session); err != nil {
		room.sendError(client, "Failed to end session")
		return
	}

	if session.Status == models.StatusCompleted {
		room.finalizeSession(client, session, now)
	} else {
		room.sendJSON(client, map[string]interface{}{
			"type":   "session_complete",
			"status": session.Status,
		})
	}

	slog.Info("Interview session ended over WebSocket", "session_id", session.ID, "status", session.Status)
}

// finalizeSession applies completion gamification and kicks off summary
// generation, then tells the client the session is done.
func (room *InterviewRoom) finalizeSession(client *ws.Client, session *models.InterviewSession, now time.Time) {
	ctx := context.Background()

	var award *XPAward
	if room.gamification != nil {
		if _, err := room.gamification.UpdateStreak(ctx, client.UserID, now); err != nil {
			slog.Error("Failed to update streak", "error", err, "user_id", client.UserID)
		}
		if err := room.gamification.RecordInterviewCompleted(ctx, client.UserID); err != nil {
			slog.Error("Failed to record completed interview", "error", err, "user_id", client.UserID)
		}
		var err error
		award, err = room.gamification.AddXP(ctx, client.UserID, XPInterviewCompleted, "Hoàn thành buổi phỏng vấn")
		if err != nil {
			slog.Error("Failed to award completion XP", "error", err, "user_id", client.UserID)
			award = nil
		}
		if _, err := room.gamification.SyncChallengeProgress(ctx, client.UserID, now); err != nil {
			slog.Error("Failed to sync challenge progress", "error", err, "user_id", client.UserID)
		}
	}

	go func() {
		if _, err := room.summaries.GenerateSummary(context.Background(), session.ID); err != nil {
			slog.Error("Background summary generation failed", "error", err, "session_id", session.ID)
		}
	}()

	room.sendJSON(client, map[string]interface{}{
		"type":   "session_complete",
		"status": session.Status,
		"xp":     award,
	})
}

// startQuestionTimer arms a fresh countdown for the client's session and
// streams tick and expiry frames. A zero or negative remaining fires the
// expiry immediately.
func (room *InterviewRoom) startQuestionTimer(client *ws.Client, remaining int) {
	if remaining <= 0 {
		room.sendJSON(client, map[string]interface{}{"type": "time_up"})
		return
	}

	timer := NewQuestionTimer(remaining, func() {
		room.sendJSON(client, map[string]interface{}{"type": "time_up"})
	}, WithOnTick(func(left int) {
		room.sendJSON(client, map[string]interface{}{
			"type":      "timer",
			"remaining": left,
			"warning":   left <= 30 && left > dangerThreshold,
			"danger":    left <= dangerThreshold,
		})
	}))

	room.mu.Lock()
	if old, ok := room.timers[client.SessionID]; ok {
		old.Stop()
	}
	room.timers[client.SessionID] = timer
	room.mu.Unlock()

	timer.Start()
}

func (room *InterviewRoom) stopQuestionTimer(sessionID string) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if timer, ok := room.timers[sessionID]; ok {
		timer.Stop()
		delete(room.timers, sessionID)
	}
}

// conversationHistory replays persisted turns plus the answer being
// processed, which is not yet in session.Answers.
func (room *InterviewRoom) conversationHistory(session *models.InterviewSession, question, answer string) []ChatTurn {
	var turns []ChatTurn
	for _, a := range session.Answers {
		turns = append(turns, ChatTurn{Role: "assistant", Content: a.QuestionText})
		turns = append(turns, ChatTurn{Role: "user", Content: a.AnswerText})
	}
	turns = append(turns, ChatTurn{Role: "assistant", Content: question})
	turns = append(turns, ChatTurn{Role: "user", Content: strings.TrimSpace(answer)})
	return turns
}

func (room *InterviewRoom) sendJSON(client *ws.Client, payload map[string]interface{}) {
	messageBytes, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal room message", "error", err, "session_id", client.SessionID)
		return
	}
	safeSend(client.Send, messageBytes)
}

func (room *InterviewRoom) sendError(client *ws.Client, message string) {
	room.sendJSON(client, map[string]interface{}{
		"type":    "error",
		"content": message,
	})
}

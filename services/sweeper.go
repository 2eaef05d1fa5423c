package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

const (
	// InactivityLimit is how long an in-progress session may sit without
	// any answer or update before it is abandoned.
	InactivityLimit = 30 * time.Minute

	sweepInterval = time.Minute
)

// SessionSweeper abandons in-progress sessions that went quiet and makes
// sure a summary still gets generated from whatever answers exist.
type SessionSweeper struct {
	repo      *repository.GORMRepository
	summaries *SummaryService
	stop      chan struct{}
}

func NewSessionSweeper(repo *repository.GORMRepository, summaries *SummaryService) *SessionSweeper {
	sweeper := &SessionSweeper{
		repo:      repo,
		summaries: summaries,
		stop:      make(chan struct{}),
	}

	go sweeper.run()

	return sweeper
}

func (s *SessionSweeper) run() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Stop halts the background sweep loop.
func (s *SessionSweeper) Stop() {
	close(s.stop)
}

func (s *SessionSweeper) sweep() {
	ctx := context.Background()

	cutoff := time.Now().Add(-InactivityLimit)
	stale, err := s.repo.GetStaleInProgressSessions(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to query stale sessions", "error", err)
		return
	}

	for i := range stale {
		s.abandonSession(ctx, &stale[i])
	}
}

func (s *SessionSweeper) abandonSession(ctx context.Context, session *models.InterviewSession) {
	now := time.Now()
	session.Status = models.StatusAbandoned
	session.EndedAt = &now
	session.PendingQuestion = ""
	session.QuestionStartedAt = nil

	if err := s.repo.UpdateInterviewSession(ctx, session); err != nil {
		slog.Error("Failed to abandon stale session", "error", err, "session_id", session.ID)
		return
	}

	slog.Info("Stale session abandoned", "session_id", session.ID, "user_id", session.UserID,
		"inactive_since", session.UpdatedAt)

	// Answers already given still deserve feedback
	if _, err := s.summaries.GenerateSummary(ctx, session.ID); err != nil {
		slog.Error("Summary generation for abandoned session failed", "error", err, "session_id", session.ID)
	}
}

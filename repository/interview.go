package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/prepmate/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Interview session operations

func (r *GORMRepository) CreateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create interview session", "error", err)
		return err
	}
	slog.Info("Interview session created", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

func (r *GORMRepository) GetInterviewSessions(ctx context.Context, userID string, status string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&sessions).Error; err != nil {
		slog.Error("Failed to get interview sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

// GetInterviewSession gets an interview session by ID without user check
func (r *GORMRepository) GetInterviewSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview session", "error", err, "session_id", sessionID)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) GetInterviewSessionWithDetails(ctx context.Context, sessionID string, userID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_index ASC")
		}).
		Preload("Summary").
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview session with details", "error", err, "session_id", sessionID, "user_id", userID)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) UpdateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		slog.Error("Failed to update interview session", "error", err, "session_id", session.ID)
		return err
	}
	return nil
}

// DeleteInterviewSession soft-deletes a session together with its answers
// and summary, in one transaction.
func (r *GORMRepository) DeleteInterviewSession(ctx context.Context, sessionID string, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", sessionID, userID).Delete(&models.InterviewSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.InterviewAnswer{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).Delete(&models.SessionSummary{}).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return err
		}
		slog.Error("Failed to delete interview session", "error", err, "session_id", sessionID)
		return err
	}
	slog.Info("Interview session deleted", "session_id", sessionID, "user_id", userID)
	return nil
}

// BulkDeleteInterviewSessions soft-deletes the given sessions with their
// answers and summaries. Only sessions owned by userID are touched; the
// returned count is how many sessions were actually deleted.
func (r *GORMRepository) BulkDeleteInterviewSessions(ctx context.Context, sessionIDs []string, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ? AND user_id = ?", sessionIDs, userID).Delete(&models.InterviewSession{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.InterviewAnswer{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id IN ?", sessionIDs).Delete(&models.SessionSummary{}).Error
	})
	if err != nil {
		slog.Error("Failed to bulk delete interview sessions", "error", err, "user_id", userID)
		return 0, err
	}
	slog.Info("Interview sessions deleted", "deleted_count", deleted, "user_id", userID)
	return deleted, nil
}

// GetStaleInProgressSessions returns in-progress sessions idle since the
// cutoff, used by the inactivity sweeper.
func (r *GORMRepository) GetStaleInProgressSessions(ctx context.Context, cutoff time.Time) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.StatusInProgress, cutoff).
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get stale sessions", "error", err)
		return nil, err
	}
	return sessions, nil
}

// Answer operations

func (r *GORMRepository) CreateInterviewAnswer(ctx context.Context, answer *models.InterviewAnswer) error {
	if err := r.db.WithContext(ctx).Create(answer).Error; err != nil {
		slog.Error("Failed to create interview answer", "error", err)
		return err
	}
	slog.Info("Interview answer created", "answer_id", answer.ID, "session_id", answer.SessionID)
	return nil
}

func (r *GORMRepository) GetInterviewAnswers(ctx context.Context, sessionID string) ([]models.InterviewAnswer, error) {
	var answers []models.InterviewAnswer
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_index ASC").
		Find(&answers).Error
	if err != nil {
		slog.Error("Failed to get interview answers", "error", err, "session_id", sessionID)
		return nil, err
	}
	return answers, nil
}

// GetUserAnswers returns every answer across a user's sessions, oldest
// first, for skill analysis.
func (r *GORMRepository) GetUserAnswers(ctx context.Context, userID string) ([]models.InterviewAnswer, error) {
	var answers []models.InterviewAnswer
	err := r.db.WithContext(ctx).
		Joins("JOIN interview_sessions ON interview_sessions.id = interview_answers.session_id").
		Where("interview_sessions.user_id = ? AND interview_sessions.deleted_at IS NULL", userID).
		Order("interview_answers.created_at ASC").
		Find(&answers).Error
	if err != nil {
		slog.Error("Failed to get user answers", "error", err, "user_id", userID)
		return nil, err
	}
	return answers, nil
}

// Summary operations

// UpsertSessionSummary inserts or replaces the single summary row per
// session, keyed on session_id.
func (r *GORMRepository) UpsertSessionSummary(ctx context.Context, summary *models.SessionSummary) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"overall_score", "strengths", "weaknesses",
			"improvement_plan", "skill_breakdown", "learning_roadmap", "updated_at",
		}),
	}).Create(summary).Error
	if err != nil {
		slog.Error("Failed to upsert session summary", "error", err, "session_id", summary.SessionID)
		return err
	}
	slog.Info("Session summary saved", "session_id", summary.SessionID, "overall_score", summary.OverallScore)
	return nil
}

func (r *GORMRepository) GetSessionSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	var summary models.SessionSummary
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&summary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get session summary", "error", err, "session_id", sessionID)
		return nil, err
	}
	return &summary, nil
}

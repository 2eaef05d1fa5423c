package repository

import (
	"context"
	"log/slog"

	"github.com/prepmate/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gamification operations

// GetOrCreateGamification returns the per-user progress row, creating the
// zero-value row on first access.
func (r *GORMRepository) GetOrCreateGamification(ctx context.Context, userID string) (*models.UserGamification, error) {
	var gamification models.UserGamification
	err := r.db.WithContext(ctx).
		Where(models.UserGamification{UserID: userID}).
		Attrs(models.UserGamification{Level: 1}).
		FirstOrCreate(&gamification).Error
	if err != nil {
		slog.Error("Failed to get or create gamification", "error", err, "user_id", userID)
		return nil, err
	}
	return &gamification, nil
}

func (r *GORMRepository) UpdateGamification(ctx context.Context, gamification *models.UserGamification) error {
	if err := r.db.WithContext(ctx).Save(gamification).Error; err != nil {
		slog.Error("Failed to update gamification", "error", err, "user_id", gamification.UserID)
		return err
	}
	return nil
}

// Badge operations

func (r *GORMRepository) GetBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).Order("requirement_value ASC").Find(&badges).Error; err != nil {
		slog.Error("Failed to get badges", "error", err)
		return nil, err
	}
	return badges, nil
}

// CreateBadge inserts a catalog badge; an existing code is left untouched.
func (r *GORMRepository) CreateBadge(ctx context.Context, badge *models.Badge) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(badge).Error
	if err != nil {
		slog.Error("Failed to create badge", "error", err, "code", badge.Code)
		return err
	}
	return nil
}

func (r *GORMRepository) GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("earned_at DESC").
		Find(&userBadges).Error
	if err != nil {
		slog.Error("Failed to get user badges", "error", err, "user_id", userID)
		return nil, err
	}
	return userBadges, nil
}

// AwardBadge records a badge for a user. Re-awarding is a no-op thanks to
// the unique user+badge index.
func (r *GORMRepository) AwardBadge(ctx context.Context, userBadge *models.UserBadge) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(userBadge)
	if result.Error != nil {
		slog.Error("Failed to award badge", "error", result.Error, "user_id", userBadge.UserID, "badge_id", userBadge.BadgeID)
		return false, result.Error
	}
	awarded := result.RowsAffected > 0
	if awarded {
		slog.Info("Badge awarded", "user_id", userBadge.UserID, "badge_id", userBadge.BadgeID)
	}
	return awarded, nil
}

// Daily challenge operations

func (r *GORMRepository) GetDailyChallenge(ctx context.Context, date string) (*models.DailyChallenge, error) {
	var challenge models.DailyChallenge
	if err := r.db.WithContext(ctx).Where("challenge_date = ?", date).First(&challenge).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get daily challenge", "error", err, "date", date)
		return nil, err
	}
	return &challenge, nil
}

// CreateDailyChallenge inserts the challenge for its date; when a
// concurrent caller got there first, it returns the existing row.
func (r *GORMRepository) CreateDailyChallenge(ctx context.Context, challenge *models.DailyChallenge) (*models.DailyChallenge, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_date"}},
		DoNothing: true,
	}).Create(challenge)
	if result.Error != nil {
		slog.Error("Failed to create daily challenge", "error", result.Error, "date", challenge.ChallengeDate)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return r.GetDailyChallenge(ctx, challenge.ChallengeDate)
	}
	slog.Info("Daily challenge created", "date", challenge.ChallengeDate, "type", challenge.ChallengeType)
	return challenge, nil
}

func (r *GORMRepository) GetChallengeProgress(ctx context.Context, userID, challengeID string) (*models.UserChallengeProgress, error) {
	var progress models.UserChallengeProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&progress).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get challenge progress", "error", err, "user_id", userID)
		return nil, err
	}
	return &progress, nil
}

func (r *GORMRepository) SaveChallengeProgress(ctx context.Context, progress *models.UserChallengeProgress) error {
	if err := r.db.WithContext(ctx).Save(progress).Error; err != nil {
		slog.Error("Failed to save challenge progress", "error", err, "user_id", progress.UserID)
		return err
	}
	return nil
}

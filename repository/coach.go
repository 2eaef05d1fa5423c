package repository

import (
	"context"
	"log/slog"

	"github.com/prepmate/backend/models"
	"gorm.io/gorm"
)

// Recommendation operations

func (r *GORMRepository) GetRecommendations(ctx context.Context, userID string) ([]models.AIRecommendation, error) {
	var recommendations []models.AIRecommendation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("priority ASC, created_at DESC").
		Find(&recommendations).Error
	if err != nil {
		slog.Error("Failed to get recommendations", "error", err, "user_id", userID)
		return nil, err
	}
	return recommendations, nil
}

// ReplaceRecommendations deletes the user's incomplete recommendations and
// inserts the fresh set in one transaction. Completed ones are kept as
// history.
func (r *GORMRepository) ReplaceRecommendations(ctx context.Context, userID string, recommendations []models.AIRecommendation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND is_completed = ?", userID, false).
			Delete(&models.AIRecommendation{}).Error; err != nil {
			return err
		}
		if len(recommendations) == 0 {
			return nil
		}
		return tx.Create(&recommendations).Error
	})
	if err != nil {
		slog.Error("Failed to replace recommendations", "error", err, "user_id", userID)
		return err
	}
	slog.Info("Recommendations replaced", "user_id", userID, "count", len(recommendations))
	return nil
}

func (r *GORMRepository) CompleteRecommendation(ctx context.Context, recommendationID, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.AIRecommendation{}).
		Where("id = ? AND user_id = ?", recommendationID, userID).
		Update("is_completed", true)
	if result.Error != nil {
		slog.Error("Failed to complete recommendation", "error", result.Error, "recommendation_id", recommendationID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Learning resource operations

func (r *GORMRepository) GetLearningResources(ctx context.Context, skill string) ([]models.LearningResource, error) {
	var resources []models.LearningResource
	query := r.db.WithContext(ctx)
	if skill != "" {
		query = query.Where("skill = ?", skill)
	}
	if err := query.Order("skill ASC, difficulty ASC").Find(&resources).Error; err != nil {
		slog.Error("Failed to get learning resources", "error", err, "skill", skill)
		return nil, err
	}
	return resources, nil
}

func (r *GORMRepository) CreateLearningResource(ctx context.Context, resource *models.LearningResource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		slog.Error("Failed to create learning resource", "error", err)
		return err
	}
	return nil
}

// Bookmark operations

func (r *GORMRepository) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) error {
	if err := r.db.WithContext(ctx).Create(bookmark).Error; err != nil {
		slog.Error("Failed to create bookmark", "error", err, "user_id", bookmark.UserID)
		return err
	}
	return nil
}

func (r *GORMRepository) GetBookmarks(ctx context.Context, userID string) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		slog.Error("Failed to get bookmarks", "error", err, "user_id", userID)
		return nil, err
	}
	return bookmarks, nil
}

func (r *GORMRepository) DeleteBookmark(ctx context.Context, bookmarkID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bookmarkID, userID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		slog.Error("Failed to delete bookmark", "error", result.Error, "bookmark_id", bookmarkID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

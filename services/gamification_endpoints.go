package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

// GamificationEndpoints serves XP/level state, badges, streaks, the daily
// challenge, the leaderboard and bookmarks.
type GamificationEndpoints struct {
	repo         *repository.GORMRepository
	stats        *repository.StatsRepository
	gamification *GamificationService
}

func NewGamificationEndpoints(repo *repository.GORMRepository, stats *repository.StatsRepository, gamification *GamificationService) *GamificationEndpoints {
	return &GamificationEndpoints{
		repo:         repo,
		stats:        stats,
		gamification: gamification,
	}
}

type CreateBookmarkRequest struct {
	SessionID    *string `json:"session_id"`
	QuestionText string  `json:"question_text"`
	Note         string  `json:"note"`
}

func (e *GamificationEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/gamification", func(r chi.Router) {
		r.Get("/profile", e.ProfileHandler)
		r.Get("/badges", e.BadgesHandler)
		r.Get("/streak", e.StreakHandler)
		r.Get("/challenge", e.DailyChallengeHandler)
		r.Get("/leaderboard", e.LeaderboardHandler)
	})

	r.Route("/bookmarks", func(r chi.Router) {
		r.Post("/", e.CreateBookmarkHandler)
		r.Get("/", e.GetBookmarksHandler)
		r.Delete("/{id}", e.DeleteBookmarkHandler)
	})
}

// ProfileHandler returns the XP/level/streak state with level progress
func (e *GamificationEndpoints) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	gamification, err := e.repo.GetOrCreateGamification(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get gamification profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"gamification": gamification,
		"progress":     ProgressFromXP(gamification.XP),
	})
}

// BadgesHandler returns the full badge catalog and which ones the user
// has earned.
func (e *GamificationEndpoints) BadgesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	badges, err := e.repo.GetBadges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get badges")
		return
	}

	userBadges, err := e.repo.GetUserBadges(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get earned badges")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"badges":        badges,
		"earned_badges": userBadges,
	})
}

// StreakHandler recomputes streak state from session history, including
// milestone progress.
func (e *GamificationEndpoints) StreakHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	streak, err := e.gamification.StreakOverview(r.Context(), user.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute streak")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(streak)
}

// DailyChallengeHandler returns today's challenge with the caller's
// progress, creating the challenge if this is the first request today.
func (e *GamificationEndpoints) DailyChallengeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	status, err := e.gamification.SyncChallengeProgress(r.Context(), user.ID, time.Now())
	if err != nil {
		slog.Error("Failed to get daily challenge", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to get daily challenge")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (e *GamificationEndpoints) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := e.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

func (e *GamificationEndpoints) CreateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	questionText := SanitizeText(req.QuestionText)
	if questionText == "" {
		writeError(w, http.StatusBadRequest, "Question text is required")
		return
	}

	bookmark := &models.Bookmark{
		UserID:       user.ID,
		SessionID:    req.SessionID,
		QuestionText: questionText,
		Note:         SanitizeText(req.Note),
	}
	if err := e.repo.CreateBookmark(r.Context(), bookmark); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create bookmark")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bookmark": bookmark,
	})
}

func (e *GamificationEndpoints) GetBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	bookmarks, err := e.repo.GetBookmarks(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bookmarks")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bookmarks": bookmarks,
		"count":     len(bookmarks),
	})
}

func (e *GamificationEndpoints) DeleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	if err := e.repo.DeleteBookmark(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

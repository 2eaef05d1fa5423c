package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

// CoachEndpoints serves skill analysis, study recommendations and curated
// learning resources.
type CoachEndpoints struct {
	repo *repository.GORMRepository
}

func NewCoachEndpoints(repo *repository.GORMRepository) *CoachEndpoints {
	return &CoachEndpoints{repo: repo}
}

func (e *CoachEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/coach", func(r chi.Router) {
		r.Get("/skills", e.SkillAnalysisHandler)
		r.Get("/recommendations", e.GetRecommendationsHandler)
		r.Post("/recommendations/refresh", e.RefreshRecommendationsHandler)
		r.Post("/recommendations/{id}/complete", e.CompleteRecommendationHandler)
		r.Get("/resources", e.GetResourcesHandler)
	})
}

// SkillAnalysisHandler computes per-skill averages and trends over the
// user's full answer history.
func (e *CoachEndpoints) SkillAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	answers, err := e.repo.GetUserAnswers(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load answer history")
		return
	}

	scores := make([]models.AnswerScores, 0, len(answers))
	for _, a := range answers {
		scores = append(scores, a.Scores.Data())
	}
	analysis := AnalyzeSkills(scores)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"skills":       analysis,
		"sample_count": len(scores),
	})
}

func (e *CoachEndpoints) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	recommendations, err := e.repo.GetRecommendations(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get recommendations")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// RefreshRecommendationsHandler recomputes recommendations from the
// weakest skills and replaces the incomplete set.
func (e *CoachEndpoints) RefreshRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	answers, err := e.repo.GetUserAnswers(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load answer history")
		return
	}

	scores := make([]models.AnswerScores, 0, len(answers))
	for _, a := range answers {
		scores = append(scores, a.Scores.Data())
	}
	analysis := AnalyzeSkills(scores)
	recommendations := BuildRecommendations(user.ID, analysis)

	if err := e.repo.ReplaceRecommendations(r.Context(), user.ID, recommendations); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save recommendations")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})

	slog.Info("Recommendations refreshed", "user_id", user.ID, "count", len(recommendations))
}

func (e *CoachEndpoints) CompleteRecommendationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	if err := e.repo.CompleteRecommendation(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		writeError(w, http.StatusNotFound, "Recommendation not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Recommendation completed",
	})
}

func (e *CoachEndpoints) GetResourcesHandler(w http.ResponseWriter, r *http.Request) {
	resources, err := e.repo.GetLearningResources(r.Context(), r.URL.Query().Get("skill"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get learning resources")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	})
}

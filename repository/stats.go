package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository runs the aggregate read queries over a raw pgx pool.
// These are reporting queries; they bypass the ORM on purpose.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// LeaderboardEntry is one row of the XP leaderboard
type LeaderboardEntry struct {
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"current_streak"`
	Rank          int    `json:"rank"`
}

// DailyActivity aggregates a user's completed work for one day
type DailyActivity struct {
	SessionsCompleted int     `json:"sessions_completed"`
	QuestionsAnswered int     `json:"questions_answered"`
	BestOverallScore  float64 `json:"best_overall_score"`
}

func (r *StatsRepository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT g.user_id, COALESCE(u.full_name, ''), g.xp, g.level, g.current_streak,
		       RANK() OVER (ORDER BY g.xp DESC) AS rank
		FROM user_gamifications g
		JOIN users u ON u.id = g.user_id
		WHERE g.deleted_at IS NULL AND u.deleted_at IS NULL
		ORDER BY g.xp DESC
		LIMIT $1`, limit)
	if err != nil {
		slog.Error("Failed to query leaderboard", "error", err)
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.FullName, &e.XP, &e.Level, &e.CurrentStreak, &e.Rank); err != nil {
			slog.Error("Failed to scan leaderboard row", "error", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CompletedSessionTimes returns the completion timestamps of a user's
// finished sessions, oldest first. Streak calculation runs over these.
func (r *StatsRepository) CompletedSessionTimes(ctx context.Context, userID string) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ended_at
		FROM interview_sessions
		WHERE user_id = $1 AND status = 'completed' AND ended_at IS NOT NULL AND deleted_at IS NULL
		ORDER BY ended_at ASC`, userID)
	if err != nil {
		slog.Error("Failed to query completed session times", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			slog.Error("Failed to scan session time", "error", err)
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// ActivityForDay aggregates what a user completed on one calendar day.
// day is YYYY-MM-DD in server-local time.
func (r *StatsRepository) ActivityForDay(ctx context.Context, userID, day string) (*DailyActivity, error) {
	var activity DailyActivity
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT s.id) FILTER (WHERE s.status = 'completed' AND s.ended_at::date = $2::date),
			COUNT(a.id) FILTER (WHERE a.created_at::date = $2::date),
			COALESCE(MAX((a.scores->>'overall')::float) FILTER (WHERE a.created_at::date = $2::date), 0)
		FROM interview_sessions s
		LEFT JOIN interview_answers a ON a.session_id = s.id AND a.deleted_at IS NULL
		WHERE s.user_id = $1 AND s.deleted_at IS NULL`, userID, day).
		Scan(&activity.SessionsCompleted, &activity.QuestionsAnswered, &activity.BestOverallScore)
	if err != nil {
		slog.Error("Failed to query daily activity", "error", err, "user_id", userID, "day", day)
		return nil, err
	}
	return &activity, nil
}

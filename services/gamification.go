package services

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

// XP awards for core activities. Badge and challenge rewards come from
// their own rows.
const (
	XPAnswerSubmitted    = 10
	XPInterviewCompleted = 50
)

// Badge requirement types
const (
	RequirementInterviews = "interviews"
	RequirementQuestions  = "questions"
	RequirementStreak     = "streak"
	RequirementScore      = "score"
)

var challengeTemplates = []models.DailyChallenge{
	{
		ChallengeType: "interview",
		Title:         "Complete 1 Interview",
		TitleVi:       "Hoàn thành 1 buổi phỏng vấn",
		Description:   "Complete at least 1 interview session today",
		DescriptionVi: "Hoàn thành ít nhất 1 buổi phỏng vấn hôm nay",
		TargetValue:   1,
		XPReward:      50,
	},
	{
		ChallengeType: "questions",
		Title:         "Answer 5 Questions",
		TitleVi:       "Trả lời 5 câu hỏi",
		Description:   "Answer at least 5 interview questions today",
		DescriptionVi: "Trả lời ít nhất 5 câu hỏi phỏng vấn hôm nay",
		TargetValue:   5,
		XPReward:      75,
	},
	{
		ChallengeType: "score",
		Title:         "Get 3+ Score",
		TitleVi:       "Đạt điểm 3+",
		Description:   "Score at least 3 on any answer today",
		DescriptionVi: "Đạt ít nhất 3 điểm trong 1 câu trả lời hôm nay",
		TargetValue:   3,
		XPReward:      60,
	},
	{
		ChallengeType: "interview",
		Title:         "Complete 2 Interviews",
		TitleVi:       "Hoàn thành 2 buổi phỏng vấn",
		Description:   "Complete at least 2 interview sessions today",
		DescriptionVi: "Hoàn thành ít nhất 2 buổi phỏng vấn hôm nay",
		TargetValue:   2,
		XPReward:      100,
	},
	{
		ChallengeType: "questions",
		Title:         "Answer 10 Questions",
		TitleVi:       "Trả lời 10 câu hỏi",
		Description:   "Answer at least 10 interview questions today",
		DescriptionVi: "Trả lời ít nhất 10 câu hỏi phỏng vấn hôm nay",
		TargetValue:   10,
		XPReward:      120,
	},
	{
		ChallengeType: "score",
		Title:         "Get 4+ Score",
		TitleVi:       "Đạt điểm 4+",
		Description:   "Score at least 4 on any answer today",
		DescriptionVi: "Đạt ít nhất 4 điểm trong 1 câu trả lời hôm nay",
		TargetValue:   4,
		XPReward:      100,
	},
	{
		ChallengeType: "streak",
		Title:         "Maintain Streak",
		TitleVi:       "Duy trì streak",
		Description:   "Complete any interview to maintain your streak",
		DescriptionVi: "Hoàn thành 1 buổi phỏng vấn để duy trì streak",
		TargetValue:   1,
		XPReward:      40,
	},
}

// GamificationService owns XP, levels, streak counters, badges and daily
// challenges. All awards funnel through AddXP so level recalculation
// happens in one place.
type GamificationService struct {
	repo  *repository.GORMRepository
	stats *repository.StatsRepository
}

func NewGamificationService(repo *repository.GORMRepository, stats *repository.StatsRepository) *GamificationService {
	return &GamificationService{repo: repo, stats: stats}
}

// XPAward reports one XP grant and whether it crossed a level boundary
type XPAward struct {
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	NewXP     int    `json:"new_xp"`
	NewLevel  int    `json:"new_level"`
	LeveledUp bool   `json:"leveled_up"`
}

// AddXP grants XP and recomputes the level from the running total.
func (g *GamificationService) AddXP(ctx context.Context, userID string, amount int, reason string) (*XPAward, error) {
	gam, err := g.repo.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return nil, err
	}

	gam.XP += amount
	newLevel := LevelFromXP(gam.XP)
	leveledUp := newLevel > gam.Level
	gam.Level = newLevel

	if err := g.repo.UpdateGamification(ctx, gam); err != nil {
		return nil, err
	}

	slog.Info("XP awarded", "user_id", userID, "amount", amount, "reason", reason, "level", newLevel, "leveled_up", leveledUp)
	return &XPAward{
		Amount:    amount,
		Reason:    reason,
		NewXP:     gam.XP,
		NewLevel:  newLevel,
		LeveledUp: leveledUp,
	}, nil
}

// UpdateStreak advances the daily streak counters. Same-day repeats are
// no-ops, a yesterday anchor extends the run, anything older resets to 1.
func (g *GamificationService) UpdateStreak(ctx context.Context, userID string, now time.Time) (*models.UserGamification, error) {
	gam, err := g.repo.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := now.Local().Format("2006-01-02")
	yesterday := now.Local().AddDate(0, 0, -1).Format("2006-01-02")

	if gam.LastActivityDate != nil && *gam.LastActivityDate == today {
		return gam, nil
	}

	if gam.LastActivityDate != nil && *gam.LastActivityDate == yesterday {
		gam.CurrentStreak++
	} else {
		gam.CurrentStreak = 1
	}
	if gam.CurrentStreak > gam.LongestStreak {
		gam.LongestStreak = gam.CurrentStreak
	}
	gam.LastActivityDate = &today

	if err := g.repo.UpdateGamification(ctx, gam); err != nil {
		return nil, err
	}

	if _, err := g.CheckBadges(ctx, userID, RequirementStreak, gam.CurrentStreak); err != nil {
		slog.Error("Streak badge check failed", "error", err, "user_id", userID)
	}

	slog.Info("Streak updated", "user_id", userID, "current_streak", gam.CurrentStreak, "longest_streak", gam.LongestStreak)
	return gam, nil
}

// RecordInterviewCompleted bumps the interview counter and runs its badge
// checks.
func (g *GamificationService) RecordInterviewCompleted(ctx context.Context, userID string) error {
	gam, err := g.repo.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return err
	}
	gam.TotalInterviews++
	if err := g.repo.UpdateGamification(ctx, gam); err != nil {
		return err
	}
	_, err = g.CheckBadges(ctx, userID, RequirementInterviews, gam.TotalInterviews)
	return err
}

// RecordQuestionAnswered bumps the answered-question counter and runs its
// badge checks.
func (g *GamificationService) RecordQuestionAnswered(ctx context.Context, userID string) error {
	gam, err := g.repo.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return err
	}
	gam.TotalQuestionsAnswered++
	if err := g.repo.UpdateGamification(ctx, gam); err != nil {
		return err
	}
	_, err = g.CheckBadges(ctx, userID, RequirementQuestions, gam.TotalQuestionsAnswered)
	return err
}

// CheckScoreBadge awards score-tier badges for a strong answer.
func (g *GamificationService) CheckScoreBadge(ctx context.Context, userID string, score float64) error {
	switch {
	case score >= 5:
		_, err := g.CheckBadges(ctx, userID, RequirementScore, 5)
		return err
	case score >= 4:
		_, err := g.CheckBadges(ctx, userID, RequirementScore, 4)
		return err
	}
	return nil
}

// CheckBadges awards every badge of the given requirement type whose
// threshold the value now meets. Already-earned badges are skipped by the
// unique index. Each fresh award also grants the badge's XP.
func (g *GamificationService) CheckBadges(ctx context.Context, userID, requirementType string, value int) ([]models.Badge, error) {
	badges, err := g.repo.GetBadges(ctx)
	if err != nil {
		return nil, err
	}

	var earned []models.Badge
	for _, badge := range badges {
		if badge.RequirementType != requirementType || badge.RequirementValue > value {
			continue
		}
		awarded, err := g.repo.AwardBadge(ctx, &models.UserBadge{
			UserID:   userID,
			BadgeID:  badge.ID,
			EarnedAt: time.Now(),
		})
		if err != nil {
			return earned, err
		}
		if !awarded {
			continue
		}
		earned = append(earned, badge)
		if badge.XPReward > 0 {
			if _, err := g.AddXP(ctx, userID, badge.XPReward, "Đạt huy hiệu: "+badge.NameVi); err != nil {
				slog.Error("Failed to award badge XP", "error", err, "user_id", userID, "badge", badge.Code)
			}
		}
	}
	return earned, nil
}

// EnsureDailyChallenge returns today's challenge, generating it from a
// random template on first call of the day. Generation is idempotent per
// date.
func (g *GamificationService) EnsureDailyChallenge(ctx context.Context, now time.Time) (*models.DailyChallenge, error) {
	today := now.Local().Format("2006-01-02")

	existing, err := g.repo.GetDailyChallenge(ctx, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	template := challengeTemplates[rand.Intn(len(challengeTemplates))]
	challenge := template
	challenge.ChallengeDate = today
	return g.repo.CreateDailyChallenge(ctx, &challenge)
}

// ChallengeStatus is today's challenge with the caller's progress
type ChallengeStatus struct {
	Challenge    *models.DailyChallenge `json:"challenge"`
	CurrentValue int                    `json:"current_value"`
	IsCompleted  bool                   `json:"is_completed"`
}

// SyncChallengeProgress measures the user's activity for today against the
// challenge target, persists the progress row, and pays out the reward XP
// exactly once on completion.
func (g *GamificationService) SyncChallengeProgress(ctx context.Context, userID string, now time.Time) (*ChallengeStatus, error) {
	challenge, err := g.EnsureDailyChallenge(ctx, now)
	if err != nil {
		return nil, err
	}

	today := now.Local().Format("2006-01-02")
	activity, err := g.stats.ActivityForDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	var current int
	switch challenge.ChallengeType {
	case "interview", "streak":
		current = activity.SessionsCompleted
	case "questions":
		current = activity.QuestionsAnswered
	case "score":
		if activity.BestOverallScore >= float64(challenge.TargetValue) {
			current = challenge.TargetValue
		}
	}

	progress, err := g.repo.GetChallengeProgress(ctx, userID, challenge.ID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &models.UserChallengeProgress{
			UserID:      userID,
			ChallengeID: challenge.ID,
		}
	}

	if progress.IsCompleted {
		return &ChallengeStatus{Challenge: challenge, CurrentValue: progress.CurrentValue, IsCompleted: true}, nil
	}

	progress.CurrentValue = current
	justCompleted := current >= challenge.TargetValue
	progress.IsCompleted = justCompleted

	if err := g.repo.SaveChallengeProgress(ctx, progress); err != nil {
		return nil, err
	}

	if justCompleted {
		if _, err := g.AddXP(ctx, userID, challenge.XPReward, "Hoàn thành thử thách hàng ngày"); err != nil {
			slog.Error("Failed to award challenge XP", "error", err, "user_id", userID)
		}
		slog.Info("Daily challenge completed", "user_id", userID, "challenge_type", challenge.ChallengeType)
	}

	return &ChallengeStatus{Challenge: challenge, CurrentValue: current, IsCompleted: justCompleted}, nil
}

// StreakOverview recomputes streak state from completed-session history
// and reports milestone progress for display.
func (g *GamificationService) StreakOverview(ctx context.Context, userID string, now time.Time) (*StreakData, error) {
	times, err := g.stats.CompletedSessionTimes(ctx, userID)
	if err != nil {
		return nil, err
	}
	data := CalculateStreaks(times, now)
	return &data, nil
}

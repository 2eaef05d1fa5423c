package models

import (
	"time"

	"gorm.io/gorm"
)

// UserGamification tracks XP, level, and streak state for a user
type UserGamification struct {
	ID                     string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                 string         `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	XP                     int            `gorm:"not null;default:0" json:"xp"`
	Level                  int            `gorm:"not null;default:1" json:"level"`
	CurrentStreak          int            `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak          int            `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate       *string        `gorm:"size:10" json:"last_activity_date,omitempty"` // YYYY-MM-DD
	TotalInterviews        int            `gorm:"not null;default:0" json:"total_interviews"`
	TotalQuestionsAnswered int            `gorm:"not null;default:0" json:"total_questions_answered"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Badge is an earnable achievement keyed by a requirement type and threshold
type Badge struct {
	ID               string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code             string         `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	NameVi           string         `gorm:"size:255" json:"name_vi"`
	Description      string         `gorm:"type:text" json:"description"`
	DescriptionVi    string         `gorm:"type:text" json:"description_vi"`
	Icon             string         `gorm:"size:50" json:"icon"`
	XPReward         int            `gorm:"not null;default:0" json:"xp_reward"`
	RequirementType  string         `gorm:"size:50;not null" json:"requirement_type"` // interviews, questions, streak, score
	RequirementValue int            `gorm:"not null" json:"requirement_value"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserBadge records a badge earned by a user
type UserBadge struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index:idx_user_badge,unique" json:"user_id"`
	BadgeID   string         `gorm:"type:uuid;not null;index:idx_user_badge,unique" json:"badge_id"`
	EarnedAt  time.Time      `gorm:"not null" json:"earned_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

// DailyChallenge is the single challenge generated per calendar date
type DailyChallenge struct {
	ID            string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChallengeDate string         `gorm:"size:10;uniqueIndex;not null" json:"challenge_date"` // YYYY-MM-DD
	ChallengeType string         `gorm:"size:50;not null" json:"challenge_type"`             // interview, questions, score, streak
	Title         string         `gorm:"size:255;not null" json:"title"`
	TitleVi       string         `gorm:"size:255" json:"title_vi"`
	Description   string         `gorm:"type:text" json:"description"`
	DescriptionVi string         `gorm:"type:text" json:"description_vi"`
	TargetValue   int            `gorm:"not null" json:"target_value"`
	XPReward      int            `gorm:"not null" json:"xp_reward"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserChallengeProgress tracks a user's completion of a daily challenge
type UserChallengeProgress struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string         `gorm:"type:uuid;not null;index:idx_user_challenge,unique" json:"user_id"`
	ChallengeID  string         `gorm:"type:uuid;not null;index:idx_user_challenge,unique" json:"challenge_id"`
	CurrentValue int            `gorm:"not null;default:0" json:"current_value"`
	IsCompleted  bool           `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Challenge DailyChallenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
}

// AIRecommendation is a coaching suggestion derived from weak skills.
// Incomplete recommendations are replaced wholesale on regeneration.
type AIRecommendation struct {
	ID                 string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID             string         `gorm:"type:uuid;not null;index" json:"user_id"`
	RecommendationType string         `gorm:"size:50;not null;default:'skill_focus'" json:"recommendation_type"`
	Title              string         `gorm:"size:255;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Priority           int            `gorm:"not null;default:2" json:"priority"` // 1 = urgent, 2 = normal
	IsCompleted        bool           `gorm:"not null;default:false" json:"is_completed"`
	RelatedSkill       *string        `gorm:"size:50" json:"related_skill,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// LearningResource is a curated study pointer for a skill dimension
type LearningResource struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Skill        string         `gorm:"size:50;not null;index" json:"skill"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	URL          *string        `gorm:"size:500" json:"url,omitempty"`
	ResourceType string         `gorm:"size:50;not null;default:'article'" json:"resource_type"`
	Difficulty   string         `gorm:"size:50;not null;default:'beginner'" json:"difficulty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Bookmark saves a question a user wants to revisit. Best-effort writes;
// persistence failures here are non-fatal.
type Bookmark struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID    *string        `gorm:"type:uuid" json:"session_id,omitempty"`
	QuestionText string         `gorm:"type:text;not null" json:"question_text"`
	Note         string         `gorm:"type:text" json:"note,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

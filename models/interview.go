package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session lifecycle states
const (
	StatusSetup      = "setup"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// AnswerScores holds the four skill dimensions plus the weighted overall.
// All values are in [0,5]; overall = 0.3*relevance + 0.3*depth +
// 0.2*structure + 0.2*clarity.
type AnswerScores struct {
	Relevance float64 `json:"relevance"`
	Structure float64 `json:"structure"`
	Depth     float64 `json:"depth"`
	Clarity   float64 `json:"clarity"`
	Overall   float64 `json:"overall"`
}

// AnswerFeedback is produced once per answer and never mutated afterwards
type AnswerFeedback struct {
	Evidence       []string `json:"evidence"`
	Suggestions    []string `json:"suggestions"`
	ImprovedAnswer string   `json:"improved_answer"`
}

// ImprovementDay is one entry of the 7-day post-session plan
type ImprovementDay struct {
	Day   int      `json:"day"`
	Focus string   `json:"focus"`
	Tasks []string `json:"tasks"`
}

// LearningRoadmapItem is a prioritized study topic attached to a summary
type LearningRoadmapItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"` // high, medium, low
	Skills         []string `json:"skills"`
	Resources      []string `json:"resources"`
	EstimatedHours int      `json:"estimated_hours"`
}

// InterviewSession represents one complete interview attempt
type InterviewSession struct {
	ID                   string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID               string                      `gorm:"type:uuid;not null;index" json:"user_id"`
	Role                 string                      `gorm:"size:50;not null" json:"role"`
	Level                string                      `gorm:"size:50;not null" json:"level"`
	Mode                 string                      `gorm:"size:50;not null" json:"mode"`
	Language             string                      `gorm:"size:10;not null;default:'en'" json:"language"`
	JDText               string                      `gorm:"type:text" json:"jd_text,omitempty"`
	Status               string                      `gorm:"not null;default:'setup';check:status IN ('setup', 'in_progress', 'completed', 'abandoned')" json:"status"`
	TotalQuestions       int                         `gorm:"not null;default:5" json:"total_questions"`
	CurrentQuestionIndex int                         `gorm:"not null;default:0" json:"current_question_index"`
	DifficultyScore      int                         `gorm:"not null;default:3" json:"difficulty_score"`
	FocusTags            datatypes.JSONSlice[string] `json:"focus_tags"`
	PendingQuestion      string                      `gorm:"type:text" json:"pending_question,omitempty"`
	QuestionTimeLimit    int                         `gorm:"not null;default:90" json:"question_time_limit"` // seconds
	QuestionStartedAt    *time.Time                  `json:"current_question_started_at,omitempty"`
	StartedAt            *time.Time                  `json:"started_at,omitempty"`
	EndedAt              *time.Time                  `json:"ended_at,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	DeletedAt            gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relationships
	User    User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Answers []InterviewAnswer `gorm:"foreignKey:SessionID" json:"answers,omitempty"`
	Summary *SessionSummary   `gorm:"foreignKey:SessionID" json:"summary,omitempty"`
}

// CanComplete reports whether the session may transition to completed.
// Only an in-progress session can; setup sessions have never started and
// completed/abandoned are terminal states.
func (s *InterviewSession) CanComplete() bool {
	return s.Status == StatusInProgress
}

// InterviewAnswer is one question/answer pair with its evaluation.
// Immutable after creation except for corrective feedback edits.
type InterviewAnswer struct {
	ID               string                             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID        string                             `gorm:"type:uuid;not null;index" json:"session_id"`
	QuestionIndex    int                                `gorm:"not null" json:"question_index"`
	QuestionText     string                             `gorm:"type:text;not null" json:"question_text"`
	AnswerText       string                             `gorm:"type:text;not null" json:"answer_text"`
	Scores           datatypes.JSONType[AnswerScores]   `json:"scores"`
	Feedback         datatypes.JSONType[AnswerFeedback] `json:"feedback"`
	TimeTakenSeconds *int                               `json:"time_taken_seconds,omitempty"`
	CreatedAt        time.Time                          `json:"created_at"`
	UpdatedAt        time.Time                          `json:"updated_at"`
	DeletedAt        gorm.DeletedAt                     `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

// SessionSummary stores the AI-generated synthesis of a completed session.
// One per session; regeneration replaces it via upsert on session_id.
type SessionSummary struct {
	ID              string                                    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID       string                                    `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	OverallScore    float64                                   `gorm:"type:decimal(4,2)" json:"overall_score"` // mean of per-answer overall, 0-5
	Strengths       datatypes.JSONSlice[string]               `json:"strengths"`
	Weaknesses      datatypes.JSONSlice[string]               `json:"weaknesses"`
	ImprovementPlan datatypes.JSONType[[]ImprovementDay]      `json:"improvement_plan"`
	SkillBreakdown  datatypes.JSONType[map[string]float64]    `json:"skill_breakdown"`
	LearningRoadmap datatypes.JSONType[[]LearningRoadmapItem] `json:"learning_roadmap"`
	CreatedAt       time.Time                                 `json:"created_at"`
	UpdatedAt       time.Time                                 `json:"updated_at"`
	DeletedAt       gorm.DeletedAt                            `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

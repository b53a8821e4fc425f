package model

import (
	"math"
	"time"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// UserProfile tracks tier and quota state per user. Rows are created lazily
// on the first access check and are never deleted.
type UserProfile struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	Tier               Tier       `json:"tier" gorm:"default:'free'"`
	QuestionsCompleted int        `json:"questions_completed" gorm:"default:0"`
	DemoCompleted      bool       `json:"demo_completed" gorm:"default:false"`
	UpgradedAt         *time.Time `json:"upgraded_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// User is a login account. Profiles are keyed by email independently so a
// profile can exist before its account (e.g. created by the payment webhook).
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"password,omitempty"` // Exclude from JSON responses
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsedQuestion marks one question as consumed by one user at one level.
// The composite unique index makes re-inserts conflict, which MarkUsed
// swallows; consumption history is permanent.
type UsedQuestion struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserEmail        string    `json:"user_email" gorm:"uniqueIndex:idx_used_question;not null"`
	QuestionObjectID string    `json:"question_object_id" gorm:"uniqueIndex:idx_used_question;not null"`
	Level            int       `json:"level" gorm:"uniqueIndex:idx_used_question;not null"`
	CreatedAt        time.Time `json:"created_at"`
}

// CompletedPack is the immutable record of one finished practice session.
type CompletedPack struct {
	ID               uint         `json:"id" gorm:"primaryKey"`
	UserEmail        string       `json:"user_email" gorm:"index;not null"`
	SourcePackID     string       `json:"source_pack_id"`
	PackSize         int          `json:"pack_size" gorm:"not null"`
	Level            int          `json:"level" gorm:"not null"`
	Score            int          `json:"score" gorm:"not null"`
	TotalQuestions   int          `json:"total_questions" gorm:"not null"`
	TimeTakenSeconds int          `json:"time_taken_seconds"`
	StartedAt        time.Time    `json:"started_at"`
	CompletedAt      time.Time    `json:"completed_at"`
	Answers          []UserAnswer `json:"answers,omitempty" gorm:"foreignKey:CompletedPackID"`
	CreatedAt        time.Time    `json:"created_at"`
}

// ScorePercentage is derived, never stored, so it cannot drift from Score.
func (p *CompletedPack) ScorePercentage() int {
	if p.TotalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(p.Score) / float64(p.TotalQuestions) * 100))
}

type UserAnswer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	CompletedPackID  uint      `json:"completed_pack_id" gorm:"index"`
	QuestionObjectID string    `json:"question_object_id"`
	QuestionText     string    `json:"question_text" gorm:"type:text"`
	SelectedAnswer   string    `json:"selected_answer"`
	CorrectAnswer    string    `json:"correct_answer"`
	IsCorrect        bool      `json:"is_correct"`
	AnsweredAt       time.Time `json:"answered_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// UsageRecord is one row per LLM API call, append-only. The spend ceiling is
// checked against the SUM of cost_usd over this table.
type UsageRecord struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Model        string    `json:"model" gorm:"not null"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	Endpoint     string    `json:"endpoint"`
	CreatedAt    time.Time `json:"created_at"`
}

// Question is a search-index hit, not a database row.
type Question struct {
	ObjectID      string   `json:"objectID"`
	Question      string   `json:"question"`
	Passage       string   `json:"passage,omitempty"`
	Choices       []string `json:"choices,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Level         int      `json:"level"`
	Year          int      `json:"year,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// Pack is an ephemeral practice set. It is never persisted; the authoritative
// record is the CompletedPack written when the session finishes.
type Pack struct {
	ID        string     `json:"pack_id"`
	Questions []Question `json:"questions"`
	Size      int        `json:"size"`
	Level     int        `json:"level"`
	CreatedAt time.Time  `json:"created_at"`
	Warning   string     `json:"warning,omitempty"`
}

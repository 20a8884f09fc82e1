package model

import "time"

type QuestionOption struct {
	Label string `bson:"label" json:"label"`
	Text  string `bson:"text" json:"text"`
}

// Question is the embedded, immutable snapshot stored on a session at
// creation time.
type Question struct {
	Type               string           `bson:"type" json:"type"`
	Category           string           `bson:"category" json:"category"`
	Difficulty         string           `bson:"difficulty" json:"difficulty"`
	Text               string           `bson:"text" json:"text"`
	Options            []QuestionOption `bson:"options" json:"options"`
	CorrectOptionLabel string           `bson:"correct_option_label" json:"correct_option_label"`
	Explanation        string           `bson:"explanation" json:"explanation"`
}

type TestSession struct {
	ID            string     `bson:"_id" json:"id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	Mode          string     `bson:"mode" json:"mode"`
	Category      string     `bson:"category" json:"category"`
	Difficulty    string     `bson:"difficulty" json:"difficulty"`
	QuestionCount int        `bson:"question_count" json:"question_count"`
	TimerSeconds  int        `bson:"timer_seconds,omitempty" json:"timer_seconds,omitempty"`
	Questions     []Question `bson:"questions" json:"questions"`
	StartedAt     time.Time  `bson:"started_at" json:"started_at"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Score         *float64   `bson:"score,omitempty" json:"score,omitempty"`
	IsPublic      bool       `bson:"is_public" json:"is_public"`
	PublicID      string     `bson:"public_id,omitempty" json:"public_id,omitempty"`

	IsDraft           bool `bson:"is_draft" json:"is_draft"`
	LastQuestionIndex int  `bson:"last_question_index" json:"last_question_index"`
	RemainingSeconds  int  `bson:"remaining_seconds" json:"remaining_seconds"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsCompleted follows the invariant: completed once completed_at is set and
// score is numeric.
func (s *TestSession) IsCompleted() bool {
	return s.CompletedAt != nil && s.Score != nil
}

// QuestionInstance gives each embedded question a stable identity that
// answers reference.
type QuestionInstance struct {
	ID            string    `bson:"_id" json:"id"`
	SessionID     string    `bson:"session_id" json:"session_id"`
	QuestionIndex int       `bson:"question_index" json:"question_index"`
	Category      string    `bson:"category" json:"category"`
	Type          string    `bson:"type" json:"type"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

type Answer struct {
	ID               string    `bson:"_id" json:"id"`
	SessionID        string    `bson:"session_id" json:"session_id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	QuestionIndex    int       `bson:"question_index" json:"question_index"`
	SelectedLabel    string    `bson:"selected_label" json:"selected_label"`
	CorrectLabel     string    `bson:"correct_label" json:"correct_label"`
	IsCorrect        bool      `bson:"is_correct" json:"is_correct"`
	TimeSpentSeconds int       `bson:"time_spent_seconds" json:"time_spent_seconds"`
	Category         string    `bson:"category" json:"category"`
	Difficulty       string    `bson:"difficulty" json:"difficulty"`
	AnsweredAt       time.Time `bson:"answered_at" json:"answered_at"`
}

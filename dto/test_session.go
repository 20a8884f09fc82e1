package dto

import (
	"time"

	"github.com/psikotes-ai/psikotes_api/model"
)

type CreateTestSessionRequest struct {
	Mode          string `json:"mode" validate:"required,oneof=psikotes cpns tpa" example:"psikotes"`
	Category      string `json:"category" validate:"required,oneof=verbal numerik logika spasial analitik kepribadian" example:"logika"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=mudah sedang sulit" example:"sedang"`
	QuestionCount int    `json:"question_count" validate:"required,min=1,max=50" example:"10"`
	TimerSeconds  int    `json:"timer_seconds,omitempty" validate:"omitempty,min=10,max=600" example:"60"`
}

func (r CreateTestSessionRequest) Validate() error {
	return GetValidator().Struct(r)
}

type PatchTestSessionRequest struct {
	Publish *bool `json:"publish,omitempty"`
}

func (r PatchTestSessionRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SubmitAnswerRequest struct {
	QuestionIndex    int    `json:"question_index" validate:"min=0"`
	SelectedLabel    string `json:"selected_label" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"min=0"`
}

func (r SubmitAnswerRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SaveDraftRequest struct {
	LastQuestionIndex int   `json:"last_question_index" validate:"min=0"`
	RemainingSeconds  int   `json:"remaining_seconds" validate:"min=0"`
	Clear             *bool `json:"clear,omitempty"`
}

func (r SaveDraftRequest) Validate() error {
	return GetValidator().Struct(r)
}

type TestSessionResponse struct {
	ID                string           `json:"id"`
	Mode              string           `json:"mode"`
	Category          string           `json:"category"`
	Difficulty        string           `json:"difficulty"`
	QuestionCount     int              `json:"question_count"`
	TimerSeconds      int              `json:"timer_seconds,omitempty"`
	Questions         []model.Question `json:"questions,omitempty"`
	StartedAt         time.Time        `json:"started_at"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	Score             *float64         `json:"score,omitempty"`
	IsPublic          bool             `json:"is_public"`
	PublicID          string           `json:"public_id,omitempty"`
	IsDraft           bool             `json:"is_draft"`
	LastQuestionIndex int              `json:"last_question_index"`
	RemainingSeconds  int              `json:"remaining_seconds"`
}

type CompleteSessionResponse struct {
	SessionID string  `json:"session_id"`
	Score     float64 `json:"score"`
	Answered  int     `json:"answered"`
	Correct   int     `json:"correct"`
}

type PublishSessionResponse struct {
	SessionID string `json:"session_id"`
	IsPublic  bool   `json:"is_public"`
	PublicID  string `json:"public_id,omitempty"`
}

type AnswerResponse struct {
	QuestionIndex int    `json:"question_index"`
	SelectedLabel string `json:"selected_label"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectLabel  string `json:"correct_label"`
	Explanation   string `json:"explanation,omitempty"`
}

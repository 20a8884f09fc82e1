package dto

import (
	"time"

	"github.com/psikotes-ai/psikotes_api/model"
)

type GenerateQuestionsRequest struct {
	Mode          string `json:"mode" validate:"required,oneof=psikotes cpns tpa"`
	Category      string `json:"category" validate:"required,oneof=verbal numerik logika spasial analitik kepribadian"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=mudah sedang sulit"`
	QuestionCount int    `json:"question_count" validate:"required,min=1,max=50"`
}

func (r GenerateQuestionsRequest) Validate() error {
	return GetValidator().Struct(r)
}

type QuickSessionResponse struct {
	ID            string                    `json:"id"`
	Mode          string                    `json:"mode"`
	Category      string                    `json:"category"`
	Difficulty    string                    `json:"difficulty"`
	QuestionCount int                       `json:"question_count"`
	Questions     []model.Question          `json:"questions"`
	Answers       map[int]model.QuickAnswer `json:"answers"`
	CurrentIndex  int                       `json:"current_index"`
	Completed     bool                      `json:"completed"`
	Score         *float64                  `json:"score,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type QuickAnswerRequest struct {
	QuestionIndex    int    `json:"question_index" validate:"min=0"`
	SelectedLabel    string `json:"selected_label" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"min=0"`
}

func (r QuickAnswerRequest) Validate() error {
	return GetValidator().Struct(r)
}

type QuickPatchRequest struct {
	CurrentIndex *int `json:"current_index,omitempty" validate:"omitempty,min=0"`
}

func (r QuickPatchRequest) Validate() error {
	return GetValidator().Struct(r)
}

package dto

import "github.com/psikotes-ai/psikotes_api/model"

type CreateKreplinResultRequest struct {
	DurationSeconds int                    `json:"duration_seconds" validate:"required,min=30,max=3600"`
	TotalAnswered   int                    `json:"total_answered" validate:"min=0"`
	TotalCorrect    int                    `json:"total_correct" validate:"min=0"`
	TotalIncorrect  int                    `json:"total_incorrect" validate:"min=0"`
	Sections        []model.KreplinSection `json:"sections" validate:"required,min=1,dive"`
	PerMinute       []model.KreplinMinute  `json:"per_minute,omitempty" validate:"omitempty,dive"`
}

func (r CreateKreplinResultRequest) Validate() error {
	return GetValidator().Struct(r)
}

type KreplinAnalysisResponse struct {
	ResultID string `json:"result_id"`
	Analysis string `json:"analysis"`
	// Cached reports whether the text was written by a previous analyze call.
	Cached bool `json:"cached"`
}

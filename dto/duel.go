package dto

type CreateDuelRequest struct {
	DurationSeconds int    `json:"duration_seconds" validate:"required,min=30,max=3600"`
	Category        string `json:"category,omitempty" validate:"omitempty,oneof=verbal numerik logika spasial analitik kepribadian"`
	Difficulty      string `json:"difficulty,omitempty" validate:"omitempty,oneof=mudah sedang sulit"`
	QuestionCount   int    `json:"question_count,omitempty" validate:"omitempty,min=1,max=50"`
}

func (r CreateDuelRequest) Validate() error {
	return GetValidator().Struct(r)
}

type JoinDuelRequest struct {
	RoomCode string `json:"room_code" validate:"required,len=6,alphanum"`
}

func (r JoinDuelRequest) Validate() error {
	return GetValidator().Struct(r)
}

type DuelReadyRequest struct {
	Ready bool `json:"ready"`
}

func (r DuelReadyRequest) Validate() error {
	return GetValidator().Struct(r)
}

type DuelResultRequest struct {
	ResultID string  `json:"result_id" validate:"required"`
	Answered int     `json:"answered" validate:"min=0"`
	Correct  int     `json:"correct" validate:"min=0"`
	Accuracy float64 `json:"accuracy" validate:"min=0,max=100"`
}

func (r DuelResultRequest) Validate() error {
	return GetValidator().Struct(r)
}

package model

import "time"

type KreplinSection struct {
	Section   int     `bson:"section" json:"section"`
	Answered  int     `bson:"answered" json:"answered"`
	Correct   int     `bson:"correct" json:"correct"`
	Incorrect int     `bson:"incorrect" json:"incorrect"`
	Accuracy  float64 `bson:"accuracy" json:"accuracy"`
}

type KreplinMinute struct {
	Minute   int `bson:"minute" json:"minute"`
	Answered int `bson:"answered" json:"answered"`
	Correct  int `bson:"correct" json:"correct"`
}

type KreplinResult struct {
	ID              string           `bson:"_id" json:"id"`
	UserID          string           `bson:"user_id" json:"user_id"`
	DurationSeconds int              `bson:"duration_seconds" json:"duration_seconds"`
	TotalAnswered   int              `bson:"total_answered" json:"total_answered"`
	TotalCorrect    int              `bson:"total_correct" json:"total_correct"`
	TotalIncorrect  int              `bson:"total_incorrect" json:"total_incorrect"`
	Accuracy        float64          `bson:"accuracy" json:"accuracy"`
	Sections        []KreplinSection `bson:"sections" json:"sections"`
	PerMinute       []KreplinMinute  `bson:"per_minute" json:"per_minute"`
	// Analysis is written at most once; enforced by KreplinService, not the schema.
	Analysis  string    `bson:"analysis,omitempty" json:"analysis,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

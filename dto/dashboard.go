package dto

import "time"

type DashboardResponse struct {
	UserID             string             `json:"user_id"`
	CompletedSessions  int                `json:"completed_sessions"`
	TotalAnswered      int                `json:"total_answered"`
	TotalCorrect       int                `json:"total_correct"`
	TotalIncorrect     int                `json:"total_incorrect"`
	AverageAccuracy    float64            `json:"average_accuracy"`
	AverageSecondsPerQ float64            `json:"average_seconds_per_question"`
	CategoryBreakdown  []CategoryAccuracy `json:"category_breakdown"`
	RecentSessions     []SessionSummary   `json:"recent_sessions"`
}

type CategoryAccuracy struct {
	Category string  `json:"category"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type SessionSummary struct {
	SessionID     string     `json:"session_id"`
	Mode          string     `json:"mode"`
	Category      string     `json:"category"`
	Difficulty    string     `json:"difficulty"`
	QuestionCount int        `json:"question_count"`
	Score         *float64   `json:"score,omitempty"`
	Accuracy      float64    `json:"accuracy"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

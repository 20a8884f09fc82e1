package model

import "time"

// QuickAnswer mirrors a subset of Answer for the anonymous quick-test flow.
type QuickAnswer struct {
	QuestionIndex    int       `json:"question_index"`
	SelectedLabel    string    `json:"selected_label"`
	CorrectLabel     string    `json:"correct_label"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// QuickSession is the ephemeral record held by the file-backed store. It is
// never reconciled with the persistent collections.
type QuickSession struct {
	ID            string              `json:"id"`
	Mode          string              `json:"mode"`
	Category      string              `json:"category"`
	Difficulty    string              `json:"difficulty"`
	QuestionCount int                 `json:"question_count"`
	Questions     []Question          `json:"questions"`
	Answers       map[int]QuickAnswer `json:"answers"`
	CurrentIndex  int                 `json:"current_index"`
	Completed     bool                `json:"completed"`
	Score         *float64            `json:"score,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Clone returns a copy that shares no mutable state with the receiver, so a
// caller can read it while the store keeps mutating its own record.
func (s *QuickSession) Clone() *QuickSession {
	copied := *s
	if s.Questions != nil {
		copied.Questions = make([]Question, len(s.Questions))
		copy(copied.Questions, s.Questions)
	}
	if s.Answers != nil {
		copied.Answers = make(map[int]QuickAnswer, len(s.Answers))
		for k, v := range s.Answers {
			copied.Answers[k] = v
		}
	}
	if s.Score != nil {
		score := *s.Score
		copied.Score = &score
	}
	return &copied
}

package model

import "time"

type DuelParticipant struct {
	UserID      string     `bson:"user_id" json:"user_id"`
	Username    string     `bson:"username" json:"username"`
	Ready       bool       `bson:"ready" json:"ready"`
	ResultID    string     `bson:"result_id,omitempty" json:"result_id,omitempty"`
	Answered    int        `bson:"answered" json:"answered"`
	Correct     int        `bson:"correct" json:"correct"`
	Accuracy    float64    `bson:"accuracy" json:"accuracy"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
}

// Duel is a paired session shared by a room code. Kreplin duels and test
// duels live in separate collections but share this shape.
type Duel struct {
	ID        string           `bson:"_id" json:"id"`
	Kind      string           `bson:"kind" json:"kind"`
	RoomCode  string           `bson:"room_code" json:"room_code"`
	Status    string           `bson:"status" json:"status"`
	Host      DuelParticipant  `bson:"host" json:"host"`
	Guest     *DuelParticipant `bson:"guest,omitempty" json:"guest,omitempty"`
	Settings  DuelSettings     `bson:"settings" json:"settings"`
	StartedAt *time.Time       `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at" json:"updated_at"`
}

type DuelSettings struct {
	DurationSeconds int    `bson:"duration_seconds" json:"duration_seconds"`
	Category        string `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty      string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	QuestionCount   int    `bson:"question_count,omitempty" json:"question_count,omitempty"`
}

// Participant returns the sub-document belonging to userID, or nil.
func (d *Duel) Participant(userID string) *DuelParticipant {
	if d.Host.UserID == userID {
		return &d.Host
	}
	if d.Guest != nil && d.Guest.UserID == userID {
		return d.Guest
	}
	return nil
}

func (d *Duel) BothReady() bool {
	return d.Guest != nil && d.Host.Ready && d.Guest.Ready
}

func (d *Duel) BothSubmitted() bool {
	return d.Guest != nil && d.Host.ResultID != "" && d.Guest.ResultID != ""
}

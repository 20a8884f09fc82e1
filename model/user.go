package model

import (
	"time"

	"github.com/psikotes-ai/psikotes_api/shared"
)

type User struct {
	ID                  string     `bson:"_id" json:"id"`
	Email               string     `bson:"email" json:"email"`
	Username            string     `bson:"username" json:"username"`
	Password            string     `bson:"password" json:"-"`
	Role                string     `bson:"role" json:"role"`
	Membership          string     `bson:"membership" json:"membership"`
	MembershipExpiresAt *time.Time `bson:"membership_expires_at,omitempty" json:"membership_expires_at,omitempty"`
	LastSeenAt          *time.Time `bson:"last_seen_at,omitempty" json:"last_seen_at,omitempty"`
	CreatedAt           time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether the membership is active at t.
func (u *User) IsMember(t time.Time) bool {
	if u.Membership != shared.MembershipMember {
		return false
	}
	if u.MembershipExpiresAt == nil {
		return true
	}
	return u.MembershipExpiresAt.After(t)
}

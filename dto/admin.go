package dto

import "time"

type AdminUserListResponse struct {
	Users []AdminUserInfo `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type AdminUserInfo struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Username            string     `json:"username"`
	Role                string     `json:"role"`
	Membership          string     `json:"membership"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty"`
	LastSeenAt          *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type AdminUpdateUserRequest struct {
	Role                string     `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Membership          string     `json:"membership,omitempty" validate:"omitempty,oneof=member non_member"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty"`
}

func (r AdminUpdateUserRequest) Validate() error {
	return GetValidator().Struct(r)
}

type AdminSessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

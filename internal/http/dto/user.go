package dto

import (
	"time"

	"agentcomm.app/relay/internal/model"
)

type UserResponse struct {
	ID        int64     `json:"id,string"`
	OrgID     *int64    `json:"org_id,omitempty,string"`
	TeamID    *int64    `json:"team_id,omitempty,string"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      *string   `json:"role,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		OrgID:     u.OrgID,
		TeamID:    u.TeamID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

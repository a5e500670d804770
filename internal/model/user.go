package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	OrgID     *int64    `json:"org_id,omitempty"`
	TeamID    *int64    `json:"team_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      *string   `json:"role,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	WorkOSID  *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleOr returns the user's role, or fallback when none is set.
func (u User) RoleOr(fallback string) string {
	if u.Role == nil || *u.Role == "" {
		return fallback
	}
	return *u.Role
}

// InOrg reports whether the user belongs to orgID.
func (u User) InOrg(orgID int64) bool {
	return u.OrgID != nil && *u.OrgID == orgID
}

package models

import (
	"strings"
	"time"
)

// PermissionLevel is the access a collaborator holds on a trip. "edit"
// covers content mutation only; managing collaborators and invitations
// remains owner-only regardless of level.
type PermissionLevel string

const (
	PermissionView PermissionLevel = "view"
	PermissionEdit PermissionLevel = "edit"
)

// ParsePermissionLevel normalizes raw input to a valid level, falling back
// to view when the value is absent or unrecognized.
func ParsePermissionLevel(raw string) PermissionLevel {
	level := PermissionLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !level.Valid() {
		return PermissionView
	}
	return level
}

func (p PermissionLevel) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// Collaborator is one user's standing access to one trip. At most one row
// exists per (trip, user) pair, and the trip owner is never among them.
type Collaborator struct {
	ID          string          `json:"id"`
	TripID      string          `json:"trip_id"`
	UserID      string          `json:"user_id"`
	Permissions PermissionLevel `json:"permissions"`
	AddedAt     time.Time       `json:"added_at"`

	// Display identity joined from the user directory for listings.
	Username  string  `json:"username,omitempty"`
	FullName  string  `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is a single-use, time-boxed offer of collaborator access.
// The token is a bearer capability: whoever presents it may redeem the
// invitation, with no check against the redeeming account's email.
type Invitation struct {
	ID           string           `json:"id"`
	TripID       string           `json:"trip_id"`
	InvitedBy    string           `json:"invited_by"`
	InvitedEmail string           `json:"invited_email"`
	Token        string           `json:"-"`
	Permissions  PermissionLevel  `json:"permissions"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
}

// IsExpired reports whether the invitation's window has passed. Expiry is
// evaluated lazily; expired rows keep their pending status in storage.
func (i Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Resolvable reports whether the invitation can still be accepted or
// declined.
func (i Invitation) Resolvable(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}

// InvitationSummary is a pending invitation joined with the trip it offers
// access to and the identity of the inviter, as shown to the invitee.
type InvitationSummary struct {
	ID                string          `json:"invitation_id"`
	Token             string          `json:"invitation_token"`
	Permissions       PermissionLevel `json:"permissions"`
	CreatedAt         time.Time       `json:"created_at"`
	ExpiresAt         time.Time       `json:"expires_at"`
	TripID            string          `json:"trip_id"`
	TripName          string          `json:"trip_name"`
	TripDescription   *string         `json:"trip_description,omitempty"`
	TripCoverImageURL *string         `json:"trip_cover_image_url,omitempty"`
	InvitedByUsername string          `json:"invited_by_username"`
	InvitedByName     string          `json:"invited_by_name"`
}

package models

import "time"

// Trip is the unit of access control. The collaboration core only ever
// reads OwnerUserID and IsPublic; the remaining fields feed list views and
// invitation summaries.
type Trip struct {
	ID            string    `json:"id"`
	OwnerUserID   string    `json:"owner_user_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

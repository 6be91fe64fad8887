package models

import "time"

// ProfileSlots is the number of family member avatars shown in the header.
const ProfileSlots = 5

// Profile represents one family member avatar slot. The image bytes live
// in the store's profile blob bucket, keyed by ID.
type Profile struct {
	ID          int       `boltholdKey:"ID" json:"id"`
	ContentType string    `json:"contentType"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

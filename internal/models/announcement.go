package models

import "time"

// Announcement is a manager broadcast shown to staff until it expires.
type Announcement struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Audience  Role       `json:"audience,omitempty"` // empty = everyone
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	ReadAt *time.Time `json:"read_at,omitempty"` // set on per-reader projections
}

// AnnouncementRead records that one profile has seen one announcement.
type AnnouncementRead struct {
	AnnouncementID int64     `json:"announcement_id"`
	ProfileID      int64     `json:"profile_id"`
	ReadAt         time.Time `json:"read_at"`
}

package models

import "time"

// Role is stored as a plain string; capability checks live in internal/authz.
type Role string

const (
	RoleEmployee       Role = "employee"
	RoleManager        Role = "manager"
	RoleKitchenManager Role = "kitchen_manager"
	RoleFrontManager   Role = "front_manager"
	RoleAdmin          Role = "admin"
)

// Profile represents a person. Profiles are never hard-deleted; ArchivedAt
// marks them inactive instead.
type Profile struct {
	ID           int64      `json:"id"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Telegram opt-in for push notifications
	TelegramChatID int64 `json:"telegram_chat_id,omitempty"`
	NotifyTelegram bool  `json:"notify_telegram"`

	// refresh-token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileFilter defines the available parameters for listing profiles.
type ProfileFilter struct {
	Role            *Role
	IncludeArchived bool
}

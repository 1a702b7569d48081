package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccessLevel string

const (
	AccessDriver AccessLevel = "driver"
	AccessUser   AccessLevel = "user"
	AccessAdmin  AccessLevel = "admin"
)

// RoleAdmin is the account role that unlocks user management.
const RoleAdmin = "admin"

// User is the profile the auth collaborator hands to the core.
type User struct {
	bun.BaseModel `bun:"table:users"`
	ID            uuid.UUID   `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Email         string      `bun:"email,notnull,unique" json:"email"`
	FullName      string      `bun:"full_name" json:"full_name"`
	PasswordHash  string      `bun:"password_hash" json:"-"`
	TokenVersion  int         `bun:"token_version" json:"-"`
	Role          string      `bun:"role" json:"role"`
	AccessLevel   AccessLevel `bun:"access_level" json:"access_level,omitempty"`
	Provider      string      `bun:"provider" json:"provider"`
	CreatedAt     time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	LastLoginAt   *time.Time  `bun:"last_login_at" json:"last_login_at,omitempty"`
}

type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens"`
	ID            uuid.UUID `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID        uuid.UUID `bun:"type:uuid" json:"user_id"`
	JTI           string    `json:"jti"`
	TokenHash     string    `json:"token_hash"`
	DeviceInfo    *string   `json:"device_info"`
	Revoked       bool      `json:"revoked"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// UpdateAccessLevelRequest is the body of PUT /users/{id}/access-level.
type UpdateAccessLevelRequest struct {
	AccessLevel AccessLevel `json:"access_level" validate:"required,oneof=driver user admin"`
}

package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persistent user identity. The internal id is assigned once at
// creation and never reused. GoogleSubject is unique when present; it is
// nullable only for accounts created through the legacy email login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	GoogleSubject *string    `bun:"google_subject,unique,nullzero" json:"google_subject,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	DisplayName   string     `bun:"display_name,notnull" json:"display_name,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Summary projects the fields the login response exposes.
func (u *User) Summary(token string) *LoginResult {
	return &LoginResult{
		Token:       token,
		UserID:      u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// NewUserFromClaims builds a fresh User from verified external claims.
// created_at and updated_at start equal.
func NewUserFromClaims(claims *ExternalClaims, now time.Time) *User {
	subject := claims.Subject
	return &User{
		ID:            uuid.New(),
		GoogleSubject: &subject,
		Email:         claims.Email,
		DisplayName:   claims.Name,
		AvatarURL:     claims.Picture,
		CreatedAt:     &now,
		UpdatedAt:     &now,
	}
}

package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered member of the site.
//
// ResetPasswordToken and ResetPasswordExpires are set together while a
// password reset is outstanding and unset together once it is consumed.
type User struct {
	ID                   bson.ObjectID `bson:"_id,omitempty"`
	Name                 string        `bson:"name"`
	Email                string        `bson:"email"`
	PasswordHash         string        `bson:"password_hash"`
	Role                 Role          `bson:"role"`
	ResetPasswordToken   string        `bson:"reset_password_token,omitempty"`
	ResetPasswordExpires *time.Time    `bson:"reset_password_expires,omitempty"`
	CreatedAt            time.Time     `bson:"created_at"`
	UpdatedAt            time.Time     `bson:"updated_at"`
}

// HasLiveResetToken reports whether the user holds a reset token that has not expired at now.
func (u *User) HasLiveResetToken(now time.Time) bool {
	return u.ResetPasswordToken != "" && u.ResetPasswordExpires != nil && now.Before(*u.ResetPasswordExpires)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

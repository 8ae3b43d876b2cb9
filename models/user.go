package models

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleSuperAdmin  Role = "super-admin"
	RoleVegAdmin    Role = "veg-admin"
	RoleNonVegAdmin Role = "non-veg-admin"
	RoleCustomer    Role = "customer"
	RoleGuest       Role = "guest"
)

// IsAdmin reports whether the role belongs to the admin dashboard side.
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleVegAdmin || r == RoleNonVegAdmin
}

type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `json:"name"`
	Email         string `gorm:"index" json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Phone         string `json:"phone"`
	PasswordHash  string `json:"-"`
	Role          Role   `gorm:"type:VARCHAR(20);default:'customer'" json:"role"`
	// SessionID is set only while Role is guest; cleared on promotion.
	SessionID *string   `gorm:"uniqueIndex" json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID returns the identity carts and orders are keyed by: the guest
// session while anonymous, otherwise the numeric user id.
func (u *User) OwnerID() string {
	if u.Role == RoleGuest && u.SessionID != nil && *u.SessionID != "" {
		return *u.SessionID
	}
	return "user_" + strconv.FormatUint(uint64(u.ID), 10)
}

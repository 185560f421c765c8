package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole accepts any casing of USER / ADMIN.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"id"`
	UserID       string    `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	Username     string    `gorm:"size:64;uniqueIndex:ux_users_username" json:"username"`
	Email        string    `gorm:"size:191;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Role         Role      `gorm:"size:16;default:'USER'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Caller is the authenticated identity handed to every usecase operation.
type Caller struct {
	ID   uint64
	Role Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	Name            string    `json:"name"`
	Email           string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Image           string    `json:"image"`
	Password        string    `json:"-"` // Store hashed password, ignore for JSON serialization
	HasNotification bool      `json:"has_notification" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserCompact is the author shape embedded in feed rows
type UserCompact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, Image: u.Image}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Image    string `json:"image,omitempty" validate:"omitempty,url"`
	Password string `json:"password" validate:"required,min=8"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an account profile. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	AvatarURL    string    `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserClaims are JWT claims for an authenticated user
type UserClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SignupRequest is the request body for account creation
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after signup or login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

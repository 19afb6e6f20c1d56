package auth

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user matches
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when signup hits the unique username constraint
	ErrUsernameTaken = errors.New("username already exists")
)

// User is an account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=20"`
	Password string `json:"password" binding:"required" validate:"required,min=6,max=30"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

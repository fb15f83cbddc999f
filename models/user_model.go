package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SafeUser is the admin dashboard row: the user joined with its live quota.
type SafeUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	APICalls  int       `json:"api_calls"`
	CreatedAt time.Time `json:"created_at"`
}

// Limits in the validate tags: usernames 64 characters, emails 255 (the
// column width), passwords 72 bytes (bcrypt's input limit).
type RegisterForm struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRes struct {
	APICalls int    `json:"api_calls"`
	IsAdmin  bool   `json:"isAdmin"`
	Username string `json:"username"`
}

type CheckUserRes struct {
	IsAdmin  bool      `json:"isAdmin"`
	APICalls int       `json:"apiCalls"`
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type UpdateUser struct {
	Username string `json:"username" validate:"required,max=64"`
}

type APICallsRes struct {
	APICalls int `json:"apiCalls"`
}

type MessageRes struct {
	Message string `json:"message"`
}

type UsersRes struct {
	Users   []SafeUser `json:"users"`
	IsAdmin bool       `json:"isAdmin"`
}

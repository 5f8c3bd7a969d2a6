// ABOUTME: Auth request/response models for the exam platform API
// ABOUTME: Defines the identity record and login/register API contracts

package models

import (
	"errors"
	"strings"
)

// ErrPasswordMismatch is returned when a registration form's passwords differ
var ErrPasswordMismatch = errors.New("passwords do not match")

// Identity is the authenticated user's record as returned by the API
type Identity struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// IsZero reports whether the identity carries no user
func (i Identity) IsZero() bool {
	return i.ID == 0 && i.Username == "" && i.Email == ""
}

// LoginRequest represents credentials for authentication
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration form
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks required fields and password confirmation
func (r RegisterRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return errors.New("missing required field(s): " + strings.Join(missing, ", "))
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// AuthResponse is returned by the login and register endpoints
type AuthResponse struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

// MeResponse is returned by GET /auth/me
type MeResponse struct {
	User Identity `json:"user"`
}

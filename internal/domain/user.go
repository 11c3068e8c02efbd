package domain

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the caller resolved from a session token.
// Guests and anonymous viewers have an empty UserID.
type Identity struct {
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name"`
	IsGuest bool   `json:"is_guest"`
}

// IsMember reports whether the identity belongs to a registered user.
func (i Identity) IsMember() bool {
	return i.UserID != "" && !i.IsGuest
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after a successful login. The token itself is
// delivered as a cookie.
type AuthResponse struct {
	Name      string    `json:"name"`
	UserID    string    `json:"user_id,omitempty"`
	IsGuest   bool      `json:"is_guest"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

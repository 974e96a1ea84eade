package dto

import "time"

// AdminLoginRequest payload for admin login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

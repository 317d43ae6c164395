package application

import (
	"time"

	"github.com/google/uuid"
)

type Config struct {
	DefaultRole          string
	TokenTTL             time.Duration
	ResetTokenTTL        time.Duration
	FailedLoginThreshold int
	LockDuration         time.Duration
	ResetLinkBaseURL     string

	ThrottleIPThreshold       int
	ThrottleIdentityThreshold int
	ThrottleWindow            time.Duration
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	IPAddress   string `json:"-"`
}

type SignupResponse struct {
	AccountID uuid.UUID `json:"accountId"`
	Role      string    `json:"role"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type ResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

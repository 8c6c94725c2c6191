package auth

import (
	"time"

	"github.com/docuflow/go-auth-service/users"
)

// RegisterRequest carries the fields needed to create a credential record.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest carries a login attempt.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// AuthResponse is returned by register, login, and refresh.
type AuthResponse struct {
	UserID         string         `json:"userId"`
	Email          string         `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	FullName       string         `json:"fullName"`
	Role           users.RoleType `json:"role"`
	AccessToken    string         `json:"accessToken"`
	RefreshToken   string         `json:"refreshToken"`
	TokenExpiry    time.Time      `json:"tokenExpiry"`
	EmailConfirmed bool           `json:"emailConfirmed"`
}

// UserInfo is the profile view of a credential record.
type UserInfo struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	FullName       string         `json:"fullName"`
	Role           users.RoleType `json:"role"`
	Active         bool           `json:"isActive"`
	EmailConfirmed bool           `json:"emailConfirmed"`
	CreatedAt      time.Time      `json:"createdAt"`
	LastLoginAt    *time.Time     `json:"lastLoginAt,omitempty"`
}

func (s *Service) authResponse(user *users.User, accessToken, refreshToken string) *AuthResponse {
	return &AuthResponse{
		UserID:         user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		FullName:       user.FullName(),
		Role:           user.Role,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiry:    s.nowFunc().Add(s.accessTokenExpiry),
		EmailConfirmed: user.EmailConfirmed,
	}
}

func userInfo(user *users.User) *UserInfo {
	return &UserInfo{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		FullName:       user.FullName(),
		Role:           user.Role,
		Active:         user.Active,
		EmailConfirmed: user.EmailConfirmed,
		CreatedAt:      user.CreatedAt,
		LastLoginAt:    user.LastLoginAt,
	}
}

package transport

import "time"

// SignInRequest is bound before the credential rules run, so it only
// checks presence.
type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Username string   `json:"username" validate:"required,username"`
	Password string   `json:"password" validate:"required,strongpassword"`
	FullName string   `json:"fullName" validate:"required,max=100"`
	Phone    string   `json:"phone" validate:"omitempty,max=32"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
}

type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Roles       []string  `json:"roles"`
}

type ProfileResponse struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"fullName"`
	Phone        *string    `json:"phone,omitempty"`
	IsActive     bool       `json:"isActive"`
	Roles        []string   `json:"roles"`
	LastSignInAt *time.Time `json:"lastSignInAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type PermissionsResponse struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type SetRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

type UserSummaryResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	FullName string   `json:"fullName"`
	IsActive bool     `json:"isActive"`
	Roles    []string `json:"roles"`
}

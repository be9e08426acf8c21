package handler

import (
	"context"
	"net/http"

	"dentalcare_backend/internal/auth/service"
	"dentalcare_backend/internal/auth/transport"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/httpkit"
	"dentalcare_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidUserID  = "invalid user id"
	tokenTypeBearer   = "Bearer"
)

// AuthService is the part of the auth service the handlers call.
type AuthService interface {
	SignIn(ctx context.Context, username, password string) (service.SignInResult, error)
	GetMe(ctx context.Context, userID uuid.UUID) (service.Profile, error)
	Permissions(roles []string) []string
	ListUsers(ctx context.Context) ([]service.UserSummary, error)
	CreateUser(ctx context.Context, in service.CreateUserInput) (service.Profile, error)
	SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

type Handler struct {
	svc AuthService
	val *validator.Validator
}

func New(svc AuthService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-in", h.SignIn)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.ValidateStruct(req); httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.SignIn(c.Request.Context(), req.Username, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AuthResponse{
		AccessToken: result.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   result.ExpiresAt,
		Roles:       result.Roles,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	profile, err := h.svc.GetMe(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toProfileResponse(profile))
}

// GetMyPermissions returns the permissions of the roles carried by the token.
func (h *Handler) GetMyPermissions(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	roles := identity.Roles()
	if roles == nil {
		roles = []string{}
	}
	httpkit.OK(c, transport.PermissionsResponse{
		Roles:       roles,
		Permissions: h.svc.Permissions(roles),
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.ValidateStruct(req); httpkit.HandleError(c, err) {
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), identity.UserID(), req.CurrentPassword, req.NewPassword)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.UserSummaryResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, transport.UserSummaryResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			FullName: user.FullName,
			IsActive: user.IsActive,
			Roles:    user.Roles,
		})
	}
	httpkit.OK(c, resp)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.ValidateStruct(req); httpkit.HandleError(c, err) {
		return
	}

	profile, err := h.svc.CreateUser(c.Request.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Roles:    req.Roles,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toProfileResponse(profile))
}

func (h *Handler) SetUserRoles(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidUserID))
		return
	}

	var req transport.SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.ValidateStruct(req); httpkit.HandleError(c, err) {
		return
	}

	if httpkit.HandleError(c, h.svc.SetUserRoles(c.Request.Context(), userID, req.Roles)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func toProfileResponse(profile service.Profile) transport.ProfileResponse {
	return transport.ProfileResponse{
		ID:           profile.ID.String(),
		Username:     profile.Username,
		FullName:     profile.FullName,
		Phone:        profile.Phone,
		IsActive:     profile.IsActive,
		Roles:        profile.Roles,
		LastSignInAt: profile.LastSignInAt,
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    profile.UpdatedAt,
	}
}

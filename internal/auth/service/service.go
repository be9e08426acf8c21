package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dentalcare_backend/internal/auth/lockout"
	"dentalcare_backend/internal/auth/password"
	"dentalcare_backend/internal/auth/permission"
	"dentalcare_backend/internal/auth/repository"
	"dentalcare_backend/internal/auth/timingguard"
	"dentalcare_backend/internal/auth/validator"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/logger"
	"dentalcare_backend/platform/phone"
	"dentalcare_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	eventSignIn         = "sign_in"
	eventCreateUser     = "create_user"
	eventChangePassword = "change_password"

	msgInvalidCredentials = "invalid username or password"
	msgUserNotFound       = "user not found"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID, username string, roles []string) (string, time.Time, error)
}

// Deps are the collaborators of the auth service.
type Deps struct {
	Repo        repository.AuthRepository
	Lockout     lockout.Store
	Tokens      TokenIssuer
	Guard       *timingguard.Guard
	Permissions *permission.Resolver
	Phone       *phone.Normalizer
	Log         *logger.Logger
	MaxAttempts int
}

type Service struct {
	repo        repository.AuthRepository
	lockout     lockout.Store
	tokens      TokenIssuer
	guard       *timingguard.Guard
	perms       *permission.Resolver
	phone       *phone.Normalizer
	log         *logger.Logger
	maxAttempts int
}

func New(deps Deps) *Service {
	s := &Service{
		repo:        deps.Repo,
		lockout:     deps.Lockout,
		tokens:      deps.Tokens,
		guard:       deps.Guard,
		perms:       deps.Permissions,
		phone:       deps.Phone,
		log:         deps.Log,
		maxAttempts: deps.MaxAttempts,
	}
	if s.lockout == nil {
		s.lockout = lockout.NoopStore{}
	}
	if s.guard == nil {
		s.guard = timingguard.Default()
	}
	if s.perms == nil {
		s.perms = permission.NewResolver(permission.DefaultTable())
	}
	if s.phone == nil {
		s.phone = phone.NewNormalizer(phone.DefaultRegion)
	}
	return s
}

// SignInResult is a successful sign-in.
type SignInResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      uuid.UUID
	Roles       []string
}

// Profile is the signed-in user's view of their account.
type Profile struct {
	ID           uuid.UUID
	Username     string
	FullName     string
	Phone        *string
	IsActive     bool
	Roles        []string
	LastSignInAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is one row of the user listing.
type UserSummary struct {
	ID       uuid.UUID
	Username string
	FullName string
	IsActive bool
	Roles    []string
}

// CreateUserInput carries the raw fields of a new account.
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Phone    string
	Roles    []string
}

func invalidCredentials() error {
	return apperr.Unauthorized(msgInvalidCredentials)
}

// SignIn verifies credentials and issues an access token. Every outcome,
// success or failure, takes at least the guard's minimum response time.
func (s *Service) SignIn(ctx context.Context, username, plainPassword string) (SignInResult, error) {
	return timingguard.Run(ctx, s.guard, func(ctx context.Context) (SignInResult, error) {
		return s.signIn(ctx, username, plainPassword)
	})
}

func (s *Service) signIn(ctx context.Context, username, plainPassword string) (SignInResult, error) {
	log := s.log.WithContext(ctx)

	normalized, err := validator.ValidateUsername(username)
	if err != nil {
		log.AuthEvent(eventSignIn, username, false, "invalid_username")
		return SignInResult{}, err
	}
	if err := validator.ValidatePassword(plainPassword); err != nil {
		log.AuthEvent(eventSignIn, normalized, false, "invalid_password")
		return SignInResult{}, err
	}

	if s.maxAttempts > 0 {
		failures, err := s.lockout.Failures(ctx, normalized)
		if err != nil {
			log.Warn("lockout lookup failed", "error", err)
		} else if failures >= s.maxAttempts {
			log.AuthEvent(eventSignIn, normalized, false, "locked_out")
			return SignInResult{}, apperr.TooManyRequests("too many failed sign-in attempts, try again later")
		}
	}

	user, err := s.repo.GetUserByUsername(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		password.CompareDummy(plainPassword)
		s.recordFailure(ctx, log, normalized, "unknown_user")
		return SignInResult{}, invalidCredentials()
	}
	if err != nil {
		log.DatabaseError("get_user_by_username", err)
		return SignInResult{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.recordFailure(ctx, log, normalized, "wrong_password")
		return SignInResult{}, invalidCredentials()
	}
	if !user.IsActive {
		s.recordFailure(ctx, log, normalized, "inactive_user")
		return SignInResult{}, invalidCredentials()
	}

	if err := s.lockout.Reset(ctx, normalized); err != nil {
		log.Warn("lockout reset failed", "error", err)
	}

	roles, err := s.repo.GetUserRoles(ctx, user.ID)
	if err != nil {
		log.DatabaseError("get_user_roles", err)
		return SignInResult{}, apperr.Wrap(apperr.KindInternal, "failed to load roles", err)
	}

	accessToken, expiresAt, err := s.tokens.Issue(user.ID, user.Username, roles)
	if err != nil {
		return SignInResult{}, err
	}

	if err := s.repo.TouchLastSignIn(ctx, user.ID); err != nil {
		log.DatabaseError("touch_last_sign_in", err)
	}

	log.AuthEvent(eventSignIn, normalized, true, "")
	return SignInResult{AccessToken: accessToken, ExpiresAt: expiresAt, UserID: user.ID, Roles: roles}, nil
}

func (s *Service) recordFailure(ctx context.Context, log *logger.Logger, username, reason string) {
	log.AuthEvent(eventSignIn, username, false, reason)
	if s.maxAttempts <= 0 {
		return
	}
	if _, err := s.lockout.RecordFailure(ctx, username); err != nil {
		log.Warn("lockout record failed", "error", err)
	}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Profile{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	roles, err := s.repo.GetUserRoles(ctx, user.ID)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.KindInternal, "failed to load roles", err)
	}
	return toProfile(user, roles), nil
}

// Permissions returns the sorted permissions granted to roles.
func (s *Service) Permissions(roles []string) []string {
	return s.perms.Permissions(roles)
}

func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	rows, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list users", err)
	}

	users := make([]UserSummary, 0, len(rows))
	for _, row := range rows {
		users = append(users, UserSummary{
			ID:       row.ID,
			Username: row.Username,
			FullName: row.FullName,
			IsActive: row.IsActive,
			Roles:    row.Roles,
		})
	}
	return users, nil
}

// CreateUser registers a staff account with the given roles.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (Profile, error) {
	username, err := validator.ValidateUsername(in.Username)
	if err != nil {
		return Profile{}, err
	}
	if err := validator.ValidateStrongPassword(in.Password); err != nil {
		return Profile{}, err
	}

	fullName := sanitize.Text(in.FullName)
	if fullName == "" {
		return Profile{}, apperr.InvalidInput("full name is required").WithField("fullName")
	}

	if err := s.checkRoles(in.Roles); err != nil {
		return Profile{}, err
	}

	var phoneNumber *string
	normalizedPhone, err := s.phone.Normalize(in.Phone)
	if err != nil {
		return Profile{}, err
	}
	if normalizedPhone != "" {
		phoneNumber = &normalizedPhone
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, repository.NewUser{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Phone:        phoneNumber,
		Roles:        in.Roles,
	})
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return Profile{}, apperr.Conflict("username already taken").WithField("username")
	case errors.Is(err, repository.ErrInvalidRole):
		return Profile{}, apperr.InvalidInput("unknown role").WithField("roles")
	case err != nil:
		return Profile{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	s.log.WithContext(ctx).AuthEvent(eventCreateUser, username, true, "")
	return s.GetMe(ctx, user.ID)
}

// SetUserRoles replaces the roles of an account.
func (s *Service) SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	if err := s.checkRoles(roles); err != nil {
		return err
	}

	err := s.repo.SetUserRoles(ctx, userID, roles)
	switch {
	case errors.Is(err, repository.ErrInvalidRole):
		return apperr.InvalidInput("unknown role").WithField("roles")
	case err != nil:
		return apperr.Wrap(apperr.KindInternal, "failed to update roles", err)
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	log := s.log.WithContext(ctx)
	if err := password.Compare(user.PasswordHash, currentPassword); err != nil {
		log.AuthEvent(eventChangePassword, user.Username, false, "wrong_password")
		return apperr.BadRequest("current password is incorrect").WithField("currentPassword")
	}
	if err := validator.ValidateStrongPassword(newPassword); err != nil {
		return err
	}
	if newPassword == currentPassword {
		return apperr.InvalidInput("new password must differ from the current password").WithField("newPassword")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update password", err)
	}

	log.AuthEvent(eventChangePassword, user.Username, true, "")
	return nil
}

func (s *Service) checkRoles(roles []string) error {
	if len(roles) == 0 {
		return apperr.InvalidInput("at least one role is required").WithField("roles")
	}
	for _, role := range roles {
		if !s.perms.HasRole(role) {
			return apperr.InvalidInput(fmt.Sprintf("unknown role %q", role)).WithField("roles")
		}
	}
	return nil
}

func toProfile(user repository.User, roles []string) Profile {
	return Profile{
		ID:           user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		Phone:        user.Phone,
		IsActive:     user.IsActive,
		Roles:        roles,
		LastSignInAt: user.LastSignInAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

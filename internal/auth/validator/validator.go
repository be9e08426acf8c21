// Package validator normalizes and validates credentials and bearer tokens
// before they reach the auth service.
package validator

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 8
)

// PasswordPolicy describes the password requirements for API error messages
const PasswordPolicy = "Password must be at least 8 characters and include: uppercase letter, lowercase letter and number"

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	bearerPattern   = regexp.MustCompile(`^Bearer\s+(\S.*)$`)
)

// ValidateUsername trims and lowercases s and checks length and charset.
// It returns the normalized username.
func ValidateUsername(s string) (string, error) {
	if s == "" {
		return "", apperr.InvalidInput("username is required").WithField("username")
	}

	normalized := strings.ToLower(strings.TrimSpace(s))
	length := utf8.RuneCountInString(normalized)
	if length < minUsernameLength {
		return "", apperr.InvalidInput("username must be at least 3 characters").WithField("username")
	}
	if length > maxUsernameLength {
		return "", apperr.InvalidInput("username must be at most 50 characters").WithField("username")
	}
	if !usernamePattern.MatchString(normalized) {
		return "", apperr.InvalidInput("username may only contain lowercase letters, digits and underscores").WithField("username")
	}
	return normalized, nil
}

// ValidatePassword enforces the sign-in rule: present and at least 8 characters.
func ValidatePassword(s string) error {
	if s == "" {
		return apperr.InvalidInput("password is required").WithField("password")
	}
	if utf8.RuneCountInString(s) < minPasswordLength {
		return apperr.InvalidInput("password must be at least 8 characters").WithField("password")
	}
	return nil
}

// ValidateStrongPassword enforces the rule for new passwords: the sign-in
// rule plus an uppercase letter, a lowercase letter and a digit.
func ValidateStrongPassword(s string) error {
	if err := ValidatePassword(s); err != nil {
		return err
	}
	if !isStrongPassword(s) {
		return apperr.InvalidInput(PasswordPolicy).WithField("password")
	}
	return nil
}

// ValidateTokenFormat checks the JWT shape only: three non-empty segments.
// Signatures are verified by the middleware.
func ValidateTokenFormat(token string) error {
	if token == "" {
		return apperr.New(apperr.KindInvalidTokenFormat, "token is required")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return apperr.New(apperr.KindInvalidTokenFormat, "token must have three segments")
	}
	for _, part := range parts {
		if part == "" {
			return apperr.New(apperr.KindInvalidTokenFormat, "token segments must not be empty")
		}
	}
	return nil
}

// ExtractBearerToken returns the credential of an Authorization header.
// The scheme name is matched case-sensitively.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.New(apperr.KindMissingAuthorization, "authorization header is missing")
	}
	if m := bearerPattern.FindStringSubmatch(header); m != nil {
		return m[1], nil
	}
	if strings.HasPrefix(header, "Bearer") {
		return "", apperr.New(apperr.KindTokenNotProvided, "bearer token not provided")
	}
	return "", apperr.New(apperr.KindInvalidAuthScheme, "authorization scheme must be Bearer")
}

// Register installs the strongpassword and username tags on val.
func Register(val *validator.Validator) error {
	if err := val.RegisterRule("strongpassword", validateStrongPassword, PasswordPolicy); err != nil {
		return err
	}
	return val.RegisterRule("username", validateUsernameTag, "username must be 3-50 characters of a-z, 0-9 or _")
}

func validateStrongPassword(fl govalidator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return ValidateStrongPassword(fl.Field().String()) == nil
}

func validateUsernameTag(fl govalidator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := ValidateUsername(fl.Field().String())
	return err == nil
}

func isStrongPassword(password string) bool {
	var (
		hasUpper bool
		hasLower bool
		hasDigit bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}

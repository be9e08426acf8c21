// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"dentalcare_backend/platform/apperr"

	"github.com/go-playground/validator/v10"
)

const msgValidationFailed = "validation failed"

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate

	mu       sync.RWMutex
	messages map[string]string
}

// New creates a new Validator instance. Field names in errors are reported by
// their JSON name. Domain-specific rules are registered with RegisterRule.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	return &Validator{
		v: v,
		messages: map[string]string{
			"required": "wajib diisi",
			"min":      "terlalu pendek",
			"max":      "terlalu panjang",
			"oneof":    "nilai tidak dikenal",
			"email":    "format email tidak valid",
		},
	}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// RegisterRule registers a custom validation function together with the
// message reported when it fails. The function also runs for nil pointers,
// leaving the optional-field policy to the rule itself.
func (val *Validator) RegisterRule(tag string, fn validator.Func, message string) error {
	if err := val.v.RegisterValidation(tag, fn, true); err != nil {
		return err
	}
	val.mu.Lock()
	val.messages[tag] = message
	val.mu.Unlock()
	return nil
}

// ValidateStruct validates s and converts failures into a ValidationFailed
// error whose Details map JSON field names to messages.
func (val *Validator) ValidateStruct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	fields := val.FieldErrors(err)
	if len(fields) == 0 {
		return apperr.Wrap(apperr.KindBadRequest, msgValidationFailed, err)
	}
	return apperr.New(apperr.KindValidationFailed, msgValidationFailed).
		WithField(firstField(fields)).
		WithDetails(fields)
}

// FieldErrors maps each failing field to a human-readable message.
// Returns nil when err is not a validation error.
func (val *Validator) FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	val.mu.RLock()
	defer val.mu.RUnlock()

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, exists := out[field]; exists {
			continue
		}
		if msg, ok := val.messages[fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = fmt.Sprintf("tidak valid (%s)", fe.Tag())
	}
	return out
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func firstField(fields map[string]string) string {
	first := ""
	for name := range fields {
		if first == "" || name < first {
			first = name
		}
	}
	return first
}

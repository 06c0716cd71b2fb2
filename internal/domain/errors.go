package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced to clients in the "error" field.
const (
	KindValidation   = "VALIDATION_FAILED"
	KindUnauthorized = "UNAUTHORIZED"
	KindAlreadyUsed  = "ALREADY_USED"
	KindNotFound     = "NOT_FOUND"
	KindRateLimited  = "RATE_LIMITED"
	KindUnknown      = "UNKNOWN"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError is a business-rule rejection (409). Details is echoed to the client.
type ConflictError struct {
	Resource string
	Code     string
	Msg      string
	Details  map[string]any
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnauthorizedError covers missing, wrong or expired credentials.
type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

// AlreadyUsedError is a replay of a single-use credential.
type AlreadyUsedError struct {
	Resource string
}

func (e AlreadyUsedError) Error() string {
	if e.Resource == "" {
		return "already used"
	}
	return fmt.Sprintf("%s already used", e.Resource)
}

type RateLimitedError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests (%s), retry after %ds", e.Scope, e.RetryAfterSeconds())
}

// RetryAfterSeconds rounds up so clients never retry early.
func (e RateLimitedError) RetryAfterSeconds() int {
	s := int((e.RetryAfter + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return "internal error: " + e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsAlreadyUsed(err error) bool {
	var target AlreadyUsedError
	return errors.As(err, &target)
}

func IsRateLimited(err error) bool {
	var target RateLimitedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// Kind classifies err into the client-facing taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err), IsConflict(err):
		return KindValidation
	case IsUnauthorized(err):
		return KindUnauthorized
	case IsAlreadyUsed(err):
		return KindAlreadyUsed
	case IsNotFound(err):
		return KindNotFound
	case IsRateLimited(err):
		return KindRateLimited
	default:
		return KindUnknown
	}
}

package moderation

import (
	"errors"
	"fmt"
)

var (
	// ErrCaseNotFound means no active entry carries the requested case ID.
	ErrCaseNotFound = errors.New("case not found or already cleared")
	// ErrPublishFailure means the audit record could not be posted and the
	// new entry was rolled back.
	ErrPublishFailure = errors.New("failed to publish audit record")
)

// ValidationError rejects a request before any state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

var (
	ErrInvalidCaseID  = &ValidationError{Reason: "case id is empty"}
	ErrSelfTarget     = &ValidationError{Reason: "moderator cannot target themselves"}
	ErrBotTarget      = &ValidationError{Reason: "bot accounts cannot be targeted"}
	ErrEmptyReason    = &ValidationError{Reason: "reason is empty"}
	ErrReasonTooLong  = &ValidationError{Reason: "reason exceeds 512 characters"}
	ErrEmptyNote      = &ValidationError{Reason: "note text is empty"}
	ErrMissingGuildID = &ValidationError{Reason: "guild id is empty"}
)

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// PlatformErrorKind classifies a failed chat-platform call.
type PlatformErrorKind string

const (
	KindPermission  PlatformErrorKind = "permission"
	KindTransport   PlatformErrorKind = "transport"
	KindNotFound    PlatformErrorKind = "not_found"
	KindRoleNotHeld PlatformErrorKind = "role_not_held"
)

var (
	ErrPermissionDenied = errors.New("platform permission denied")
	ErrTransport        = errors.New("platform transport error")
	ErrMemberNotFound   = errors.New("member not found")
	ErrRoleNotHeld      = errors.New("member does not hold the role")
)

// PlatformError wraps a failure returned by the chat platform.
type PlatformError struct {
	Op   string
	Kind PlatformErrorKind
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func (e *PlatformError) Is(target error) bool {
	switch target {
	case ErrPermissionDenied:
		return e.Kind == KindPermission
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrMemberNotFound:
		return e.Kind == KindNotFound
	case ErrRoleNotHeld:
		return e.Kind == KindRoleNotHeld
	}
	return false
}

// NewPlatformError builds a PlatformError.
func NewPlatformError(op string, kind PlatformErrorKind, err error) *PlatformError {
	return &PlatformError{Op: op, Kind: kind, Err: err}
}

// describePlatformError turns a collaborator failure into the short phrase
// used in outcome messages.
func describePlatformError(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "机器人权限不足"
	case errors.Is(err, ErrMemberNotFound):
		return "找不到该成员"
	case errors.Is(err, ErrRoleNotHeld):
		return "成员未持有该角色"
	default:
		return fmt.Sprintf("请求失败: %v", err)
	}
}

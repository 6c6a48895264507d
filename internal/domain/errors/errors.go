package errors

import (
	"errors"
	"fmt"
)

// Kind classifies authentication failures so handlers can map them to a
// status code without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTokenGeneration covers invalid mint inputs and key or crypto
	// failures while issuing a token.
	KindTokenGeneration
	// KindInvalidToken covers malformed, tampered, foreign-key,
	// structurally incomplete, or premature (nbf) tokens.
	KindInvalidToken
	// KindTokenExpired is kept separate from KindInvalidToken so callers
	// can prompt re-authentication.
	KindTokenExpired
	// KindTokenValidation marks an unexpected fault during verification,
	// not a malformed input.
	KindTokenValidation
	// KindInvalidPassword marks a password that fails the length or
	// emptiness policy.
	KindInvalidPassword
	// KindHashing marks an Argon2 setup or hashing failure.
	KindHashing
	// KindVerification marks a corrupt stored hash or a verify-time
	// fault. A plain wrong password is a false return, never this kind.
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindTokenGeneration:
		return "token_generation"
	case KindInvalidToken:
		return "invalid_token"
	case KindTokenExpired:
		return "token_expired"
	case KindTokenValidation:
		return "token_validation"
	case KindInvalidPassword:
		return "invalid_password"
	case KindHashing:
		return "hashing"
	case KindVerification:
		return "verification"
	default:
		return "unknown"
	}
}

// Error is the single authentication error type: a kind, a message safe to
// log, and an optional wrapped cause. Messages never carry plaintext
// passwords, key material, or raw crypto internals.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error preserving the underlying cause for logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, or KindUnknown when err is not an
// authentication Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already registered")
	ErrNoRoles            = errors.New("user has no assigned roles")
	ErrNotFound           = errors.New("record not found")
)

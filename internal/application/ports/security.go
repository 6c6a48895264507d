package ports

import (
	"time"

	"github.com/AndreFerreira5/starranja/internal/domain"
)

// PasswordHasher hashes and verifies passwords (Argon2id, PHC-encoded).
// Implementations are safe for concurrent use after construction.
type PasswordHasher interface {
	// ValidatePassword applies the length and emptiness policy. It runs
	// before hashing only; verification accepts any plaintext.
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	// CheckPassword returns false for a wrong password; an error means the
	// stored hash is corrupt or verification itself failed.
	CheckPassword(encodedHash, password string) (bool, error)
	// CheckNeedsRehash never fails; a hash it cannot read needs no rehash.
	CheckNeedsRehash(encodedHash string) bool
	// VerifyAndUpdate verifies and, when the hash parameters are stale,
	// returns a fresh hash for the caller to persist. A failed rehash
	// never fails a successful verification.
	VerifyAndUpdate(encodedHash, password string) (valid bool, newHash string, err error)
}

// TokenIssuer mints and verifies PASETO v4.local access tokens.
// Implementations are safe for concurrent use after construction.
type TokenIssuer interface {
	Generate(userID string, roles []string) (string, error)
	GenerateWithExpiry(userID string, roles []string, expiresIn time.Duration) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
	// DecodeUnsafe skips every structural and temporal check and returns
	// nil on any failure. Diagnostics only, never an auth decision.
	DecodeUnsafe(token string) *domain.TokenClaims
}

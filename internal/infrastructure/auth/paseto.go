package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/AndreFerreira5/starranja/internal/domain"
	autherr "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const tokenPrefix = "v4.local."

// TokenService mints and verifies PASETO v4.local access tokens
// (symmetric authenticated encryption with XChaCha20-Poly1305). Tokens are
// stateless and self-expiring; there is one active key and no revocation.
// Construct once per process and inject; the key never changes during the
// process lifetime.
type TokenService struct {
	key           paseto.V4SymmetricKey
	parser        paseto.Parser
	defaultExpiry time.Duration
}

// NewTokenService derives the symmetric key from its hex encoding. The key
// must be exactly 32 bytes (64 hex characters); anything else fails fast.
func NewTokenService(secretKeyHex string, defaultExpiry time.Duration) (*TokenService, error) {
	if len(secretKeyHex) != 64 {
		return nil, autherr.New(autherr.KindTokenGeneration,
			"secret key must be exactly 32 bytes (64 hex characters)")
	}
	raw, err := hex.DecodeString(secretKeyHex)
	if err != nil {
		return nil, autherr.Wrap(autherr.KindTokenGeneration, "secret key is not valid hex", err)
	}
	key, err := paseto.V4SymmetricKeyFromBytes(raw)
	if err != nil {
		return nil, autherr.Wrap(autherr.KindTokenGeneration, "failed to derive symmetric key", err)
	}
	if defaultExpiry <= 0 {
		defaultExpiry = 15 * time.Minute
	}
	return &TokenService{
		key: key,
		// temporal checks run in Verify with distinct error kinds, so the
		// parser itself carries no validity rules
		parser:        paseto.NewParserWithoutExpiryCheck(),
		defaultExpiry: defaultExpiry,
	}, nil
}

// Generate mints a token with the configured default lifetime.
func (s *TokenService) Generate(userID string, roles []string) (string, error) {
	return s.GenerateWithExpiry(userID, roles, s.defaultExpiry)
}

// GenerateWithExpiry mints a token binding userID to roles, valid from now
// until now+expiresIn. Timestamps are UTC at whole-second precision, so a
// decrypted token reproduces the minted claims exactly.
func (s *TokenService) GenerateWithExpiry(userID string, roles []string, expiresIn time.Duration) (string, error) {
	if err := validateMintInputs(userID, roles); err != nil {
		return "", err
	}
	if expiresIn <= 0 {
		expiresIn = s.defaultExpiry
	}

	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(expiresIn)

	token := paseto.NewToken()
	token.SetString("user_id", userID)
	if err := token.Set("roles", roles); err != nil {
		return "", autherr.Wrap(autherr.KindTokenGeneration,
			"an error occurred while generating the token", err)
	}
	token.SetIssuedAt(now)
	token.SetExpiration(exp)
	token.SetNotBefore(now)

	return token.V4Encrypt(s.key, nil), nil
}

// Verify decrypts and validates a token: prefix, authenticity, payload
// structure, expiry, then not-before, in that order. Structural problems
// are reported before temporal ones, so a payload missing user_id fails on
// that ground even when it is also expired.
func (s *TokenService) Verify(token string) (*domain.TokenClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, autherr.New(autherr.KindInvalidToken, "token must be a non-empty string")
	}
	if !strings.HasPrefix(token, tokenPrefix) {
		return nil, autherr.New(autherr.KindInvalidToken, "invalid token format - must be PASETO v4.local")
	}

	parsed, err := s.parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		// tampering, truncation, foreign keys and structural corruption
		// all collapse into one failure; the reason is not leaked
		return nil, autherr.New(autherr.KindInvalidToken, "token verification failed - invalid token")
	}

	claims, err := decodeClaims(parsed)
	if err != nil {
		return nil, classifyVerifyError(err)
	}

	now := time.Now().UTC()
	if !now.Before(claims.ExpiresAt) {
		return nil, autherr.New(autherr.KindTokenExpired, "token has expired")
	}
	if now.Before(claims.NotBefore) {
		return nil, autherr.New(autherr.KindInvalidToken, "token not yet valid (used before nbf time)")
	}
	return claims, nil
}

// DecodeUnsafe decrypts a token and returns whatever claims it can read,
// skipping every structural and temporal check. It returns nil on any
// decryption failure and must never feed an authentication decision; it
// exists for inspecting expired tokens during diagnostics.
func (s *TokenService) DecodeUnsafe(token string) *domain.TokenClaims {
	parsed, err := s.parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return nil
	}
	raw := parsed.Claims()
	out := &domain.TokenClaims{}
	if v, ok := raw["user_id"].(string); ok {
		out.UserID = v
	}
	if list, ok := raw["roles"].([]interface{}); ok {
		for _, r := range list {
			if role, ok := r.(string); ok {
				out.Roles = append(out.Roles, role)
			}
		}
	}
	if t, err := parseClaimTime(raw["iat"]); err == nil {
		out.IssuedAt = t
	}
	if t, err := parseClaimTime(raw["exp"]); err == nil {
		out.ExpiresAt = t
	}
	if t, err := parseClaimTime(raw["nbf"]); err == nil {
		out.NotBefore = t
	}
	return out
}

// classifyVerifyError passes kind-tagged errors through untouched and tags
// anything else as a validation fault, so Verify never surfaces an untyped
// error.
func classifyVerifyError(err error) error {
	var tagged *autherr.Error
	if errors.As(err, &tagged) {
		return err
	}
	return autherr.Wrap(autherr.KindTokenValidation, "an unexpected error occurred during token validation", err)
}

func validateMintInputs(userID string, roles []string) error {
	if strings.TrimSpace(userID) == "" {
		return autherr.New(autherr.KindTokenGeneration, "user_id must be a non-empty string")
	}
	if len(roles) == 0 {
		return autherr.New(autherr.KindTokenGeneration, "roles list cannot be empty")
	}
	for _, role := range roles {
		if strings.TrimSpace(role) == "" {
			return autherr.New(autherr.KindTokenGeneration, "all roles must be non-empty strings")
		}
	}
	return nil
}

func decodeClaims(token *paseto.Token) (*domain.TokenClaims, error) {
	raw := token.Claims()
	for _, field := range []string{"user_id", "roles", "iat", "exp", "nbf"} {
		if _, ok := raw[field]; !ok {
			return nil, autherr.New(autherr.KindInvalidToken,
				"token payload missing required field: "+field)
		}
	}

	userID, ok := raw["user_id"].(string)
	if !ok {
		return nil, autherr.New(autherr.KindInvalidToken, "token payload 'user_id' must be a string")
	}
	list, ok := raw["roles"].([]interface{})
	if !ok {
		return nil, autherr.New(autherr.KindInvalidToken, "token payload 'roles' must be a list")
	}
	if len(list) == 0 {
		return nil, autherr.New(autherr.KindInvalidToken, "token payload 'roles' cannot be empty")
	}
	roles := make([]string, 0, len(list))
	for _, r := range list {
		role, ok := r.(string)
		if !ok {
			return nil, autherr.New(autherr.KindInvalidToken, "token payload 'roles' must contain only strings")
		}
		roles = append(roles, role)
	}

	iat, err := parseClaimTime(raw["iat"])
	if err != nil {
		return nil, autherr.Wrap(autherr.KindInvalidToken, "invalid token issued-at format", err)
	}
	exp, err := parseClaimTime(raw["exp"])
	if err != nil {
		return nil, autherr.Wrap(autherr.KindInvalidToken, "invalid token expiration format", err)
	}
	nbf, err := parseClaimTime(raw["nbf"])
	if err != nil {
		return nil, autherr.Wrap(autherr.KindInvalidToken, "invalid token not-before format", err)
	}

	return &domain.TokenClaims{
		UserID:    userID,
		Roles:     roles,
		IssuedAt:  iat,
		ExpiresAt: exp,
		NotBefore: nbf,
	}, nil
}

// parseClaimTime accepts RFC3339 timestamps; a timestamp without zone
// information is taken as UTC.
func parseClaimTime(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp must be a string")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

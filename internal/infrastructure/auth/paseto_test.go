package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"

	autherr "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const (
	testKeyHex  = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	otherKeyHex = "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testKeyHex, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	return svc
}

func TestKeyFormatValidation(t *testing.T) {
	cases := map[string]string{
		"too short": "abcdef",
		"too long":  testKeyHex + "00",
		"non hex":   strings.Repeat("zz", 32),
		"empty":     "",
	}
	for name, key := range cases {
		if _, err := NewTokenService(key, time.Minute); err == nil {
			t.Errorf("%s: expected construction to fail", name)
		} else if autherr.KindOf(err) != autherr.KindTokenGeneration {
			t.Errorf("%s: kind = %v, want KindTokenGeneration", name, autherr.KindOf(err))
		}
	}
	if _, err := NewTokenService(testKeyHex, time.Minute); err != nil {
		t.Fatalf("valid key should construct: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	svc := newTestService(t)
	roles := []string{"admin", "gerente"}

	token, err := svc.Generate("u-1", roles)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !strings.HasPrefix(token, "v4.local.") {
		t.Fatalf("token missing v4.local. prefix: %s", token[:16])
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("UserID = %q, want u-1", claims.UserID)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" || claims.Roles[1] != "gerente" {
		t.Errorf("Roles = %v, want [admin gerente] in order", claims.Roles)
	}
	if !claims.NotBefore.Equal(claims.IssuedAt) {
		t.Errorf("nbf %v should equal iat %v", claims.NotBefore, claims.IssuedAt)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != 15*time.Minute {
		t.Errorf("lifetime = %v, want 15m", got)
	}
	if claims.IssuedAt.Nanosecond() != 0 {
		t.Errorf("iat should be truncated to whole seconds, got %v", claims.IssuedAt)
	}
}

func TestGenerateInputValidation(t *testing.T) {
	svc := newTestService(t)
	cases := []struct {
		name   string
		userID string
		roles  []string
	}{
		{"empty user id", "", []string{"admin"}},
		{"whitespace user id", "   ", []string{"admin"}},
		{"nil roles", "u-1", nil},
		{"empty roles", "u-1", []string{}},
		{"blank role", "u-1", []string{"admin", "  "}},
	}
	for _, tc := range cases {
		if _, err := svc.Generate(tc.userID, tc.roles); err == nil {
			t.Errorf("%s: expected Generate to fail", tc.name)
		} else if autherr.KindOf(err) != autherr.KindTokenGeneration {
			t.Errorf("%s: kind = %v, want KindTokenGeneration", tc.name, autherr.KindOf(err))
		}
	}
}

func TestUniqueness(t *testing.T) {
	svc := newTestService(t)
	first, err := svc.Generate("u-1", []string{"admin"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	second, err := svc.Generate("u-1", []string{"admin"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if first == second {
		t.Fatal("two mints with identical arguments must produce different tokens")
	}
	a, err := svc.Verify(first)
	if err != nil {
		t.Fatalf("Verify first: %v", err)
	}
	b, err := svc.Verify(second)
	if err != nil {
		t.Fatalf("Verify second: %v", err)
	}
	if a.UserID != b.UserID || len(a.Roles) != len(b.Roles) {
		t.Error("both tokens should decode to equal payloads")
	}
}

func TestExpiryBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps past token expiry")
	}
	svc := newTestService(t)
	token, err := svc.GenerateWithExpiry("u-1", []string{"admin"}, 2*time.Second)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("fresh token should verify: %v", err)
	}

	time.Sleep(3 * time.Second)

	_, err = svc.Verify(token)
	if err == nil {
		t.Fatal("expected expired token to fail verification")
	}
	if autherr.KindOf(err) != autherr.KindTokenExpired {
		t.Errorf("kind = %v, want KindTokenExpired", autherr.KindOf(err))
	}

	claims := svc.DecodeUnsafe(token)
	if claims == nil {
		t.Fatal("DecodeUnsafe should still decode an expired token")
	}
	if claims.UserID != "u-1" || len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Errorf("DecodeUnsafe payload = %+v, want original claims", claims)
	}
}

func TestTamperDetection(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Generate("u-1", []string{"admin"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	flipped := []byte(token)
	pos := len(flipped) / 2
	if flipped[pos] == 'A' {
		flipped[pos] = 'B'
	} else {
		flipped[pos] = 'A'
	}

	cases := map[string]string{
		"flipped byte": string(flipped),
		"truncated":    token[:len(token)-6],
		"appended":     token + "abcd",
		"wrong prefix": "v4.public." + strings.TrimPrefix(token, "v4.local."),
		"empty":        "",
		"garbage":      "v4.local.!!!!",
	}
	for name, tampered := range cases {
		_, err := svc.Verify(tampered)
		if err == nil {
			t.Errorf("%s: expected verification failure", name)
			continue
		}
		if autherr.KindOf(err) != autherr.KindInvalidToken {
			t.Errorf("%s: kind = %v, want KindInvalidToken", name, autherr.KindOf(err))
		}
	}
}

func TestCrossKeyRejection(t *testing.T) {
	svcA := newTestService(t)
	svcB, err := NewTokenService(otherKeyHex, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	token, err := svcA.Generate("u-1", []string{"admin"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	_, err = svcB.Verify(token)
	if err == nil {
		t.Fatal("token minted under key A must not verify under key B")
	}
	if autherr.KindOf(err) != autherr.KindInvalidToken {
		t.Errorf("kind = %v, want KindInvalidToken", autherr.KindOf(err))
	}
}

// encryptClaims builds a token directly with the library so tests can
// produce payload shapes Generate refuses to mint.
func encryptClaims(t *testing.T, claimsJSON string) string {
	t.Helper()
	key, err := paseto.V4SymmetricKeyFromHex(testKeyHex)
	if err != nil {
		t.Fatalf("key from hex: %v", err)
	}
	token, err := paseto.NewTokenFromClaimsJSON([]byte(claimsJSON), nil)
	if err != nil {
		t.Fatalf("token from claims: %v", err)
	}
	return token.V4Encrypt(key, nil)
}

func TestNotBeforeEnforced(t *testing.T) {
	svc := newTestService(t)
	now := time.Now().UTC().Truncate(time.Second)
	claims := `{"user_id":"u-1","roles":["admin"],` +
		`"iat":"` + now.Format(time.RFC3339) + `",` +
		`"exp":"` + now.Add(10*time.Minute).Format(time.RFC3339) + `",` +
		`"nbf":"` + now.Add(5*time.Minute).Format(time.RFC3339) + `"}`

	_, err := svc.Verify(encryptClaims(t, claims))
	if err == nil {
		t.Fatal("token used before nbf must fail")
	}
	if autherr.KindOf(err) != autherr.KindInvalidToken {
		t.Errorf("kind = %v, want KindInvalidToken", autherr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "not yet valid") {
		t.Errorf("message should mention premature use: %v", err)
	}
}

func TestStructuralValidation(t *testing.T) {
	svc := newTestService(t)
	now := time.Now().UTC().Truncate(time.Second)
	iat := now.Format(time.RFC3339)
	exp := now.Add(10 * time.Minute).Format(time.RFC3339)
	past := now.Add(-10 * time.Minute).Format(time.RFC3339)

	cases := []struct {
		name    string
		claims  string
		wantMsg string
	}{
		{
			"missing user_id",
			`{"roles":["admin"],"iat":"` + iat + `","exp":"` + exp + `","nbf":"` + iat + `"}`,
			"user_id",
		},
		{
			"missing exp",
			`{"user_id":"u-1","roles":["admin"],"iat":"` + iat + `","nbf":"` + iat + `"}`,
			"exp",
		},
		{
			"roles not a list",
			`{"user_id":"u-1","roles":"admin","iat":"` + iat + `","exp":"` + exp + `","nbf":"` + iat + `"}`,
			"'roles' must be a list",
		},
		{
			"empty roles",
			`{"user_id":"u-1","roles":[],"iat":"` + iat + `","exp":"` + exp + `","nbf":"` + iat + `"}`,
			"'roles' cannot be empty",
		},
		{
			"user_id not a string",
			`{"user_id":7,"roles":["admin"],"iat":"` + iat + `","exp":"` + exp + `","nbf":"` + iat + `"}`,
			"'user_id' must be a string",
		},
		{
			"malformed exp",
			`{"user_id":"u-1","roles":["admin"],"iat":"` + iat + `","exp":"not-a-time","nbf":"` + iat + `"}`,
			"expiration format",
		},
		{
			// structural validation runs before temporal: an expired token
			// missing user_id fails on the missing field
			"missing user_id wins over expiry",
			`{"roles":["admin"],"iat":"` + past + `","exp":"` + past + `","nbf":"` + past + `"}`,
			"user_id",
		},
	}
	for _, tc := range cases {
		_, err := svc.Verify(encryptClaims(t, tc.claims))
		if err == nil {
			t.Errorf("%s: expected failure", tc.name)
			continue
		}
		if autherr.KindOf(err) != autherr.KindInvalidToken {
			t.Errorf("%s: kind = %v, want KindInvalidToken", tc.name, autherr.KindOf(err))
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Errorf("%s: message %q should contain %q", tc.name, err.Error(), tc.wantMsg)
		}
	}
}

func TestZonelessTimestampsAssumeUTC(t *testing.T) {
	svc := newTestService(t)
	now := time.Now().UTC().Truncate(time.Second)
	const layout = "2006-01-02T15:04:05"
	claims := `{"user_id":"u-1","roles":["admin"],` +
		`"iat":"` + now.Format(layout) + `",` +
		`"exp":"` + now.Add(10*time.Minute).Format(layout) + `",` +
		`"nbf":"` + now.Format(layout) + `"}`

	parsed, err := svc.Verify(encryptClaims(t, claims))
	if err != nil {
		t.Fatalf("zoneless UTC timestamps should verify: %v", err)
	}
	if parsed.ExpiresAt.Location() != time.UTC {
		t.Errorf("zoneless timestamp should be read as UTC, got %v", parsed.ExpiresAt.Location())
	}
}

func TestDecodeUnsafeOnGarbage(t *testing.T) {
	svc := newTestService(t)
	if svc.DecodeUnsafe("not-a-token") != nil {
		t.Error("DecodeUnsafe should return nil for undecryptable input")
	}
	if svc.DecodeUnsafe("") != nil {
		t.Error("DecodeUnsafe should return nil for empty input")
	}
}

func TestVerifyErrorClassification(t *testing.T) {
	plain := errors.New("boom")
	got := classifyVerifyError(plain)
	if autherr.KindOf(got) != autherr.KindTokenValidation {
		t.Errorf("untyped error: kind = %v, want KindTokenValidation", autherr.KindOf(got))
	}
	if !errors.Is(got, plain) {
		t.Error("classified error must keep the original cause in its chain")
	}

	tagged := autherr.New(autherr.KindInvalidToken, "token payload missing required field: roles")
	if classifyVerifyError(tagged) != error(tagged) {
		t.Error("kind-tagged errors must pass through unchanged")
	}
}

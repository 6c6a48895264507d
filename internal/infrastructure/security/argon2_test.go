package security

import (
	"strings"
	"testing"

	autherr "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

// low-cost parameters keep the suite fast; ranges still satisfy the
// service's own validation
func testParams() Params {
	return Params{
		TimeCost:    1,
		MemoryCost:  8192,
		Parallelism: 1,
		HashLength:  32,
		SaltLength:  16,
	}
}

func testPolicy() Policy {
	return Policy{MinLength: 8, MaxLength: 128}
}

func newTestService(t *testing.T) *PasswordService {
	t.Helper()
	svc, err := NewPasswordService(testParams(), testPolicy())
	if err != nil {
		t.Fatalf("NewPasswordService error: %v", err)
	}
	return svc
}

func TestNewPasswordServiceValidation(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		policy Policy
	}{
		{"time cost too high", Params{TimeCost: 11, MemoryCost: 8192, Parallelism: 1, HashLength: 32, SaltLength: 16}, testPolicy()},
		{"memory too low", Params{TimeCost: 1, MemoryCost: 4096, Parallelism: 1, HashLength: 32, SaltLength: 16}, testPolicy()},
		{"parallelism too high", Params{TimeCost: 1, MemoryCost: 8192, Parallelism: 17, HashLength: 32, SaltLength: 16}, testPolicy()},
		{"min length too small", testParams(), Policy{MinLength: 4, MaxLength: 128}},
		{"max below min", testParams(), Policy{MinLength: 16, MaxLength: 8}},
	}
	for _, tc := range cases {
		if _, err := NewPasswordService(tc.params, tc.policy); err == nil {
			t.Errorf("%s: expected construction to fail", tc.name)
		} else if autherr.KindOf(err) != autherr.KindHashing {
			t.Errorf("%s: kind = %v, want KindHashing", tc.name, autherr.KindOf(err))
		}
	}
}

func TestHashPasswordSalting(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.HashPassword("Sample123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	second, err := svc.HashPassword("Sample123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ (fresh salt per call)")
	}
	if !strings.HasPrefix(first, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", first)
	}

	for _, hash := range []string{first, second} {
		ok, err := svc.CheckPassword(hash, "Sample123!")
		if err != nil {
			t.Fatalf("CheckPassword error: %v", err)
		}
		if !ok {
			t.Error("expected password verification to succeed")
		}
	}
}

func TestPasswordPolicyBoundaries(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.HashPassword(strings.Repeat("a", 7)); autherr.KindOf(err) != autherr.KindInvalidPassword {
		t.Errorf("MIN-1: expected KindInvalidPassword, got %v", err)
	}
	if _, err := svc.HashPassword(strings.Repeat("a", 129)); autherr.KindOf(err) != autherr.KindInvalidPassword {
		t.Errorf("MAX+1: expected KindInvalidPassword, got %v", err)
	}
	if _, err := svc.HashPassword(strings.Repeat("a", 8)); err != nil {
		t.Errorf("exactly MIN should hash: %v", err)
	}
	if _, err := svc.HashPassword(strings.Repeat("a", 128)); err != nil {
		t.Errorf("exactly MAX should hash: %v", err)
	}
	if _, err := svc.HashPassword(strings.Repeat(" ", 12)); autherr.KindOf(err) != autherr.KindInvalidPassword {
		t.Error("whitespace-only password must be rejected")
	}

	// lengths count characters, not bytes: 7 two-byte runes stay below the
	// minimum even though the string is 14 bytes
	if _, err := svc.HashPassword(strings.Repeat("ñ", 7)); autherr.KindOf(err) != autherr.KindInvalidPassword {
		t.Errorf("7 multibyte characters: expected KindInvalidPassword, got %v", err)
	}
	if _, err := svc.HashPassword(strings.Repeat("ñ", 128)); err != nil {
		t.Errorf("128 multibyte characters should hash: %v", err)
	}
}

func TestCheckPasswordCorrectness(t *testing.T) {
	svc := newTestService(t)
	hash, err := svc.HashPassword("Correct123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"exact match", "Correct123!", true},
		{"case differs", "correct123!", false},
		{"trailing space", "Correct123! ", false},
		{"empty guess", "", false},
	}
	for _, tc := range cases {
		ok, err := svc.CheckPassword(hash, tc.password)
		if err != nil {
			t.Fatalf("%s: CheckPassword error: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Errorf("%s: CheckPassword = %v, want %v", tc.name, ok, tc.want)
		}
	}
}

func TestCheckPasswordCorruptHash(t *testing.T) {
	svc := newTestService(t)
	cases := map[string]string{
		"empty":             "",
		"whitespace":        "   ",
		"not a hash":        "garbage",
		"wrong algorithm":   "$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$Zm9v",
		"wrong version":     "$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$Zm9v",
		"bad base64 digest": "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$!!!",
		"missing segments":  "$argon2id$v=19$m=8192,t=1,p=1",
	}
	for name, hash := range cases {
		_, err := svc.CheckPassword(hash, "Sample123!")
		if err == nil {
			t.Errorf("%s: expected a verification error", name)
			continue
		}
		if autherr.KindOf(err) != autherr.KindVerification {
			t.Errorf("%s: kind = %v, want KindVerification", name, autherr.KindOf(err))
		}
	}
}

func TestCheckNeedsRehash(t *testing.T) {
	svc := newTestService(t)
	hash, err := svc.HashPassword("Sample123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if svc.CheckNeedsRehash(hash) {
		t.Error("hash produced under current parameters should not need a rehash")
	}

	stronger := testParams()
	stronger.TimeCost = 2
	upgraded, err := NewPasswordService(stronger, testPolicy())
	if err != nil {
		t.Fatalf("NewPasswordService error: %v", err)
	}
	if !upgraded.CheckNeedsRehash(hash) {
		t.Error("hash produced under weaker parameters should need a rehash")
	}

	// never raises: unreadable hashes simply need no rehash
	if svc.CheckNeedsRehash("garbage") {
		t.Error("unreadable hash should report no rehash needed")
	}
	if svc.CheckNeedsRehash("") {
		t.Error("empty hash should report no rehash needed")
	}
}

func TestVerifyAndUpdate(t *testing.T) {
	old := newTestService(t)
	oldHash, err := old.HashPassword("Sample123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	stronger := testParams()
	stronger.TimeCost = 2
	upgraded, err := NewPasswordService(stronger, testPolicy())
	if err != nil {
		t.Fatalf("NewPasswordService error: %v", err)
	}

	valid, newHash, err := upgraded.VerifyAndUpdate(oldHash, "Sample123!")
	if err != nil {
		t.Fatalf("VerifyAndUpdate error: %v", err)
	}
	if !valid {
		t.Fatal("correct password should verify")
	}
	if newHash == "" || newHash == oldHash {
		t.Fatal("expected a fresh hash under the upgraded parameters")
	}
	ok, err := upgraded.CheckPassword(newHash, "Sample123!")
	if err != nil || !ok {
		t.Fatalf("new hash should verify the same plaintext: ok=%v err=%v", ok, err)
	}
	if upgraded.CheckNeedsRehash(newHash) {
		t.Error("fresh hash should not need another rehash")
	}

	valid, newHash, err = upgraded.VerifyAndUpdate(oldHash, "WrongGuess1!")
	if err != nil {
		t.Fatalf("VerifyAndUpdate error: %v", err)
	}
	if valid || newHash != "" {
		t.Error("wrong password must not verify or produce a new hash")
	}

	// parameters already current: valid login, no rehash
	valid, newHash, err = upgraded.VerifyAndUpdate(mustHash(t, upgraded, "Sample123!"), "Sample123!")
	if err != nil || !valid || newHash != "" {
		t.Errorf("up-to-date hash: valid=%v newHash=%q err=%v", valid, newHash, err)
	}
}

func mustHash(t *testing.T, svc *PasswordService, password string) string {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return hash
}

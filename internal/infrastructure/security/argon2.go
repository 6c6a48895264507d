package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"

	autherr "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const algorithmID = "argon2id"

// Params are the Argon2id cost parameters. MemoryCost is in KiB.
type Params struct {
	TimeCost    uint32
	MemoryCost  uint32
	Parallelism uint8
	HashLength  uint32
	SaltLength  uint32
}

// Policy bounds accepted plaintext password lengths.
type Policy struct {
	MinLength int
	MaxLength int
}

// PasswordService hashes passwords with Argon2id and verifies plaintext
// guesses against stored PHC-encoded hashes. Construct once per process
// and share; it holds no per-call state.
type PasswordService struct {
	params Params
	policy Policy
}

// NewPasswordService validates the cost parameters and policy up front so
// a misconfigured service never reaches a request.
func NewPasswordService(params Params, policy Policy) (*PasswordService, error) {
	if params.TimeCost < 1 || params.TimeCost > 10 {
		return nil, autherr.New(autherr.KindHashing, "time cost must be between 1 and 10")
	}
	if params.MemoryCost < 8192 || params.MemoryCost > 2097152 {
		return nil, autherr.New(autherr.KindHashing, "memory cost must be between 8192 and 2097152 KiB")
	}
	if params.Parallelism < 1 || params.Parallelism > 16 {
		return nil, autherr.New(autherr.KindHashing, "parallelism must be between 1 and 16")
	}
	if params.HashLength < 16 || params.SaltLength < 8 {
		return nil, autherr.New(autherr.KindHashing, "hash length must be >= 16 and salt length >= 8")
	}
	if policy.MinLength < 8 {
		return nil, autherr.New(autherr.KindHashing, "minimum password length must be at least 8")
	}
	if policy.MaxLength < policy.MinLength {
		return nil, autherr.New(autherr.KindHashing, "maximum password length must not be below the minimum")
	}
	return &PasswordService{params: params, policy: policy}, nil
}

// ValidatePassword applies the length and emptiness policy. Lengths are
// counted in characters, not bytes, so multibyte passwords are measured the
// way users count them. It guards hashing only; verification accepts any
// plaintext so logins keep working after a policy change.
func (s *PasswordService) ValidatePassword(password string) error {
	length := utf8.RuneCountInString(password)
	if length < s.policy.MinLength {
		return autherr.New(autherr.KindInvalidPassword,
			fmt.Sprintf("password must be at least %d characters long", s.policy.MinLength))
	}
	if length > s.policy.MaxLength {
		return autherr.New(autherr.KindInvalidPassword,
			fmt.Sprintf("password must not exceed %d characters", s.policy.MaxLength))
	}
	if strings.TrimSpace(password) == "" {
		return autherr.New(autherr.KindInvalidPassword, "password cannot be empty or whitespace only")
	}
	return nil
}

// HashPassword hashes a plaintext password with a fresh random salt and
// returns the self-describing PHC string. The cost parameters travel with
// the hash, so verification never needs the original configuration.
func (s *PasswordService) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	salt := make([]byte, s.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", autherr.Wrap(autherr.KindHashing, "failed to generate salt", err)
	}

	digest := argon2.IDKey(
		[]byte(password),
		salt,
		s.params.TimeCost,
		s.params.MemoryCost,
		s.params.Parallelism,
		s.params.HashLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Digest := base64.RawStdEncoding.EncodeToString(digest)
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version, s.params.MemoryCost, s.params.TimeCost,
		s.params.Parallelism, b64Salt, b64Digest), nil
}

// CheckPassword verifies a plaintext guess against a stored hash. A wrong
// password is a false return, not an error; an error means the stored hash
// is corrupt or unreadable, which is a data-integrity problem.
func (s *PasswordService) CheckPassword(encodedHash, password string) (bool, error) {
	if strings.TrimSpace(encodedHash) == "" {
		return false, autherr.New(autherr.KindVerification, "stored hash is empty")
	}
	parsed, err := parseEncodedHash(encodedHash)
	if err != nil {
		return false, autherr.Wrap(autherr.KindVerification, "stored password hash is invalid or corrupted", err)
	}

	computed := argon2.IDKey(
		[]byte(password),
		parsed.salt,
		parsed.timeCost,
		parsed.memoryCost,
		parsed.parallelism,
		uint32(len(parsed.digest)),
	)
	return subtle.ConstantTimeCompare(computed, parsed.digest) == 1, nil
}

// CheckNeedsRehash reports whether the hash's embedded parameters differ
// from the currently configured ones. It never fails: a hash it cannot
// read is treated as not needing a rehash rather than blocking login.
func (s *PasswordService) CheckNeedsRehash(encodedHash string) bool {
	parsed, err := parseEncodedHash(encodedHash)
	if err != nil {
		return false
	}
	return parsed.timeCost != s.params.TimeCost ||
		parsed.memoryCost != s.params.MemoryCost ||
		parsed.parallelism != s.params.Parallelism ||
		uint32(len(parsed.digest)) != s.params.HashLength ||
		uint32(len(parsed.salt)) != s.params.SaltLength
}

// VerifyAndUpdate verifies the password and, when it is correct and the
// stored hash was produced under stale parameters, returns a fresh hash
// for the caller to persist. A failed opportunistic rehash never turns a
// successful login into a failure.
func (s *PasswordService) VerifyAndUpdate(encodedHash, password string) (bool, string, error) {
	valid, err := s.CheckPassword(encodedHash, password)
	if err != nil || !valid {
		return valid, "", err
	}
	if !s.CheckNeedsRehash(encodedHash) {
		return true, "", nil
	}
	newHash, err := s.HashPassword(password)
	if err != nil {
		return true, "", nil
	}
	return true, newHash, nil
}

type parsedHash struct {
	timeCost    uint32
	memoryCost  uint32
	parallelism uint8
	salt        []byte
	digest      []byte
}

func parseEncodedHash(encoded string) (*parsedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if n, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || n != 1 {
		return nil, fmt.Errorf("invalid version segment")
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	p := &parsedHash{}
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memoryCost, &p.timeCost, &p.parallelism); err != nil || n != 3 {
		return nil, fmt.Errorf("invalid parameter segment")
	}

	var err error
	p.salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	p.digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("invalid digest encoding: %w", err)
	}
	if len(p.digest) == 0 {
		return nil, fmt.Errorf("empty digest")
	}
	return p, nil
}

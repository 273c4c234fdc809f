package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/survey-share/internal/domain"
)

const (
	DigestBcrypt   = "bcrypt"
	DigestArgon2id = "argon2id"

	// DefaultBcryptCost matches the cost share links have always been hashed with.
	DefaultBcryptCost = 10
)

// DigestHasher computes and verifies salted one-way digests of share secrets.
type DigestHasher interface {
	Hash(secret string) (string, error)
	// Verify reports whether secret produced digest. An unparseable digest
	// yields domain.ErrMalformedDigest.
	Verify(secret, digest string) (bool, error)
}

// NewDigestHasher selects a hasher by algorithm name.
func NewDigestHasher(algorithm string, bcryptCost int) (DigestHasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", DigestBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	case DigestArgon2id:
		return NewArgon2Hasher(DefaultArgon2Params()), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}

// BcryptHasher hashes secrets with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher, falling back to DefaultBcryptCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a bcrypt digest of secret.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares secret against a bcrypt digest.
func (h *BcryptHasher) Verify(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrMalformedDigest, err)
	}
}

// Argon2Params tunes the argon2id hasher.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params keeps a single verification cheap enough for
// scan-and-verify over a batch of outstanding tokens.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      19 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2Hasher hashes secrets with argon2id and encodes them as PHC strings.
type Argon2Hasher struct {
	params Argon2Params
}

// NewArgon2Hasher builds an argon2id hasher.
func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

// Hash returns a $argon2id$v=19$m=..,t=..,p=..$salt$hash digest.
func (h *Argon2Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRandomSourceUnavailable, err)
	}
	key := argon2.IDKey([]byte(secret), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		DigestArgon2id,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the argon2id key with the digest's own parameters.
func (h *Argon2Hasher) Verify(secret, digest string) (bool, error) {
	parsed, err := parseArgon2Digest(digest)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrMalformedDigest, err)
	}
	key := argon2.IDKey([]byte(secret), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))
	return subtle.ConstantTimeCompare(key, parsed.key) == 1, nil
}

type argon2Digest struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parseArgon2Digest(digest string) (*argon2Digest, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != DigestArgon2id {
		return nil, errors.New("not an argon2id digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var out argon2Digest
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &out.memory, &out.time, &out.parallelism); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return nil, errors.New("zero argon2 parameter")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	if len(salt) == 0 || len(key) == 0 {
		return nil, errors.New("empty salt or key")
	}
	out.salt = salt
	out.key = key
	return &out, nil
}

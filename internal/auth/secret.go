package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/spec-kit/survey-share/internal/domain"
)

// SecretBytes is the raw entropy drawn for every share secret (256 bits).
const SecretBytes = 32

// SecretGenerator produces opaque share secrets.
type SecretGenerator interface {
	Generate() (string, error)
}

// RandomSecretGenerator draws secrets from a cryptographically secure source.
type RandomSecretGenerator struct {
	source io.Reader
}

// NewSecretGenerator returns a generator backed by crypto/rand.
func NewSecretGenerator() *RandomSecretGenerator {
	return &RandomSecretGenerator{source: rand.Reader}
}

// Generate returns a URL-safe, unpadded base64 secret.
func (g *RandomSecretGenerator) Generate() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRandomSourceUnavailable, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

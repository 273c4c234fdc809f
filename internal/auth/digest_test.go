package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/survey-share/internal/domain"
)

func testHashers() map[string]DigestHasher {
	return map[string]DigestHasher{
		DigestBcrypt: NewBcryptHasher(bcrypt.MinCost),
		DigestArgon2id: NewArgon2Hasher(Argon2Params{
			Memory:      1024,
			Time:        1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		}),
	}
}

func TestDigestHasher_VerifiesOnlyTheOriginalSecret(t *testing.T) {
	gen := NewSecretGenerator()
	for name, hasher := range testHashers() {
		t.Run(name, func(t *testing.T) {
			secret, err := gen.Generate()
			require.NoError(t, err)
			other, err := gen.Generate()
			require.NoError(t, err)

			digest, err := hasher.Hash(secret)
			require.NoError(t, err)
			require.NotEqual(t, secret, digest)
			require.NotContains(t, digest, secret)

			ok, err := hasher.Verify(secret, digest)
			require.NoError(t, err)
			require.True(t, ok)

			otherDigest, err := hasher.Hash(other)
			require.NoError(t, err)
			ok, err = hasher.Verify(secret, otherDigest)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestDigestHasher_IsSalted(t *testing.T) {
	for name, hasher := range testHashers() {
		t.Run(name, func(t *testing.T) {
			first, err := hasher.Hash("same-secret")
			require.NoError(t, err)
			second, err := hasher.Hash("same-secret")
			require.NoError(t, err)
			require.NotEqual(t, first, second)
		})
	}
}

func TestDigestHasher_SingleCharacterMutationFails(t *testing.T) {
	secret, err := NewSecretGenerator().Generate()
	require.NoError(t, err)

	mutated := []byte(secret)
	if mutated[0] == 'A' {
		mutated[0] = 'B'
	} else {
		mutated[0] = 'A'
	}

	for name, hasher := range testHashers() {
		t.Run(name, func(t *testing.T) {
			digest, err := hasher.Hash(secret)
			require.NoError(t, err)
			ok, err := hasher.Verify(string(mutated), digest)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestDigestHasher_MalformedDigest(t *testing.T) {
	cases := []string{
		"",
		"plaintext-not-a-digest",
		"$2a$04$short",
		"$argon2id$v=19$m=1024,t=1,p=1$!!notbase64$abc",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5",
	}
	for name, hasher := range testHashers() {
		for _, digest := range cases {
			t.Run(name+"/"+digest, func(t *testing.T) {
				ok, err := hasher.Verify("secret", digest)
				require.False(t, ok)
				require.ErrorIs(t, err, domain.ErrMalformedDigest)
			})
		}
	}
}

func TestNewDigestHasher(t *testing.T) {
	h, err := NewDigestHasher("", 0)
	require.NoError(t, err)
	require.IsType(t, &BcryptHasher{}, h)
	require.Equal(t, DefaultBcryptCost, h.(*BcryptHasher).cost)

	h, err = NewDigestHasher("BCRYPT", 5)
	require.NoError(t, err)
	require.Equal(t, 5, h.(*BcryptHasher).cost)

	h, err = NewDigestHasher("argon2id", 0)
	require.NoError(t, err)
	require.IsType(t, &Argon2Hasher{}, h)

	digest, err := h.Hash("secret-value")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=19456,t=2,p=1$"))

	_, err = NewDigestHasher("md5", 0)
	require.Error(t, err)
}

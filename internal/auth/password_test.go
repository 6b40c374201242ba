package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapParams keeps the tests fast; production hashes use DefaultParams.
var cheapParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHashPassword_PHCFormat(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3nha-forte")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=65536,t=3,p=4", parts[3])
	assert.False(t, NeedsRehash(hash))
}

func TestHashPasswordWith_SaltedAndVerifiable(t *testing.T) {
	t.Parallel()

	h1, err := HashPasswordWith("mesma-senha", cheapParams)
	require.NoError(t, err)
	h2, err := HashPasswordWith("mesma-senha", cheapParams)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	for _, h := range []string{h1, h2} {
		ok, err := VerifyPassword("mesma-senha", h)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = VerifyPassword("outra-senha", h)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"not phc", "plaintext", ErrInvalidHash},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuv", ErrInvalidHash},
		{"other algorithm", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5", ErrInvalidHash},
		{"empty key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$", ErrInvalidHash},
		{"old version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword("password", tt.hash)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, ok)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	weak, err := HashPasswordWith("senha", cheapParams)
	require.NoError(t, err)

	assert.True(t, NeedsRehash(weak))
	assert.True(t, NeedsRehash("garbage"))
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("Maria@Example.com")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint("maria@example.com"))
	assert.NotEqual(t, a, Fingerprint("joao@example.com"))
	assert.NotContains(t, a, "maria")
}

func TestBurnVerify_DoesNotPanic(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		BurnVerify("qualquer")
		BurnVerify("")
	})
}

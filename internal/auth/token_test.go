package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(testSecret, 24*time.Hour)
	require.NoError(t, err)
	return iss
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer(nil, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	tok, err := iss.Issue("01HQZ0USER", now)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, "."))

	userID, err := iss.Verify(tok, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "01HQZ0USER", userID)
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	tok, err := iss.IssueWithTTL("u1", now, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"at issue", now, false},
		{"one second before expiry", now.Add(time.Hour - time.Second), false},
		{"at expiry", now.Add(time.Hour), true},
		{"after expiry", now.Add(2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tok, tt.at)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenIssuer_ZeroTTLIsImmediatelyInvalid(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	tok, err := iss.IssueWithTTL("u1", now, 0)
	require.NoError(t, err)

	_, err = iss.Verify(tok, now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_EmptySubject(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	_, err := iss.Issue("", time.Now())
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestTokenIssuer_RejectsOtherSecret(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	other, err := NewTokenIssuer([]byte("another-secret-another-secret-xx"), time.Hour)
	require.NoError(t, err)

	tok, err := other.Issue("u1", now)
	require.NoError(t, err)

	_, err = newTestIssuer(t).Verify(tok, now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_MalformedTokens(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 0)

	valid, err := iss.Issue("u1", now)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tamperedSig := parts[0] + "." + parts[1] + "." + string(sig)

	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","exp":9999999999}`))
	swappedPayload := parts[0] + "." + forgedPayload + "." + parts[2]

	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	unsigned := noneHeader + "." + parts[1] + "."

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", parts[0] + "." + parts[1]},
		{"tampered signature", tamperedSig},
		{"swapped payload", swappedPayload},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token, now)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenIssuer_FractionalNowIsWholeSeconds(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	now := time.Unix(1_700_000_000, 900*int64(time.Millisecond))

	tok, err := iss.IssueWithTTL("u1", now, time.Hour)
	require.NoError(t, err)

	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(tok, ".")[1])
	require.NoError(t, err)
	var claims struct {
		IssuedAt int64 `json:"iat"`
		Expiry   int64 `json:"exp"`
	}
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, int64(1_700_000_000), claims.IssuedAt)
	assert.Equal(t, claims.IssuedAt+3600, claims.Expiry)

	base := time.Unix(1_700_000_000, 0)
	_, err = iss.Verify(tok, base.Add(time.Hour-time.Nanosecond))
	assert.NoError(t, err)
	_, err = iss.Verify(tok, base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

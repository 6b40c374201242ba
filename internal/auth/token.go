package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

var (
	// ErrInvalidToken is the only error Verify returns. Malformed, forged,
	// expired and subject-less tokens are indistinguishable to callers.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrEmptySubject is returned when issuing a token without a user ID.
	ErrEmptySubject = errors.New("token subject must not be empty")
	// ErrEmptySecret is returned when constructing an issuer without a key.
	ErrEmptySecret = errors.New("token secret must not be empty")
)

// TokenIssuer signs and verifies HS256 bearer tokens. It is immutable
// after construction and safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	signer jose.Signer
}

// NewTokenIssuer creates an issuer with the given HMAC secret and default lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	return &TokenIssuer{secret: key, ttl: ttl, signer: signer}, nil
}

// TTL returns the default token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue creates a token for userID that expires after the default lifetime.
func (i *TokenIssuer) Issue(userID string, now time.Time) (string, error) {
	return i.IssueWithTTL(userID, now, i.ttl)
}

// IssueWithTTL creates a token for userID expiring at now+ttl. Claims
// carry whole seconds, so now is truncated to the second first and exp is
// exactly iat+ttl.
func (i *TokenIssuer) IssueWithTTL(userID string, now time.Time, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrEmptySubject
	}
	now = now.Truncate(time.Second)

	claims := jwt.Claims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}

	raw, err := jwt.Signed(i.signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return raw, nil
}

// Verify checks the token's signature and expiry against now and returns
// the user ID it was issued for. A token is valid only while exp > now.
func (i *TokenIssuer) Verify(raw string, now time.Time) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}

	tok, err := jwt.ParseSigned(raw)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(tok.Headers) != 1 || tok.Headers[0].Algorithm != string(jose.HS256) {
		return "", ErrInvalidToken
	}

	var claims jwt.Claims
	if err := tok.Claims(i.secret, &claims); err != nil {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" || claims.Expiry == nil {
		return "", ErrInvalidToken
	}
	if !claims.Expiry.Time().After(now) {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

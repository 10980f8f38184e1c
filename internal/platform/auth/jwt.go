package auth

import (
	"errors"
	"time"
)

// TokenService signs and verifies opaque subjects, here session ids, so a
// cookie value cannot be forged without the companion secret.
type TokenService interface {
	Sign(subject string) (string, error)
	Verify(token string) (string, error)
}

func NewHS256Service(secret, issuer string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if issuer == "" {
		return nil, errors.New("token issuer is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be > 0")
	}
	return &hs256Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type hs256Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func (h *hs256Service) Sign(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    h.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.secret)
}

func (h *hs256Service) Verify(tokenString string) (string, error) {
	var parsed jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return "", err
	}
	if parsed.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return parsed.Subject, nil
}

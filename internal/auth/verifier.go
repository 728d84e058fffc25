package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

// Principal identifies the caller behind a verified credential.
type Principal struct {
	Subject string
}

// Verifier checks a bearer credential and resolves its principal.
type Verifier interface {
	Verify(token string) (*Principal, error)
}

// JWTVerifier validates HS256-signed tokens against a shared secret.
type JWTVerifier struct {
	secret []byte
	leeway time.Duration
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		leeway: 30 * time.Second,
	}
}

func (v *JWTVerifier) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(v.leeway), jwt.WithIssuedAt())
	if err != nil {
		return nil, pkgerrors.ErrUnauthorized.WithMessage("invalid token").WithCause(err)
	}
	if !token.Valid {
		return nil, pkgerrors.ErrUnauthorized.WithMessage("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, pkgerrors.ErrUnauthorized.WithMessage("invalid claims")
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, pkgerrors.ErrUnauthorized.WithMessage("token has no subject")
	}

	return &Principal{Subject: subject}, nil
}

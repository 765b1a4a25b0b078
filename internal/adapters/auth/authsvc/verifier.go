package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pillminder/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.AuthVerifier contra el servicio de auth central.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		// El middleware decide si corta o no; acá solo normalizamos.
		return auth.Claims{}, fmt.Errorf("auth verify failed: %w", err)
	}
	return claims, nil
}

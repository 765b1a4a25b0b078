package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pillminder/internal/platform/httpclient"
	"pillminder/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth service client not configured")
	ErrUnauthorized  = errors.New("auth service unauthorized")
	ErrUpstream      = errors.New("auth service upstream error")
)

// Config del cliente del servicio de auth central.
// BaseURL y APIKey normalmente vienen de env vars (config.Load).
type Config struct {
	BaseURL string
	APIKey  string

	// Header donde viaja la API key. Vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	hc := httpclient.New(cfg.Timeout)
	hc.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifyToken consulta el servicio de auth y devuelve user id + rol.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out struct {
		UserID string `json:"user_id"`
		Role   int    `json:"role"`
		Email  string `json:"email"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, "/v1/tokens/verify",
		map[string]string{
			c.apiKeyHeader:  c.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			if he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, he.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("auth service response missing user_id")
	}

	claims := auth.Claims{
		UserID: out.UserID,
		Role:   auth.Role(out.Role),
		Email:  strings.TrimSpace(out.Email),
	}
	if !claims.Role.Valid() {
		return auth.Claims{}, fmt.Errorf("auth service response has unknown role %d", out.Role)
	}
	return claims, nil
}

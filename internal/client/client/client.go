// Package client is a thin HTTP client for the gophauth API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// statusTokenExpired mirrors the server's non-standard expiry status.
const statusTokenExpired = 498

type AuthClient struct {
	baseURL string
	http    *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// User is the public view of an account.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *AuthClient) Register(ctx context.Context, name, email string, password []byte) (string, error) {
	body := map[string]string{"name": name, "email": email, "password": string(password)}
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *AuthClient) Login(ctx context.Context, email string, password []byte) (string, error) {
	body := map[string]string{"email": email, "password": string(password)}
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ValidateToken returns nil when the server accepts the token.
func (c *AuthClient) ValidateToken(ctx context.Context, token string) error {
	var out messageResponse
	return c.do(ctx, http.MethodPost, "/api/auth/validateToken", "", map[string]string{"token": token}, &out)
}

func (c *AuthClient) Refresh(ctx context.Context, token string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": token}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GetUser fetches a user through the bearer-protected endpoint.
func (c *AuthClient) GetUser(ctx context.Context, token, id string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/users/secure/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == statusTokenExpired {
		return ErrTokenExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m messageResponse
		_ = json.NewDecoder(resp.Body).Decode(&m)
		return &APIError{Status: resp.StatusCode, Message: m.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

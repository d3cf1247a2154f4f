// Package identity talks to the external identity provider that owns
// credentials. Only the REST surface the portal needs is wrapped.
package identity

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

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrTokenExpired       = errors.New("identity token expired")
)

// Account is the provider-side view of an authenticated user.
type Account struct {
	UID     string
	Email   string
	IDToken string
}

// Client wraps the provider REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient constructs the wrapper.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates a new account at the provider.
func (c *Client) SignUp(ctx context.Context, email, password string) (Account, error) {
	var resp accountResponse
	if err := c.call(ctx, "accounts:signUp", credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return Account{}, err
	}
	return Account{UID: resp.LocalID, Email: resp.Email, IDToken: resp.IDToken}, nil
}

// SignIn verifies an e-mail/password pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (Account, error) {
	var resp accountResponse
	if err := c.call(ctx, "accounts:signInWithPassword", credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return Account{}, err
	}
	return Account{UID: resp.LocalID, Email: resp.Email, IDToken: resp.IDToken}, nil
}

// UpdateAccount changes the e-mail and/or password of the account owning
// idToken. Empty values are left untouched.
func (c *Client) UpdateAccount(ctx context.Context, idToken, email, password string) error {
	body := map[string]any{"idToken": idToken, "returnSecureToken": false}
	if email != "" {
		body["email"] = email
	}
	if password != "" {
		body["password"] = password
	}
	return c.call(ctx, "accounts:update", body, nil)
}

func (c *Client) call(ctx context.Context, method string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}

	endpoint := c.baseURL + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		c.logger.Warnw("identity provider rejected call", "method", method, "status", resp.StatusCode, "reason", e.Error.Message)
		return mapProviderError(resp.StatusCode, e.Error.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	return nil
}

func mapProviderError(status int, message string) error {
	// messages look like "WEAK_PASSWORD : Password should be at least 6 characters"
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "INVALID_ID_TOKEN", "TOKEN_EXPIRED", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return ErrTokenExpired
	}
	return fmt.Errorf("identity provider status %d: %s", status, message)
}

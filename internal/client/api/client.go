// Package api implements the REST client for the labbook server. Transport
// failures and 5xx responses surface as common.ErrTransient so callers can
// keep local state and retry; 401 responses map to the credential/token
// sentinels and mean the local session is no longer valid.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrijs2005/labbook/internal/common"
)

// User is the wire shape of a user record as returned by the server.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	IsVerified  bool      `json:"isVerified"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Session is an issued token pair plus the user it belongs to.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// Client is the API surface the session store and CLI depend on.
type Client interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Register(ctx context.Context, username, email, password, displayName string) (*Session, error)
	Me(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Health(ctx context.Context) error
}

type RestClient struct {
	http *resty.Client
}

func NewRestClient(baseURL string, timeout time.Duration) *RestClient {
	return &RestClient{http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout)}
}

// apiError converts an HTTP response into a domain sentinel. unauthorized is
// the sentinel to use for 401 responses: ErrInvalidCredentials on login,
// ErrInvalidToken everywhere a bearer token was presented.
func apiError(resp *resty.Response, unauthorized error) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return unauthorized
	case resp.StatusCode() == http.StatusBadRequest:
		return common.ErrValidation
	case resp.StatusCode() == http.StatusConflict:
		return common.ErrDuplicateUser
	case resp.StatusCode() == http.StatusNotFound:
		return common.ErrNotFound
	default:
		return fmt.Errorf("%w: server returned %d", common.ErrTransient, resp.StatusCode())
	}
}

func (c *RestClient) Login(ctx context.Context, username, password string) (*Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&session).
		Post("/api/auth/login")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	if resp.IsError() {
		return nil, apiError(resp, common.ErrInvalidCredentials)
	}
	return &session, nil
}

func (c *RestClient) Register(ctx context.Context, username, email, password, displayName string) (*Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"username":    username,
			"email":       email,
			"password":    password,
			"displayName": displayName,
		}).
		SetResult(&session).
		Post("/api/auth/register")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	if resp.IsError() {
		return nil, apiError(resp, common.ErrInvalidCredentials)
	}
	return &session, nil
}

func (c *RestClient) Me(ctx context.Context, token string) (*User, error) {
	var user User
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/api/auth/me")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	if resp.IsError() {
		return nil, apiError(resp, common.ErrInvalidToken)
	}
	return &user, nil
}

// Logout is best-effort: the server responds 200 regardless, so only
// transport failures can surface here.
func (c *RestClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"refreshToken": refreshToken}).
		Post("/api/auth/logout")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	if resp.IsError() {
		return apiError(resp, common.ErrInvalidToken)
	}
	return nil
}

func (c *RestClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"refreshToken": refreshToken}).
		SetResult(&session).
		Post("/api/auth/refresh")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	if resp.IsError() {
		return nil, apiError(resp, common.ErrInvalidToken)
	}
	return &session, nil
}

func (c *RestClient) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: server returned %d", common.ErrTransient, resp.StatusCode())
	}
	return nil
}

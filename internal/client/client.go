// Package client talks to the booking API.  A *Client is both the event
// store and the authenticator of a calendar.Sync, so the calendar logic runs
// unchanged against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// Session is what a successful login yields.  It is safe to persist.
type Session struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	AccessToken    string    `json:"access_token"`
	AccessExpires  time.Time `json:"access_expires"`
	RefreshToken   string    `json:"refresh_token"`
	RefreshExpires time.Time `json:"refresh_expires"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

var (
	ErrNotSignedIn     = errors.New("client: not signed in")
	ErrSessionMismatch = errors.New("client: requested user is not the signed-in user")
)

type Client struct {
	base string
	hc   *http.Client

	mu      sync.RWMutex
	session Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithSession starts the client signed in, e.g. from a saved session file.
func WithSession(s Session) Option { return func(c *Client) { c.session = s } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the current session; UserID is empty when signed out.
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// CurrentUser implements calendar.Authenticator.
func (c *Client) CurrentUser() (string, bool) {
	s := c.Session()
	return s.UserID, s.UserID != ""
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func (c *Client) Register(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/v1/auth/register", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/v1/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Session, error) {
	var resp authResp
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return Session{}, err
	}
	s := Session{
		UserID:         resp.User.ID,
		Email:          resp.User.Email,
		AccessToken:    resp.Access.Token,
		AccessExpires:  resp.Access.Expires,
		RefreshToken:   resp.Refresh.Token,
		RefreshExpires: resp.Refresh.Expires,
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return s, nil
}

// SignOut revokes the refresh token and forgets the session.  The local
// session is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	s := c.Session()
	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
	if s.RefreshToken == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/v1/auth/logout", "", map[string]string{"refresh_token": s.RefreshToken}, nil)
}

// ListEvents implements calendar.Store.  The server scopes rows by token, so
// only the signed-in user's rows can be requested.
func (c *Client) ListEvents(ctx context.Context, userID string) ([]model.EventRow, error) {
	if uid, ok := c.CurrentUser(); !ok || uid != userID {
		return nil, ErrSessionMismatch
	}
	var rows []model.EventRow
	if err := c.authed(ctx, http.MethodGet, "/v1/events", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertEvent implements calendar.Store.
func (c *Client) InsertEvent(ctx context.Context, row model.EventRow) (model.EventRow, error) {
	if uid, ok := c.CurrentUser(); !ok || uid != row.UserID {
		return model.EventRow{}, ErrSessionMismatch
	}
	var stored model.EventRow
	if err := c.authed(ctx, http.MethodPost, "/v1/events", row, &stored); err != nil {
		return model.EventRow{}, err
	}
	return stored, nil
}

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	err := c.authed(ctx, http.MethodGet, "/v1/profile", nil, &p)
	return p, err
}

// UpdateProfile saves name and phone; nil leaves a field empty.
func (c *Client) UpdateProfile(ctx context.Context, fullName, phone *string) (model.Profile, error) {
	var p model.Profile
	body := map[string]*string{"full_name": fullName, "phone": phone}
	err := c.authed(ctx, http.MethodPut, "/v1/profile", body, &p)
	return p, err
}

// authed sends a request with the access token, renewing it once through
// the refresh token when the server answers 401.
func (c *Client) authed(ctx context.Context, method, path string, in, out any) error {
	s := c.Session()
	if s.AccessToken == "" {
		return ErrNotSignedIn
	}
	err := c.do(ctx, method, path, s.AccessToken, in, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || s.RefreshToken == "" {
		return err
	}
	token, rerr := c.renewAccess(ctx, s.RefreshToken)
	if rerr != nil {
		return err
	}
	return c.do(ctx, method, path, token, in, out)
}

func (c *Client) renewAccess(ctx context.Context, refresh string) (string, error) {
	var resp struct {
		Access tokenPart `json:"access"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/refresh-access", "", map[string]string{"refresh_token": refresh}, &resp); err != nil {
		return "", err
	}
	c.mu.Lock()
	if c.session.RefreshToken == refresh {
		c.session.AccessToken = resp.Access.Token
		c.session.AccessExpires = resp.Access.Expires
	}
	c.mu.Unlock()
	return resp.Access.Token, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

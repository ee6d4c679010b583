// Package client is a typed HTTP client for the facility reports API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/dashboard"
	"github.com/greencampus/facility-reports/internal/mapview"
	"github.com/greencampus/facility-reports/internal/submission"
)

// ErrNotLoggedIn returned by authenticated calls made without a token
var ErrNotLoggedIn = errors.New("not logged in")

// APIError non-2xx response carrying the server message
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err means the session must be renewed
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized ||
		(apiErr.Status == http.StatusForbidden && apiErr.Message == "Invalid or expired token")
}

// Client talks to one API server
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken starts the client with a stored session token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for baseURL, eg "http://localhost:5000"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token current session token, empty before login
func (c *Client) Token() string {
	return c.token
}

// User public user fields returned at login
type User struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FullName       string      `json:"fullName"`
	Role           models.Role `json:"role"`
	Section        string      `json:"section,omitempty"`
	Grade          string      `json:"grade,omitempty"`
	ProfilePicture string      `json:"profilePicture,omitempty"`
}

// SignupRequest registration form
type SignupRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
	Section  string      `json:"section,omitempty"`
	Grade    string      `json:"grade,omitempty"`
	Phone    string      `json:"phone,omitempty"`
}

// Session result of a successful login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
	User      User      `json:"user"`
}

// ProfileUpdate editable profile fields; nil leaves a field untouched
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Section  *string `json:"section,omitempty"`
	Grade    *string `json:"grade,omitempty"`
}

// Submitted summary returned after a report is stored
type Submitted struct {
	ID          string `json:"_id"`
	PhotosCount int    `json:"photosCount"`
}

// Signup registers an account; it does not log in
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signup", req, nil, false)
}

// Login authenticates by username or email and keeps the token
func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	var out struct {
		Session
		ExpiresAt int64 `json:"expiresAt"`
	}
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out, false); err != nil {
		return nil, err
	}
	out.Session.ExpiresAt = time.Unix(out.ExpiresAt, 0)
	c.token = out.Token
	return &out.Session, nil
}

// Logout forgets the session token
func (c *Client) Logout() {
	c.token = ""
}

// Profile loads the caller's stored record
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &out, true); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateProfile changes the given fields
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/user/profile", update, &out, true); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ChangePassword replaces the caller's password
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPost, "/api/user/change-password", body, nil, true)
}

// SetProfilePictureURL points the profile picture at an external image
func (c *Client) SetProfilePictureURL(ctx context.Context, imageURL string) (string, error) {
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	body := map[string]string{"imageUrl": imageURL}
	if err := c.do(ctx, http.MethodPost, "/api/user/profile-picture", body, &out, true); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// UploadProfilePicture sends an image file as multipart form data
func (c *Client) UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profilePicture", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/user/profile-picture", &buf, true)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// SubmitWaste stores a daily waste log
func (c *Client) SubmitWaste(ctx context.Context, form submission.WasteInput) (*Submitted, error) {
	var out struct {
		Entry Submitted `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/waste/daily", form, &out, true); err != nil {
		return nil, err
	}
	return &out.Entry, nil
}

// SubmitResources stores a weekly resources report
func (c *Client) SubmitResources(ctx context.Context, form submission.ResourceInput) (*Submitted, error) {
	var out struct {
		Entry Submitted `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/resources/weekly", form, &out, true); err != nil {
		return nil, err
	}
	return &out.Entry, nil
}

// SubmitSpace stores an unused space report
func (c *Client) SubmitSpace(ctx context.Context, form submission.SpaceInput) (*Submitted, error) {
	var out struct {
		Entry Submitted `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/spaces/unused", form, &out, true); err != nil {
		return nil, err
	}
	return &out.Entry, nil
}

type listResponse[T any] struct {
	Entries []T `json:"entries"`
	Count   int `json:"count"`
}

func list[T any](ctx context.Context, c *Client, path string, limit int) ([]T, error) {
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out listResponse[T]
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// ListWaste waste logs visible to the caller; limit <= 0 uses the server default
func (c *Client) ListWaste(ctx context.Context, limit int) ([]models.WasteEntry, error) {
	return list[models.WasteEntry](ctx, c, "/api/waste/daily", limit)
}

// ListResources resource reports visible to the caller
func (c *Client) ListResources(ctx context.Context, limit int) ([]models.ResourceEntry, error) {
	return list[models.ResourceEntry](ctx, c, "/api/resources/weekly", limit)
}

// ListSpaces space reports visible to the caller
func (c *Client) ListSpaces(ctx context.Context, limit int) ([]models.SpaceEntry, error) {
	return list[models.SpaceEntry](ctx, c, "/api/spaces/unused", limit)
}

// DashboardStats management summary
func (c *Client) DashboardStats(ctx context.Context) (*dashboard.StatsResponse, error) {
	var out dashboard.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// MapMarkers map overlay feed
func (c *Client) MapMarkers(ctx context.Context) (*mapview.Feed, error) {
	var out mapview.Feed
	if err := c.do(ctx, http.MethodGet, "/api/map/markers", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// do encodes in as JSON, sends the request and decodes the body into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, authed bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	if authed && c.token == "" {
		return nil, ErrNotLoggedIn
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &envelope) != nil || envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

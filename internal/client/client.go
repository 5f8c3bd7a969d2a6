// ABOUTME: HTTP client for the exam platform API
// ABOUTME: Wraps API calls with proper error handling for CLI and TUI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/waynezhang680/examctl/internal/models"
)

// API endpoint paths, relative to the base URL
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathMe       = "/auth/me"
	PathExams    = "/exams"
)

// DefaultTimeout matches the platform's web client
const DefaultTimeout = 5 * time.Second

// Client is the API client for the exam platform backend.
// All requests go through the authorization pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  *authTransport
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*options)

type options struct {
	timeout time.Duration
	base    http.RoundTripper
	logger  *slog.Logger
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport sets the RoundTripper underneath the authorization pipeline
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithLogger sets the logger used by the client and its pipeline
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	transport := newAuthTransport(o.base, o.logger)
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		logger:    o.logger,
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		},
	}
}

// UseCredentials binds the session the pipeline reads tokens from and evicts on 401.
// The session is usually constructed with this client, so binding happens afterwards.
func (c *Client) UseCredentials(creds Credentials) {
	c.transport.setCredentials(creds)
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	return c.authenticate(ctx, PathLogin, models.LoginRequest{Username: username, Password: password})
}

// Register calls POST /auth/register after checking the form locally
func (c *Client) Register(ctx context.Context, form models.RegisterRequest) (*models.AuthResponse, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, PathRegister, form)
}

// CurrentUser calls GET /auth/me
func (c *Client) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var me models.MeResponse
	if err := c.do(ctx, http.MethodGet, PathMe, nil, &me); err != nil {
		return nil, err
	}
	return &me.User, nil
}

// ListExams calls GET /exams?page=&limit=
func (c *Client) ListExams(ctx context.Context, page, limit int) (*models.ExamList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var list models.ExamList
	if err := c.do(ctx, http.MethodGet, PathExams+"?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetExam calls GET /exams/:id
func (c *Client) GetExam(ctx context.Context, id int64) (*models.Exam, error) {
	var exam models.Exam
	if err := c.do(ctx, http.MethodGet, examPath(id), nil, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

// StartExam calls POST /exams/:id/start
func (c *Client) StartExam(ctx context.Context, id int64) (*models.Exam, error) {
	var exam models.Exam
	if err := c.do(ctx, http.MethodPost, examPath(id)+"/start", nil, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

func examPath(id int64) string {
	return PathExams + "/" + strconv.FormatInt(id, 10)
}

// authenticate posts credentials and maps rejections to AuthenticationError
func (c *Client) authenticate(ctx context.Context, path string, payload interface{}) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	err := c.do(ctx, http.MethodPost, path, payload, &auth)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil, &AuthenticationError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	if err != nil {
		return nil, err
	}
	if auth.Token == "" {
		return nil, fmt.Errorf("invalid response from backend: missing token")
	}
	return &auth, nil
}

// do sends a JSON request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response, path string) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    readErrorMessage(resp),
	}
	c.logger.Debug("API error response", "status", resp.StatusCode, "path", path, "error", apiErr.Message)
	return apiErr
}

package tempmail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultQPS is the default request rate sent to the API.
const DefaultQPS = 5.0

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client implements the API interface over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces requests to qps requests per second.
func WithRateLimit(qps float64) ClientOption {
	return func(c *Client) {
		if qps <= 0 {
			qps = DefaultQPS
		}
		c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
	}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(DefaultQPS), 1)
	}

	return c
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the JSON wrapper every API response uses.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// request sends one HTTP request and decodes the envelope's result into out.
// out may be nil when the result is not needed. Requests are never retried.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Path: path}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return fmt.Errorf("parse response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Name = env.Error.Name
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("parse result: %w", err)
	}
	return nil
}

// Domains returns the domains addresses can be created under.
func (c *Client) Domains(ctx context.Context) ([]string, error) {
	var domains []string
	if err := c.request(ctx, http.MethodGet, "/domains", nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// Email returns a single message including its body.
func (c *Client) Email(ctx context.Context, id string) (*Email, error) {
	var email Email
	if err := c.request(ctx, http.MethodGet, "/inbox/"+url.PathEscape(id), nil, &email); err != nil {
		return nil, err
	}
	email.sanitize()
	return &email, nil
}

// DeleteEmail removes a single message.
func (c *Client) DeleteEmail(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/inbox/"+url.PathEscape(id), nil, nil)
}

// Attachments returns attachment metadata for a message.
func (c *Client) Attachments(ctx context.Context, emailID string) ([]Attachment, error) {
	var attachments []Attachment
	path := "/inbox/" + url.PathEscape(emailID) + "/attachments"
	if err := c.request(ctx, http.MethodGet, path, nil, &attachments); err != nil {
		return nil, err
	}
	for i := range attachments {
		attachments[i].sanitize()
	}
	return attachments, nil
}

// Mailbox returns a client scoped to address.
func (c *Client) Mailbox(address string) (MailboxAPI, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	return &Mailbox{client: c, address: address}, nil
}

// ValidateAddress checks that address is a bare local@domain address.
func ValidateAddress(address string) error {
	if strings.Count(address, "@") != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	local, domain, _ := strings.Cut(address, "@")
	if local == "" || domain == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// Mailbox is a Client bound to one address.
type Mailbox struct {
	client  *Client
	address string
}

// Address returns the mailbox address.
func (m *Mailbox) Address() string {
	return m.address
}

// Emails returns up to limit message summaries starting at offset.
func (m *Mailbox) Emails(ctx context.Context, limit, offset int) ([]Email, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var emails []Email
	if err := m.client.request(ctx, http.MethodGet, "/emails/"+url.PathEscape(m.address), params, &emails); err != nil {
		return nil, err
	}
	for i := range emails {
		emails[i].sanitize()
	}
	return emails, nil
}

// Count returns the total number of messages in the mailbox.
func (m *Mailbox) Count(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := m.client.request(ctx, http.MethodGet, "/emails/count/"+url.PathEscape(m.address), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// DeleteAll removes every message in the mailbox.
func (m *Mailbox) DeleteAll(ctx context.Context) (int, error) {
	var resp struct {
		DeletedCount int `json:"deleted_count"`
	}
	if err := m.client.request(ctx, http.MethodDelete, "/emails/"+url.PathEscape(m.address), nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// Ensure Client implements API interface.
var (
	_ API        = (*Client)(nil)
	_ MailboxAPI = (*Mailbox)(nil)
)

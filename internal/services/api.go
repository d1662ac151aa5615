// Raw HTTP client for the wiki REST API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/correx/internal/shared"
)

// APIService performs authenticated, rate limited requests against the wiki REST API.
//
// It returns raw responses; [CorrectionService] layers typed decoding on top.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	cookie     string
	headers    map[string]string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewAPIService creates an API client from cfg.
//
// A non-empty token is attached as a bearer token through an [oauth2.StaticTokenSource].
// The given client is copied, never mutated; nil uses [http.DefaultClient].
func NewAPIService(cfg shared.APIConfig, client *http.Client, logger *log.Logger) *APIService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := *client
	if cfg.Timeout.Duration > 0 {
		c.Timeout = cfg.Timeout.Duration
	}
	if cfg.Token != "" {
		base := c.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
			Base:   base,
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3000"
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: &c,
		cookie:     cfg.Cookie,
		headers:    cfg.Headers,
		limiter:    limiter,
		logger:     logger,
	}
}

// BaseURL returns the API root requests are resolved against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.cookie != "" {
		req.Header.Set("Cookie", a.cookie)
	}
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", shared.ErrAPIRequest, err)
		}
	}

	a.logger.Debug("api request", "method", method, "path", path)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request failed: %w", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	a.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)
	return apiResp, nil
}

// APIError is a non-2xx response from the wiki API.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, e.Message)
}

// Unwrap maps the status code to a shared sentinel so callers can use [errors.Is].
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return shared.ErrValidation
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return shared.ErrNotAuthenticated
	case e.StatusCode == http.StatusServiceUnavailable:
		return shared.ErrServiceUnavailable
	case e.StatusCode >= 500:
		return shared.ErrServerError
	default:
		return shared.ErrAPIRequest
	}
}

// NotFound reports whether err is an API 404.
func NotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// newAPIError builds an [APIError] from a failed response, reading {"message": ...} when present.
func newAPIError(path string, resp *APIResponse) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else if text := strings.TrimSpace(string(resp.Body)); text != "" && !resp.IsJSON {
		apiErr.Message = text
	}
	return apiErr
}

// decodeData decodes a response body into v, unwrapping a {"status", "data"} envelope when present.
func decodeData(raw []byte, v any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		_, hasStatus := envelope["status"]
		data, hasData := envelope["data"]
		if hasStatus && hasData {
			raw = data
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		if errors.Is(err, shared.ErrInvalidResponse) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrInvalidResponse, err)
	}
	return nil
}

// Package keysmanager implements keyinfo.KeysManager: resolving a KeyName's
// text content to a Key by calling out to an HTTP key server and caching
// the result for a configurable TTL.
package keysmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the default number of retries for a lookup.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the initial delay between retries.
	DefaultRetryDelay = 1 * time.Second
)

// ErrorKind classifies a lookup failure.
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindNetwork
	ErrorKindTimeout
	ErrorKindNotFound
	ErrorKindInvalidInput
	ErrorKindInvalidResponse
	ErrorKindRateLimit
	ErrorKindServerError
)

// LookupError is a classified failure from the key server.
type LookupError struct {
	Message    string
	StatusCode int
	Kind       ErrorKind
	Temporary  bool
	RetryAfter time.Duration
	Underlying error
}

func (e *LookupError) Error() string { return e.Message }

func (e *LookupError) Unwrap() error { return e.Underlying }

// IsTemporary reports whether a retry might succeed.
func (e *LookupError) IsTemporary() bool { return e.Temporary }

// IsRateLimitError reports whether the server asked the caller to back off.
func (e *LookupError) IsRateLimitError() bool { return e.Kind == ErrorKindRateLimit }

// KeyRecord is a key server's response for one key name.
type KeyRecord struct {
	Name       string `json:"name"`
	PublicKey  string `json:"public_key_base64"`
	KeyID      string `json:"key_id"`
}

type lookupResponse struct {
	Keys []KeyRecord `json:"keys"`
}

// Client is an HTTP client for a key server's lookup endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
	RetryDelay time.Duration
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a Client, applying defaults for any zero-valued fields.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = &ClientConfig{}
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	} else if maxRetries < 0 {
		maxRetries = 0
	}
	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	return &Client{
		BaseURL:    config.BaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}
}

// LookupKeys fetches key records for the given names, retrying transient
// failures with exponential backoff.
func (c *Client) LookupKeys(ctx context.Context, names []string) ([]KeyRecord, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("keysmanager: no key names provided")
	}

	reqURL := fmt.Sprintf("%s/keys/lookup", c.BaseURL)
	params := url.Values{}
	for _, n := range names {
		params.Add("name", n)
	}
	fullURL := fmt.Sprintf("%s?%s", reqURL, params.Encode())

	var resp *lookupResponse
	var err error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.RetryDelay * time.Duration(1<<uint(attempt-1))
			var lerr *LookupError
			if errors.As(err, &lerr) && lerr.IsRateLimitError() && lerr.RetryAfter > 0 {
				delay = lerr.RetryAfter
			}
			select {
			case <-ctx.Done():
				return nil, wrapContextError(ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err = c.doLookup(ctx, fullURL)
		if err == nil {
			break
		}
		var lerr *LookupError
		if errors.As(err, &lerr) && !lerr.IsTemporary() && !lerr.IsRateLimitError() {
			break
		}
	}

	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("keysmanager: lookup succeeded but response was nil")
	}
	return resp.Keys, nil
}

func (c *Client) doLookup(ctx context.Context, reqURL string) (*lookupResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &LookupError{Message: fmt.Sprintf("failed to create request: %v", err), Kind: ErrorKindInvalidInput, Underlying: err}
	}
	req.Header.Set("User-Agent", "keyinfo-keysmanager/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyHTTPError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LookupError{Message: fmt.Sprintf("failed to read response body: %v", err), Kind: ErrorKindNetwork, Temporary: true, Underlying: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatusError(resp, body)
	}

	var out lookupResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &LookupError{Message: fmt.Sprintf("failed to parse key server response: %v", err), StatusCode: resp.StatusCode, Kind: ErrorKindInvalidResponse, Underlying: err}
	}
	return &out, nil
}

func classifyHTTPError(err error) *LookupError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &LookupError{Message: "request timed out while connecting to key server", Kind: ErrorKindTimeout, Temporary: true, Underlying: err}
	}
	if errors.Is(err, context.Canceled) {
		return &LookupError{Message: "request was cancelled", Kind: ErrorKindTimeout, Underlying: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &LookupError{Message: fmt.Sprintf("network error while connecting to key server: %v", netErr), Kind: ErrorKindNetwork, Temporary: netErr.Timeout(), Underlying: err}
	}
	return &LookupError{Message: fmt.Sprintf("HTTP request failed: %v", err), Kind: ErrorKindNetwork, Temporary: true, Underlying: err}
}

func classifyHTTPStatusError(resp *http.Response, body []byte) *LookupError {
	statusCode := resp.StatusCode
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	if statusCode == http.StatusTooManyRequests {
		return &LookupError{
			Message:    fmt.Sprintf("rate limited by key server: %s", bodyStr),
			StatusCode: statusCode,
			Kind:       ErrorKindRateLimit,
			Temporary:  true,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if statusCode == http.StatusNotFound {
		return &LookupError{Message: fmt.Sprintf("key not found: %s", bodyStr), StatusCode: statusCode, Kind: ErrorKindNotFound}
	}
	if statusCode >= 400 && statusCode < 500 {
		return &LookupError{Message: fmt.Sprintf("key server rejected request: %s", bodyStr), StatusCode: statusCode, Kind: ErrorKindInvalidInput}
	}
	if statusCode >= 500 {
		return &LookupError{Message: fmt.Sprintf("key server error (status %d): %s", statusCode, bodyStr), StatusCode: statusCode, Kind: ErrorKindServerError, Temporary: true}
	}
	return &LookupError{Message: fmt.Sprintf("unexpected HTTP status %d: %s", statusCode, bodyStr), StatusCode: statusCode, Kind: ErrorKindUnknown}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.ParseInt(header, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func wrapContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &LookupError{Message: "operation timed out", Kind: ErrorKindTimeout, Temporary: true, Underlying: err}
	}
	if errors.Is(err, context.Canceled) {
		return &LookupError{Message: "operation was cancelled", Kind: ErrorKindTimeout, Underlying: err}
	}
	return err
}

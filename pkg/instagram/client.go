package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"igcarousel/pkg/config"
	"igcarousel/pkg/errors"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/retry"
)

// Client fetches Instagram post pages and image bytes over plain HTTP.
// It carries browser-like headers plus whatever session cookies the
// caller configures; anything requiring real browser interaction goes
// through the browser driver instead.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	retryCfg   *retry.Config
	logger     logger.Logger
}

// NewClient creates a new Instagram HTTP client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         BaseURL + "/",
		},
		logger: log,
	}
}

// NewClientWithConfig creates a client wired with session cookies and
// retry behavior from configuration
func NewClientWithConfig(cfg *config.Config, log logger.Logger) *Client {
	c := NewClient(cfg.Download.DownloadTimeout, log)

	var cookies []string
	if cfg.Instagram.SessionID != "" {
		cookies = append(cookies, fmt.Sprintf("sessionid=%s", cfg.Instagram.SessionID))
	}
	if cfg.Instagram.CSRFToken != "" {
		cookies = append(cookies, fmt.Sprintf("csrftoken=%s", cfg.Instagram.CSRFToken))
		c.SetHeader("x-csrftoken", cfg.Instagram.CSRFToken)
	}
	if len(cookies) > 0 {
		c.SetHeader("Cookie", strings.Join(cookies, "; "))
	}
	if cfg.Instagram.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}

	c.retryCfg = &retry.Config{
		MaxAttempts: cfg.RateLimit.MaxRetries,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    cfg.RateLimit.RetryDelay,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: context.Background(),
		Logger:  log,
	}

	return c
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// FetchPostPage fetches the HTML of a post page by shortcode
func (c *Client) FetchPostPage(ctx context.Context, shortcode string) (string, error) {
	if !IsValidShortcode(shortcode) {
		return "", &errors.Error{
			Type:    errors.ErrorTypeInvalidInput,
			Message: fmt.Sprintf("invalid shortcode: %q", shortcode),
		}
	}

	data, err := c.get(ctx, PostURL(shortcode))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Fetch retrieves the bytes behind a URL. It satisfies the content-hash
// deduplicator's Fetcher contract.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

// DownloadImage fetches image bytes for storage
func (c *Client) DownloadImage(url string) ([]byte, error) {
	return c.get(context.Background(), url)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	op := func() error {
		var err error
		data, err = c.doGet(ctx, url)
		return err
	}

	if c.retryCfg == nil {
		if err := op(); err != nil {
			return nil, err
		}
		return data, nil
	}

	cfg := *c.retryCfg
	cfg.Context = ctx
	if err := retry.Do(op, &cfg); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			logger.LogRateLimit(url, retryAfter)
		}
		return nil, statusError(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	return data, nil
}

func statusError(code int) *errors.Error {
	e := &errors.Error{Code: code}
	switch {
	case code == http.StatusTooManyRequests:
		e.Type = errors.ErrorTypeRateLimit
		e.Message = "rate limited by Instagram"
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		e.Type = errors.ErrorTypeAuth
		e.Message = "authentication required"
	case code == http.StatusNotFound:
		e.Type = errors.ErrorTypeNotFound
		e.Message = "resource not found"
	case code >= 500:
		e.Type = errors.ErrorTypeServerError
		e.Message = fmt.Sprintf("server error: %d", code)
	default:
		e.Type = errors.ErrorTypeUnknown
		e.Message = fmt.Sprintf("unexpected status: %d", code)
	}
	return e
}

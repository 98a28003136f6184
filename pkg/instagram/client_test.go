package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcarousel/pkg/config"
	"igcarousel/pkg/errors"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/retry"
)

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewNopLogger())
	data, err := client.Fetch(context.Background(), server.URL+"/img.jpg")

	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestFetchSendsConfiguredHeaders(t *testing.T) {
	var gotCookie, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Instagram.SessionID = "sess-1"
	cfg.Instagram.CSRFToken = "csrf-1"
	cfg.Instagram.UserAgent = "test-agent"
	cfg.RateLimit.MaxRetries = 1
	client := NewClientWithConfig(cfg, logger.NewNopLogger())

	_, err := client.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, gotCookie, "sessionid=sess-1")
	assert.Contains(t, gotCookie, "csrftoken=csrf-1")
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetchTypedStatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		wantType errors.ErrorType
	}{
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{http.StatusUnauthorized, errors.ErrorTypeAuth},
		{http.StatusForbidden, errors.ErrorTypeAuth},
		{http.StatusNotFound, errors.ErrorTypeNotFound},
		{http.StatusBadGateway, errors.ErrorTypeServerError},
		{http.StatusTeapot, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := NewClient(5*time.Second, logger.NewNopLogger())
		_, err := client.Fetch(context.Background(), server.URL)
		server.Close()

		var apiErr *errors.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.wantType, apiErr.Type)
		assert.Equal(t, tt.status, apiErr.Code)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.RateLimit.MaxRetries = 5
	client := NewClientWithConfig(cfg, logger.NewNopLogger())
	client.retryCfg.Backoff = &retry.FixedBackoff{Delay: time.Millisecond}

	data, err := client.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchPostPageRejectsInvalidShortcode(t *testing.T) {
	client := NewClient(time.Second, logger.NewNopLogger())

	_, err := client.FetchPostPage(context.Background(), "not a shortcode!")

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeInvalidInput, apiErr.Type)
}

func TestPostURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/p/C1234abcd/", PostURL("C1234abcd"))
	assert.Empty(t, PostURL(""))
}

func TestIsValidShortcode(t *testing.T) {
	assert.True(t, IsValidShortcode("C1234abcd_-"))
	assert.False(t, IsValidShortcode(""))
	assert.False(t, IsValidShortcode("has spaces"))
	assert.False(t, IsValidShortcode("slash/code"))
}

func TestSanitizeShortcode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"C1234abcd", "C1234abcd"},
		{"https://www.instagram.com/p/C1234abcd/", "C1234abcd"},
		{"/p/C1234abcd/", "C1234abcd"},
		{"C1234abcd/ ", "C1234abcd"},
		{"https://www.instagram.com/p/C1234abcd/?img_index=2", "C1234abcd"},
		{"https://www.instagram.com/p/C1234abcd/?utm_source=ig_web_copy_link", "C1234abcd"},
		{"C1234abcd?img_index=5", "C1234abcd"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeShortcode(tt.input))
	}
}

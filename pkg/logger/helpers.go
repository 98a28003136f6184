package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogExtraction logs the outcome of a carousel extraction
func LogExtraction(shortcode string, expected, collected int) {
	fields := map[string]interface{}{
		"shortcode": shortcode,
		"expected":  expected,
		"collected": collected,
	}

	if collected >= expected {
		GetLogger().InfoWithFields("extraction complete", fields)
	} else {
		GetLogger().WarnWithFields("partial carousel extracted", fields)
	}
}

// LogNavigation logs a single carousel navigation attempt
func LogNavigation(strategy string, attempt int, success bool) {
	GetLogger().DebugWithFields("navigation step", map[string]interface{}{
		"strategy": strategy,
		"attempt":  attempt,
		"success":  success,
	})
}

// LogDownload logs a single image download
func LogDownload(shortcode, url string, success bool, err error) {
	fields := map[string]interface{}{
		"shortcode": shortcode,
		"url":       url,
		"success":   success,
	}

	l := GetLogger().WithFields(fields)
	if err != nil {
		l.WithError(err).Error("download failed")
	} else {
		l.Debug("download completed")
	}
}

// LogRateLimit logs a rate limiting event
func LogRateLimit(endpoint string, retryAfter int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":    endpoint,
		"retry_after": retryAfter,
	}).Warn("rate limit reached, backing off")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }

package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads a session from environment variables. It is
// read-only and exists so CI and one-off runs work without a keychain.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables.
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(username string) (*Session, error) {
	sessionID := os.Getenv("IGCAROUSEL_SESSION_ID")
	csrfToken := os.Getenv("IGCAROUSEL_CSRF_TOKEN")

	if sessionID == "" || csrfToken == "" {
		return nil, ErrSessionNotFound
	}

	// Environment variables carry no username
	if username == "" {
		username = "default"
	}

	return &Session{
		Username:     username,
		SessionID:    sessionID,
		CSRFToken:    csrfToken,
		UserAgent:    os.Getenv("IGCAROUSEL_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables.
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(username string) bool {
	return os.Getenv("IGCAROUSEL_SESSION_ID") != "" && os.Getenv("IGCAROUSEL_CSRF_TOKEN") != ""
}

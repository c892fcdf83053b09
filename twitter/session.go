package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// sessionStore keeps one JSON file of cookies per account username.
type sessionStore struct {
	dir string
	ttl time.Duration
}

type sessionFile struct {
	AuthToken string    `json:"auth_token"`
	CT0       string    `json:"ct0"`
	SavedAt   time.Time `json:"saved_at"`
}

// newSessionStore uses ~/.twint/sessions when dir is empty.
func newSessionStore(dir string, ttl time.Duration) sessionStore {
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".twint", "sessions")
	}
	return sessionStore{dir: dir, ttl: ttl}
}

func (s sessionStore) path(username string) string {
	return filepath.Join(s.dir, username+".json")
}

// save writes the cookies readable by the owner only.
func (s sessionStore) save(username, authToken, ct0 string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sessionFile{AuthToken: authToken, CT0: ct0, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(username), data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", username, err)
	}
	slog.Debug("session saved", slog.String("user", username))
	return nil
}

// load returns empty values without error when no fresh session exists.
func (s sessionStore) load(username string) (authToken, ct0 string, err error) {
	data, err := os.ReadFile(s.path(username))
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", "", fmt.Errorf("session %s: %w", username, err)
	}
	if time.Since(f.SavedAt) > s.ttl {
		slog.Debug("session expired", slog.String("user", username), slog.Time("saved_at", f.SavedAt))
		return "", "", nil
	}
	return f.AuthToken, f.CT0, nil
}

func (s sessionStore) remove(username string) {
	if err := os.Remove(s.path(username)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("session remove failed", slog.String("user", username), slog.Any("error", err))
	}
}

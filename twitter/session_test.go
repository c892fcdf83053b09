package twitter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	s := newSessionStore(t.TempDir(), time.Hour)
	require.NoError(t, s.save("alice", "tok", "ct0val"))

	info, err := os.Stat(s.path("alice"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	authToken, ct0, err := s.load("alice")
	require.NoError(t, err)
	assert.Equal(t, "tok", authToken)
	assert.Equal(t, "ct0val", ct0)

	s.remove("alice")
	authToken, _, err = s.load("alice")
	require.NoError(t, err)
	assert.Empty(t, authToken)
}

func TestSessionStore_Expired(t *testing.T) {
	s := newSessionStore(t.TempDir(), 24*time.Hour)
	data, err := json.Marshal(sessionFile{AuthToken: "tok", CT0: "c", SavedAt: time.Now().Add(-48 * time.Hour)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.path("bob"), data, 0o600))

	authToken, ct0, err := s.load("bob")
	require.NoError(t, err)
	assert.Empty(t, authToken)
	assert.Empty(t, ct0)
}

func TestSessionStore_Corrupt(t *testing.T) {
	s := newSessionStore(t.TempDir(), time.Hour)
	require.NoError(t, os.WriteFile(s.path("eve"), []byte("{"), 0o600))

	_, _, err := s.load("eve")
	assert.ErrorContains(t, err, "session eve")
}

func TestSessionStore_DefaultDir(t *testing.T) {
	assert.Equal(t, "/tmp/x", newSessionStore("/tmp/x", 0).dir)
	assert.True(t, strings.HasSuffix(newSessionStore("", 0).dir, filepath.Join(".twint", "sessions")))
}

package twitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccount(t *testing.T) {
	acc, err := ParseAccount(" alice:secret ")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Username)
	assert.Equal(t, "secret", acc.Password)
	assert.True(t, acc.IsActive())
	assert.Empty(t, acc.AuthToken)

	acc, err = ParseAccount("bob:pw:tok:ct0:JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	authToken, ct0, _ := acc.Credentials()
	assert.Equal(t, "tok", authToken)
	assert.Equal(t, "ct0", ct0)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", acc.TOTPSecret)
	assert.Less(t, acc.CT0Age().Minutes(), 1.0)

	_, err = ParseAccount("nopassword")
	assert.Error(t, err)
	_, err = ParseAccount(":pw")
	assert.Error(t, err)
}

func TestParseAccounts(t *testing.T) {
	accounts := ParseAccounts("a:1, broken ,,b:2:tok:ct0")
	require.Len(t, accounts, 2)
	assert.Equal(t, "a", accounts[0].ID())
	assert.Equal(t, "b", accounts[1].ID())
	assert.NotEmpty(t, accounts[0].UserAgent)
}

func TestAccountWithoutLimiter(t *testing.T) {
	acc := NewAccount("x", "")
	assert.True(t, acc.AllowRequest("SearchTimeline"))
	assert.False(t, acc.IsEndpointRateLimited("SearchTimeline"))
	assert.True(t, acc.EndpointAvailableAt("SearchTimeline").IsZero())
}

func TestRotateCT0(t *testing.T) {
	acc := NewAccount("x", "")
	acc.SetCredentials("tok", "old")
	acc.RotateCT0()
	_, ct0, _ := acc.Credentials()
	assert.NotEqual(t, "old", ct0)
	assert.Len(t, ct0, 64)
}

func TestProxyBackoff(t *testing.T) {
	acc := NewAccount("x", "")
	now := time.Now()
	assert.True(t, acc.proxyReady(now))

	step := func(fails int) time.Duration { return time.Duration(fails) * time.Minute }
	fails, wait := acc.proxyFailed(step)
	assert.Equal(t, 1, fails)
	assert.Equal(t, time.Minute, wait)
	assert.False(t, acc.proxyReady(now))

	fails, _ = acc.proxyFailed(step)
	assert.Equal(t, 2, fails)

	acc.proxyRecovered()
	fails, _ = acc.proxyFailed(step)
	assert.Equal(t, 1, fails)
	assert.True(t, acc.proxyReady(now.Add(2*time.Minute)))
}

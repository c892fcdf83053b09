package twitter

import (
	"testing"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/stretchr/testify/assert"
)

func TestClientConfigDefaults(t *testing.T) {
	cfg := ClientConfig{BanCooldown: time.Minute}
	cfg.defaults()

	assert.Equal(t, defaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, defaultAuthCooldown, cfg.AuthCooldown)
	assert.Equal(t, time.Minute, cfg.BanCooldown)
	assert.Equal(t, defaultProxyInitial, cfg.ProxyBackoffInitial)
	assert.Equal(t, defaultProxyMax, cfg.ProxyBackoffMax)
	assert.Equal(t, ratelimit.DefaultConfig.RequestsPerWindow, cfg.RateLimit.RequestsPerWindow)
}

package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in   string
		want Scheme
		ok   bool
	}{
		{"socks5", SOCKS5, true},
		{"SOCKS5", SOCKS5, true},
		{"Socks4", SOCKS4, true},
		{"http", HTTP, true},
		{"HTTP", HTTP, true},
		{"ftp", 0, false},
		{"", 0, false},
		{"https", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseScheme(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemeNames(t *testing.T) {
	assert.Equal(t, []string{"socks5", "socks4", "http"}, SchemeNames())
	for _, name := range SchemeNames() {
		s, ok := ParseScheme(name)
		require.True(t, ok)
		assert.Equal(t, name, s.String())
	}
}

func TestTor(t *testing.T) {
	c := Tor()
	assert.Equal(t, Named, c.Kind)
	assert.Equal(t, "tor", c.Name)
	assert.True(t, c.Enabled())
	assert.Equal(t, "socks5://localhost:9050", c.URL())
}

func TestURL(t *testing.T) {
	assert.Equal(t, "", Direct().URL())
	assert.Equal(t, "socks4://10.0.0.1:1080", Proxy(SOCKS4, "10.0.0.1", 1080).URL())
	assert.Equal(t, "http://proxy.example.com:3128", Proxy(HTTP, "proxy.example.com", 3128).URL())
	assert.Equal(t, "socks5://[::1]:9050", Proxy(SOCKS5, "::1", 9050).URL())
}

func TestStealthOptions(t *testing.T) {
	assert.Empty(t, Direct().StealthOptions())
	assert.Len(t, Tor().StealthOptions(), 1)
}

func TestHTTPClient(t *testing.T) {
	c, err := Direct().HTTPClient(5 * time.Second)
	require.NoError(t, err)
	assert.Nil(t, c.Transport)
	assert.Equal(t, 5*time.Second, c.Timeout)

	c, err = Proxy(HTTP, "proxy.example.com", 3128).HTTPClient(time.Second)
	require.NoError(t, err)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	req, _ := http.NewRequest("GET", "https://x.com/", nil)
	u, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.example.com:3128", u.Host)

	for _, cfg := range []Config{Tor(), Proxy(SOCKS4, "127.0.0.1", 1080)} {
		c, err = cfg.HTTPClient(time.Second)
		require.NoError(t, err, cfg.URL())
		tr, ok = c.Transport.(*http.Transport)
		require.True(t, ok)
		assert.NotNil(t, tr.DialContext)
		assert.Nil(t, tr.Proxy)
	}
}

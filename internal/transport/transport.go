// Package transport describes the network route every outgoing connection
// takes: direct, through the Tor shortcut, or through an explicit proxy.
//
// A Config is resolved once per run and handed to each client that dials
// out, instead of rebinding the process-wide default dialer.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/net/proxy"

	// Registers the socks4 and socks4a schemes with golang.org/x/net/proxy.
	_ "github.com/bdandy/go-socks4"
)

// Kind tells how a Config routes traffic.
type Kind int

const (
	None     Kind = iota // direct connections
	Named                // a named shortcut, currently only "tor"
	Explicit             // host, port and scheme given by the user
)

func (k Kind) String() string {
	switch k {
	case Named:
		return "named"
	case Explicit:
		return "explicit"
	}
	return "none"
}

// Scheme is the proxy protocol.
type Scheme int

const (
	SOCKS5 Scheme = iota + 1
	SOCKS4
	HTTP
)

// schemes is the closed set of accepted --proxy-type values, in the order
// they are listed to the user.
var schemes = []struct {
	name   string
	scheme Scheme
}{
	{"socks5", SOCKS5},
	{"socks4", SOCKS4},
	{"http", HTTP},
}

// ParseScheme maps a proxy type name (case-insensitive) to a Scheme.
func ParseScheme(name string) (Scheme, bool) {
	name = strings.ToLower(name)
	for _, s := range schemes {
		if s.name == name {
			return s.scheme, true
		}
	}
	return 0, false
}

// SchemeNames returns the accepted proxy type names in display order.
func SchemeNames() []string {
	names := make([]string, len(schemes))
	for i, s := range schemes {
		names[i] = s.name
	}
	return names
}

func (s Scheme) String() string {
	for _, e := range schemes {
		if e.scheme == s {
			return e.name
		}
	}
	return "unknown"
}

// TorName is the --proxy-host value that selects the Tor shortcut.
const TorName = "tor"

// Tor SOCKS5 listener used by the shortcut.
const (
	torHost = "localhost"
	torPort = 9050
)

// Config is the resolved network route.
type Config struct {
	Kind   Kind
	Name   string // set for Named
	Scheme Scheme
	Host   string
	Port   int
}

// Direct returns a Config without a proxy.
func Direct() Config { return Config{Kind: None} }

// Tor returns the shortcut route through a local Tor SOCKS5 listener.
func Tor() Config {
	return Config{Kind: Named, Name: TorName, Scheme: SOCKS5, Host: torHost, Port: torPort}
}

// Proxy returns an explicit route.
func Proxy(scheme Scheme, host string, port int) Config {
	return Config{Kind: Explicit, Scheme: scheme, Host: host, Port: port}
}

// Enabled reports whether traffic goes through a proxy.
func (c Config) Enabled() bool { return c.Kind != None }

// URL returns the proxy URL, e.g. "socks5://localhost:9050", or "" for a
// direct route.
func (c Config) URL() string {
	if !c.Enabled() {
		return ""
	}
	return c.Scheme.String() + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) String() string {
	if !c.Enabled() {
		return "direct"
	}
	return stealth.MaskProxy(c.URL())
}

// StealthOptions returns the go-stealth client options for this route.
func (c Config) StealthOptions() []stealth.ClientOption {
	if !c.Enabled() {
		return nil
	}
	return []stealth.ClientOption{stealth.WithProxy(c.URL())}
}

// HTTPClient returns a plain net/http client routed through c.
func (c Config) HTTPClient(timeout time.Duration) (*http.Client, error) {
	if !c.Enabled() {
		return &http.Client{Timeout: timeout}, nil
	}
	u, err := url.Parse(c.URL())
	if err != nil {
		return nil, fmt.Errorf("proxy url: %w", err)
	}

	tr := &http.Transport{
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
	}
	if c.Scheme == HTTP {
		tr.Proxy = http.ProxyURL(u)
		return &http.Client{Transport: tr, Timeout: timeout}, nil
	}

	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("%s dialer: %w", c.Scheme, err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		tr.DialContext = cd.DialContext
	} else {
		tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return d.Dial(network, addr)
		}
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

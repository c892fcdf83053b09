package cli

import (
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/internal/transport"
)

const msgProxyIncomplete = "Please specify --proxy-host, --proxy-port, and --proxy-type"

// ResolveProxy turns --proxy-host, --proxy-port and --proxy-type into a
// transport route. The "tor" host wins over any port or type.
func ResolveProxy(o RawOptions) (transport.Config, error) {
	host, hasHost := o.ProxyHost.Get()
	hasPort := config.Given(o.ProxyPort)
	hasType := config.Given(o.ProxyType)

	switch {
	case !hasHost:
		if hasPort || hasType {
			return transport.Config{}, invalid(msgProxyIncomplete)
		}
		return transport.Direct(), nil

	case strings.EqualFold(host, transport.TorName):
		return transport.Tor(), nil

	case hasPort && hasType:
		scheme, ok := transport.ParseScheme(o.ProxyType.Value())
		if !ok {
			return transport.Config{}, invalid("Proxy types allowed are: " + enumerate(transport.SchemeNames()) + ".")
		}
		port, err := strconv.Atoi(o.ProxyPort.Value())
		if err != nil || port < 1 || port > 65535 {
			return transport.Config{}, invalid("Proxy port must be a number between 1 and 65535.")
		}
		return transport.Proxy(scheme, host, port), nil
	}

	return transport.Config{}, invalid(msgProxyIncomplete)
}

// enumerate joins names as "a, b, and c".
func enumerate(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}

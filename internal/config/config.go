// Package config holds the resolved run configuration handed to the
// collection modes. A Config is built once, after validation, and is only
// ever passed by value.
package config

import "github.com/anatolykoptev/go-twint/internal/transport"

// Config is the validated, resolved run configuration.
type Config struct {
	// Target selection.
	Username     Opt[string]
	UserID       Opt[string]
	Search       Opt[string]
	FromUserList bool // Username holds a composite from: fragment built from --userlist
	UserList     Opt[string]
	Geo          Opt[string]
	Near         Opt[string]
	Location     Opt[bool]
	Lang         Opt[string]
	To           Opt[string]
	All          Opt[string]

	// Output sinks.
	Output        Opt[string]
	Elasticsearch Opt[string]
	Database      Opt[string]
	StoreCSV      Opt[bool]
	StoreJSON     Opt[bool]
	Format        Opt[string]

	// Filters and behaviour.
	Timedelta    Opt[int]
	Year         Opt[string]
	Since        Opt[string]
	Until        Opt[string]
	Fruit        Opt[bool]
	Verified     Opt[bool]
	ShowHashtags Opt[bool]
	Limit        Opt[int]
	Count        Opt[bool]
	Stats        Opt[bool]

	// Mode selection.
	Followers   Opt[bool]
	Following   Opt[bool]
	Favorites   Opt[bool]
	Retweets    Opt[bool]
	UserFull    Opt[bool]
	ProfileFull Opt[bool]

	// Session.
	Essid Opt[string]

	// Proxy is the route every collector connection takes.
	Proxy transport.Config
}

// Mode is a collection mode.
type Mode int

const (
	Search Mode = iota
	Favorites
	Following
	Followers
	Profile
)

func (m Mode) String() string {
	switch m {
	case Favorites:
		return "favorites"
	case Following:
		return "following"
	case Followers:
		return "followers"
	case Profile:
		return "profile"
	}
	return "search"
}

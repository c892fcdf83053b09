package cli

import (
	"strconv"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/internal/transport"
)

// Resolve validates o, resolves the proxy route and the user list, and
// builds the run configuration.
func Resolve(o RawOptions) (config.Config, error) {
	if err := Validate(o); err != nil {
		return config.Config{}, err
	}
	proxy, err := ResolveProxy(o)
	if err != nil {
		return config.Config{}, err
	}
	var userList string
	if config.Given(o.UserList) {
		if userList, err = ResolveUserList(o.UserList.Value()); err != nil {
			return config.Config{}, err
		}
	}
	return Build(o, proxy, userList), nil
}

// Build copies validated options into a Config. A non-empty userList
// replaces the username target.
func Build(o RawOptions, proxy transport.Config, userList string) config.Config {
	c := config.Config{
		Username:      o.Username,
		UserID:        o.UserID,
		Search:        o.Search,
		UserList:      o.UserList,
		Geo:           o.Geo,
		Near:          o.Near,
		Location:      o.Location,
		Lang:          o.Lang,
		To:            o.To,
		All:           o.All,
		Output:        o.Output,
		Elasticsearch: o.Elasticsearch,
		Database:      o.Database,
		StoreCSV:      o.CSV,
		StoreJSON:     o.JSON,
		Format:        o.Format,
		Timedelta:     atoiOpt(o.Timedelta),
		Year:          o.Year,
		Since:         o.Since,
		Until:         o.Until,
		Fruit:         o.Fruit,
		Verified:      o.Verified,
		ShowHashtags:  o.Hashtags,
		Limit:         atoiOpt(o.Limit),
		Count:         o.Count,
		Stats:         o.Stats,
		Followers:     o.Followers,
		Following:     o.Following,
		Favorites:     o.Favorites,
		Retweets:      o.Retweets,
		UserFull:      o.UserFull,
		ProfileFull:   o.ProfileFull,
		Essid:         o.Essid,
		Proxy:         proxy,
	}
	if userList != "" {
		c.Username = config.Some(userList)
		c.FromUserList = true
	}
	return c
}

// atoiOpt converts a validated numeric option; empty stays unset.
func atoiOpt(o config.Opt[string]) config.Opt[int] {
	if !config.Given(o) {
		return config.None[int]()
	}
	n, err := strconv.Atoi(o.Value())
	if err != nil {
		return config.None[int]()
	}
	return config.Some(n)
}

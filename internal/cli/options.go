package cli

import (
	"github.com/spf13/pflag"

	"github.com/anatolykoptev/go-twint/internal/config"
)

// RawOptions is the flat set of options as given on the command line.
// An option is set only when its flag was passed.
type RawOptions struct {
	Username      config.Opt[string]
	Search        config.Opt[string]
	Geo           config.Opt[string]
	Near          config.Opt[string]
	Location      config.Opt[bool]
	Lang          config.Opt[string]
	Output        config.Opt[string]
	Elasticsearch config.Opt[string]
	Timedelta     config.Opt[string]
	Year          config.Opt[string]
	Since         config.Opt[string]
	Until         config.Opt[string]
	Fruit         config.Opt[bool]
	Verified      config.Opt[bool]
	CSV           config.Opt[bool]
	JSON          config.Opt[bool]
	Hashtags      config.Opt[bool]
	UserID        config.Opt[string]
	Limit         config.Opt[string]
	Count         config.Opt[bool]
	Stats         config.Opt[bool]
	Database      config.Opt[string]
	To            config.Opt[string]
	All           config.Opt[string]
	Followers     config.Opt[bool]
	Following     config.Opt[bool]
	Favorites     config.Opt[bool]
	ProxyType     config.Opt[string]
	ProxyHost     config.Opt[string]
	ProxyPort     config.Opt[string]
	Essid         config.Opt[string]
	UserList      config.Opt[string]
	Retweets      config.Opt[bool]
	Format        config.Opt[string]
	UserFull      config.Opt[bool]
	ProfileFull   config.Opt[bool]
}

// registerFlags declares the collection flags on fs.
func registerFlags(fs *pflag.FlagSet) {
	fs.StringP("username", "u", "", "User's Tweets you want to scrape.")
	fs.StringP("search", "s", "", "Search for Tweets containing this word or phrase.")
	fs.StringP("geo", "g", "", "Search for geocoded Tweets.")
	fs.String("near", "", "Near a specified city.")
	fs.Bool("location", false, "Show user's location (Experimental).")
	fs.StringP("lang", "l", "", "Search for Tweets in a specific language.")
	fs.StringP("output", "o", "", "Save output to a file.")
	fs.String("elasticsearch", "", "Index to Elasticsearch.")
	fs.StringP("timedelta", "t", "", "Time interval in days for every search window.")
	fs.String("year", "", "Filter Tweets before specified year.")
	fs.String("since", "", "Filter Tweets sent since date (Example: 2017-12-27).")
	fs.String("until", "", "Filter Tweets sent until date (Example: 2017-12-27).")
	fs.Bool("fruit", false, "Display 'low-hanging-fruit' Tweets.")
	fs.Bool("verified", false, "Display Tweets only from verified users (Use with -s).")
	fs.Bool("csv", false, "Write as .csv file.")
	fs.Bool("json", false, "Write as .json file.")
	fs.Bool("hashtags", false, "Output hashtags in seperate column.")
	fs.String("userid", "", "Twitter user id.")
	fs.String("limit", "", "Number of Tweets to pull (Increments of 20).")
	fs.Bool("count", false, "Display number of Tweets scraped at the end of session.")
	fs.Bool("stats", false, "Show number of replies, retweets, and likes.")
	fs.String("database", "", "Store Tweets in a sqlite3 database.")
	fs.String("to", "", "Search Tweets to a user.")
	fs.String("all", "", "Search all Tweets associated with a user.")
	fs.Bool("followers", false, "Scrape a person's followers.")
	fs.Bool("following", false, "Scrape a person's follows.")
	fs.Bool("favorites", false, "Scrape Tweets a user has liked.")
	fs.String("proxy-type", "", "Socks5, HTTP, etc.")
	fs.String("proxy-host", "", "Proxy hostname or IP.")
	fs.String("proxy-port", "", "The port of the proxy server.")
	fs.String("essid", "", "Elasticsearch Session ID, use this to differentiate scraping sessions.")
	fs.String("userlist", "", "Userlist from list or file.")
	fs.Bool("retweets", false, "Include user's Retweets (Warning: limited).")
	fs.String("format", "", "Custom output format (See wiki for details).")
	fs.Bool("user-full", false, "Collect all user information (Use with followers or following only).")
	fs.Bool("profile-full", false, "Slow, but effective method of collecting a user's Tweets (Including Retweets).")
}

// optionsFromFlags reads RawOptions from a parsed flag set.
func optionsFromFlags(fs *pflag.FlagSet) RawOptions {
	str := func(name string) config.Opt[string] {
		if !fs.Changed(name) {
			return config.None[string]()
		}
		v, _ := fs.GetString(name)
		return config.Some(v)
	}
	flag := func(name string) config.Opt[bool] {
		if !fs.Changed(name) {
			return config.None[bool]()
		}
		v, _ := fs.GetBool(name)
		return config.Some(v)
	}

	return RawOptions{
		Username:      str("username"),
		Search:        str("search"),
		Geo:           str("geo"),
		Near:          str("near"),
		Location:      flag("location"),
		Lang:          str("lang"),
		Output:        str("output"),
		Elasticsearch: str("elasticsearch"),
		Timedelta:     str("timedelta"),
		Year:          str("year"),
		Since:         str("since"),
		Until:         str("until"),
		Fruit:         flag("fruit"),
		Verified:      flag("verified"),
		CSV:           flag("csv"),
		JSON:          flag("json"),
		Hashtags:      flag("hashtags"),
		UserID:        str("userid"),
		Limit:         str("limit"),
		Count:         flag("count"),
		Stats:         flag("stats"),
		Database:      str("database"),
		To:            str("to"),
		All:           str("all"),
		Followers:     flag("followers"),
		Following:     flag("following"),
		Favorites:     flag("favorites"),
		ProxyType:     str("proxy-type"),
		ProxyHost:     str("proxy-host"),
		ProxyPort:     str("proxy-port"),
		Essid:         str("essid"),
		UserList:      str("userlist"),
		Retweets:      flag("retweets"),
		Format:        str("format"),
		UserFull:      flag("user-full"),
		ProfileFull:   flag("profile-full"),
	}
}

package run

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-twint/internal/config"
)

// fruitKeywords is the --fruit filter: tweets likely to leak contact details.
const fruitKeywords = `("myspace.com" OR "last.fm" OR "mail" OR "email" OR "gmail" OR "e-mail" OR "phone" OR "call me" OR "text me" OR "keybase")`

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// userListTerms decodes the from:/OR markup of a user-list fragment and
// leaves the identifiers as given.
var userListTerms = strings.NewReplacer("from%3A", "from:", "%20OR%20", " OR ")

// BuildQuery returns the raw search query for cfg.
func BuildQuery(cfg config.Config) (string, error) {
	var q []string
	add := func(s string) { q = append(q, s) }

	if name := cfg.Username.Value(); name != "" {
		if cfg.FromUserList {
			add("(" + userListTerms.Replace(name) + ")")
		} else {
			add("from:" + strings.TrimPrefix(name, "@"))
		}
	}
	if config.Given(cfg.Geo) {
		add("geocode:" + cfg.Geo.Value())
	}
	if config.Given(cfg.Search) {
		add(cfg.Search.Value())
	}
	if config.Given(cfg.Year) {
		if _, err := strconv.Atoi(cfg.Year.Value()); err != nil {
			return "", fmt.Errorf("invalid --year %q", cfg.Year.Value())
		}
		add("until:" + cfg.Year.Value() + "-01-01")
	}
	for _, b := range []struct {
		op  string
		opt config.Opt[string]
	}{{"since", cfg.Since}, {"until", cfg.Until}} {
		if !config.Given(b.opt) {
			continue
		}
		term, err := dateTerm(b.op, b.opt.Value())
		if err != nil {
			return "", err
		}
		add(term)
	}
	if config.On(cfg.Fruit) {
		add(fruitKeywords)
	}
	if config.On(cfg.Verified) {
		add("filter:verified")
	}
	if config.Given(cfg.To) {
		add("to:" + strings.TrimPrefix(cfg.To.Value(), "@"))
	}
	if config.Given(cfg.All) {
		a := strings.TrimPrefix(cfg.All.Value(), "@")
		add("(to:" + a + " OR from:" + a + " OR @" + a + ")")
	}
	if config.Given(cfg.Near) {
		add(`near:"` + cfg.Near.Value() + `"`)
	}
	if config.Given(cfg.Lang) {
		add("lang:" + cfg.Lang.Value())
	}
	return strings.Join(q, " "), nil
}

// dateTerm renders a since/until bound. Dates use the day operator, full
// timestamps the _time operator with a unix value.
func dateTerm(op, v string) (string, error) {
	t, layout, err := parseDate(v)
	if err != nil {
		return "", fmt.Errorf("invalid --%s %q: want YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\"", op, v)
	}
	if layout == dateLayout {
		return op + ":" + t.Format(dateLayout), nil
	}
	return op + "_time:" + strconv.FormatInt(t.Unix(), 10), nil
}

func parseDate(v string) (time.Time, string, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{dateLayout, dateTimeLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unrecognised date %q", v)
}

// window is one since/until slice of a timedelta walk.
type window struct {
	since, until string
}

// windows splits [since, until) into days-long slices, newest first. The
// outer bounds are returned as given; inner bounds carry a time of day when
// either outer bound does. An empty range yields the single unsliced window.
func windows(since, until string, days int) ([]window, error) {
	from, sinceLayout, err := parseDate(since)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q", since)
	}
	to, untilLayout, err := parseDate(until)
	if err != nil {
		return nil, fmt.Errorf("invalid --until %q", until)
	}
	if days <= 0 {
		return nil, fmt.Errorf("timedelta must be positive, got %d", days)
	}
	if !to.After(from) {
		return []window{{since: since, until: until}}, nil
	}

	inner := dateLayout
	if sinceLayout == dateTimeLayout || untilLayout == dateTimeLayout {
		inner = dateTimeLayout
	}
	bound := func(t time.Time) string {
		switch {
		case t.Equal(from):
			return since
		case t.Equal(to):
			return until
		}
		return t.Format(inner)
	}

	var out []window
	for end := to; end.After(from); {
		start := end.AddDate(0, 0, -days)
		if start.Before(from) {
			start = from
		}
		out = append(out, window{since: bound(start), until: bound(end)})
		end = start
	}
	return out, nil
}

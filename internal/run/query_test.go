package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-twint/internal/config"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "username",
			cfg:  config.Config{Username: config.Some("@alice")},
			want: "from:alice",
		},
		{
			name: "user list fragment",
			cfg:  config.Config{Username: config.Some("from%3Aalice%20OR%20from%3Abob"), FromUserList: true},
			want: "(from:alice OR from:bob)",
		},
		{
			name: "search with filters",
			cfg: config.Config{
				Search:   config.Some("golang"),
				Geo:      config.Some("48.8,2.3,1km"),
				Year:     config.Some("2020"),
				Since:    config.Some("2019-01-01"),
				Verified: config.Some(true),
				To:       config.Some("bob"),
				Near:     config.Some("Paris"),
				Lang:     config.Some("fr"),
			},
			want: `geocode:48.8,2.3,1km golang until:2020-01-01 since:2019-01-01 filter:verified to:bob near:"Paris" lang:fr`,
		},
		{
			name: "user list keeps literal percent",
			cfg:  config.Config{Username: config.Some("from%3A100%%20OR%20from%3Abob"), FromUserList: true},
			want: "(from:100% OR from:bob)",
		},
		{
			name: "all",
			cfg:  config.Config{All: config.Some("carol")},
			want: "(to:carol OR from:carol OR @carol)",
		},
		{
			name: "timestamp bound",
			cfg:  config.Config{Search: config.Some("x"), Until: config.Some("2020-01-02 00:00:00")},
			want: "x until_time:1577923200",
		},
		{
			name: "fruit",
			cfg:  config.Config{Username: config.Some("dave"), Fruit: config.Some(true)},
			want: "from:dave " + fruitKeywords,
		},
		{
			name: "empty values are skipped",
			cfg:  config.Config{Search: config.Some("x"), Lang: config.Some(""), Near: config.Some("")},
			want: "x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildQuery(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildQuery_Errors(t *testing.T) {
	_, err := BuildQuery(config.Config{Since: config.Some("last week")})
	assert.ErrorContains(t, err, "invalid --since")

	_, err = BuildQuery(config.Config{Year: config.Some("twenty")})
	assert.ErrorContains(t, err, "invalid --year")
}

func TestWindows(t *testing.T) {
	got, err := windows("2020-01-01", "2020-01-08", 3)
	require.NoError(t, err)
	assert.Equal(t, []window{
		{since: "2020-01-05", until: "2020-01-08"},
		{since: "2020-01-02", until: "2020-01-05"},
		{since: "2020-01-01", until: "2020-01-02"},
	}, got)

	got, err = windows("2020-01-08", "2020-01-01", 3)
	require.NoError(t, err)
	assert.Equal(t, []window{{since: "2020-01-08", until: "2020-01-01"}}, got)

	got, err = windows("2020-01-01", "2020-01-01", 1)
	require.NoError(t, err)
	assert.Equal(t, []window{{since: "2020-01-01", until: "2020-01-01"}}, got)

	got, err = windows("2020-01-01", "2020-01-03 18:30:00", 1)
	require.NoError(t, err)
	assert.Equal(t, []window{
		{since: "2020-01-02 18:30:00", until: "2020-01-03 18:30:00"},
		{since: "2020-01-01 18:30:00", until: "2020-01-02 18:30:00"},
		{since: "2020-01-01", until: "2020-01-01 18:30:00"},
	}, got)

	_, err = windows("2020-01-01", "2020-01-08", 0)
	assert.Error(t, err)
	_, err = windows("soon", "2020-01-08", 1)
	assert.ErrorContains(t, err, "invalid --since")
}

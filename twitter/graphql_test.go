package twitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationURL(t *testing.T) {
	u, err := operationURL("SearchTimeline")
	require.NoError(t, err)
	assert.Equal(t, graphqlBase+"/"+operationIDs["SearchTimeline"]+"/SearchTimeline", u)

	_, err = operationURL("CreateTweet")
	assert.ErrorContains(t, err, "unknown graphql operation")
}

func TestGraphQLURL(t *testing.T) {
	u := graphQLURL("https://x.test/op", map[string]any{"rawQuery": "from:a b"}, nil)

	assert.True(t, strings.HasPrefix(u, "https://x.test/op?variables=%7B%22rawQuery%22%3A%22from%3Aa%20b%22%7D&features=%7B"))
	assert.NotContains(t, u, "fieldToggles")
	assert.NotContains(t, u, " ")

	u = graphQLURL("https://x.test/op", map[string]any{}, map[string]any{"withArticleRichContentState": false})
	assert.True(t, strings.HasSuffix(u, "&fieldToggles=%7B%22withArticleRichContentState%22%3Afalse%7D"))
}

func TestRequiresAuth(t *testing.T) {
	for _, op := range []string{"Followers", "Following", "Likes"} {
		assert.True(t, requiresAuth(op), op)
	}
	assert.False(t, requiresAuth("SearchTimeline"))
	assert.False(t, requiresAuth("UserTweets"))
}

func TestIsProxyError(t *testing.T) {
	assert.False(t, isProxyError(nil))
	assert.False(t, isProxyError(errString("read: reset by peer")))
	assert.True(t, isProxyError(errString("socks connect: connection refused")))
}

type errString string

func (e errString) Error() string { return string(e) }

package twitter

import (
	"crypto/rand"
	"encoding/hex"
	"maps"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// headerOrder keeps the request header sequence stable across the TLS
// fingerprint of every client.
var headerOrder = []string{
	"authorization",
	"content-type",
	"x-guest-token",
	"x-csrf-token",
	"x-twitter-auth-type",
	"x-twitter-active-user",
	"x-twitter-client-language",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"cookie",
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
	"referer",
	"origin",
}

// webHeaders is the header set every x.com web request carries.
func webHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = fallbackUserAgent
	}
	return map[string]string{
		"authorization":             "Bearer " + webBearer,
		"content-type":              "application/json",
		"x-twitter-active-user":     "yes",
		"x-twitter-client-language": "en",
		"user-agent":                userAgent,
		"accept":                    "*/*",
		"accept-language":           "en-US,en;q=0.9",
		"accept-encoding":           "gzip, deflate, br",
		"referer":                   "https://twitter.com/",
		"origin":                    "https://twitter.com",
	}
}

// sessionHeaders authenticate a GraphQL request as a logged-in account.
func sessionHeaders(authToken, ct0, userAgent string) map[string]string {
	h := webHeaders(userAgent)
	h["x-csrf-token"] = ct0
	h["x-twitter-auth-type"] = "OAuth2Session"
	h["cookie"] = "auth_token=" + authToken + "; ct0=" + ct0
	h["sec-fetch-dest"] = "empty"
	h["sec-fetch-mode"] = "cors"
	h["sec-fetch-site"] = "same-origin"
	maps.Copy(h, stealth.ClientHintsHeaders(h["user-agent"]))
	return h
}

// guestTokenHeaders identify an anonymous request. An empty token is left out,
// which is what guest/activate expects.
func guestTokenHeaders(guestToken string) map[string]string {
	h := webHeaders("")
	if guestToken != "" {
		h["x-guest-token"] = guestToken
	}
	return h
}

// newCT0 returns a random 32-byte hex CSRF token.
func newCT0() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// responseCookie finds a non-empty cookie value in the set-cookie header of
// a response. Several cookies may share the header.
func responseCookie(headers map[string]string, name string) string {
	prefix := name + "="
	for _, field := range strings.FieldsFunc(headers["set-cookie"], func(r rune) bool {
		return r == ';' || r == ',' || r == '\n'
	}) {
		if v, ok := strings.CutPrefix(strings.TrimSpace(field), prefix); ok && v != "" {
			return v
		}
	}
	return ""
}

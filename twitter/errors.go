package twitter

import (
	"encoding/json"
	"strconv"
	"time"
)

// errorClass groups Twitter API error codes by how the client reacts to them.
type errorClass int

const (
	errNone errorClass = iota
	errBanned
	errSuspended
	errLocked
	errCSRF
	errAuthExpired
	errBlocked
	errNotAuthorized
	errInternal
)

var errorCodes = map[int]errorClass{
	88:  errBanned,
	64:  errSuspended,
	326: errLocked,
	353: errCSRF,
	32:  errAuthExpired,
	161: errBlocked,
	179: errNotAuthorized,
	219: errNotAuthorized,
	131: errInternal,
}

var errorClassNames = [...]string{
	errNone:          "none",
	errBanned:        "banned",
	errSuspended:     "suspended",
	errLocked:        "locked",
	errCSRF:          "csrf",
	errAuthExpired:   "auth_expired",
	errBlocked:       "blocked",
	errNotAuthorized: "not_authorized",
	errInternal:      "internal",
}

func (c errorClass) String() string {
	if c < 0 || int(c) >= len(errorClassNames) {
		return "class(" + strconv.Itoa(int(c)) + ")"
	}
	return errorClassNames[c]
}

// classifyError returns the class of the first known error code in body.
func classifyError(body []byte) errorClass {
	var resp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &resp) != nil {
		return errNone
	}
	for _, e := range resp.Errors {
		if class, ok := errorCodes[e.Code]; ok {
			return class
		}
	}
	return errNone
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp, falling
// back to 15 minutes from now.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

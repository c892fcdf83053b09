// Package captcha solves the Arkose challenges Twitter raises during login.
package captcha

import "context"

// Solver abstracts CAPTCHA solving services.
type Solver interface {
	// Solve returns a solution token for the Arkose public key siteKey
	// presented on pageURL.
	Solve(ctx context.Context, siteKey, pageURL string) (token string, err error)

	// Balance returns the account balance in USD.
	Balance(ctx context.Context) (float64, error)
}

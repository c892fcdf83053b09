package cli

import (
	"strconv"

	"github.com/anatolykoptev/go-twint/internal/config"
)

// Validate checks option combinations in a fixed order and returns the
// first violation as a *ValidationError.
func Validate(o RawOptions) error {
	if o.Username.IsSet() {
		if config.On(o.Verified) {
			return contradicting("Please use --verified in combination with -s.")
		}
		if config.Given(o.UserID) {
			return contradicting("--userid and -u cannot be used together.")
		}
	}

	if !o.Output.IsSet() {
		if config.On(o.CSV) {
			return invalid("Please specify an output file (Example: -o file.csv).")
		} else if config.On(o.JSON) {
			return invalid("Please specify an output file (Example: -o file.json).")
		}
	}

	if !config.On(o.Followers) && !config.On(o.Following) && config.On(o.UserFull) {
		return invalid("Please use --user-full with --followers or --following.")
	}

	if _, err := ResolveProxy(o); err != nil {
		return err
	}

	if config.Given(o.Limit) {
		if n, err := strconv.Atoi(o.Limit.Value()); err != nil || n < 0 {
			return invalid("Please specify --limit as a number.")
		}
	}
	if config.Given(o.Timedelta) {
		if n, err := strconv.Atoi(o.Timedelta.Value()); err != nil || n < 1 {
			return invalid("Please specify --timedelta as a number of days.")
		}
	}
	return nil
}

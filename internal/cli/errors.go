package cli

// Validation error categories.
const (
	CategoryContradicting = "Contradicting Args"
	CategoryError         = "Error"
)

// ValidationError rejects an option combination. It is terminal: nothing
// runs after it.
type ValidationError struct {
	Category string
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Category + ": " + e.Message
}

func contradicting(msg string) error {
	return &ValidationError{Category: CategoryContradicting, Message: msg}
}

func invalid(msg string) error {
	return &ValidationError{Category: CategoryError, Message: msg}
}

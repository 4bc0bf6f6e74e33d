package scoring

import "fmt"

// MalformedInputError is returned when an entire raw history is unusable
// (empty or every record invalid). Partial bad data is never fatal: it is
// excluded during normalization and counted on the WalletHistory.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// ConfigurationError is returned at configuration load when indicator
// weights do not sum to 1.0 or profile bands overlap or are unordered.
// It is never raised at scoring time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid scoring configuration: %s", e.Reason)
}

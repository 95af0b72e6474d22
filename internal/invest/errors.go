package invest

import (
	"errors"
	"fmt"
)

// ErrNoTinkoffToken is returned when an operation needs the user's invest
// API token and none is stored.
var ErrNoTinkoffToken = errors.New("user has no tinkoff api token")

// FormatError reports a well-formed remote response missing an expected field.
type FormatError struct {
	Field string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid api response format: missing %q", e.Field)
}

// ValidationError reports a payload item missing a required identifier.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("position payload missing required field %q", e.Field)
}

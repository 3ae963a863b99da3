package discord

import (
	"errors"
	"fmt"
)

// ErrEmptyUserID is returned when the profile endpoint answers without a user ID.
var ErrEmptyUserID = errors.New("discord returned a user without an id")

// APIError is a non-200 answer from the Discord API.
type APIError struct {
	Status int
	Path   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("discord api returned status %d for %s", e.Status, e.Path)
}

// isStatus reports whether err is an APIError with the given status code.
func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

package datasource

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a malformed id or user name, detected
	// before any network call.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyResponse indicates the server returned an empty body where
	// content was expected.
	ErrEmptyResponse = errors.New("empty response body")
)

// ParseError indicates a structurally malformed server response. No partial
// entity is ever returned alongside one.
type ParseError struct {
	Entity string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Entity, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AuthError carries a server-reported login failure message.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "login rejected: " + e.Message
}

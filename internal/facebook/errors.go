package facebook

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPlatform matches every error returned by the Graph API client.
	ErrPlatform = errors.New("facebook platform error")
	// ErrTokenExpired matches API errors reporting an expired access token.
	ErrTokenExpired = errors.New("facebook access token has expired")
)

const expiredMarker = "has expired"

// Error is an error object returned by the Graph API.
type Error struct {
	Type       string
	Message    string
	Code       int
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("API Exception: %s: %s", e.Type, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrPlatform:
		return true
	case ErrTokenExpired:
		return strings.Contains(e.Message, expiredMarker)
	}
	return false
}

// IsTokenExpired reports whether err carries an expired-token API error.
func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

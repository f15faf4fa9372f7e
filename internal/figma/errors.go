package figma

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTimeout reports that an upstream call exceeded its deadline after the
// single timeout retry allowed by the client.
var ErrTimeout = errors.New("figma: request timed out")

// APIError is a non-2xx response from the Figma API.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("figma: %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("figma: %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
}

func newAPIError(status int, path string, body []byte) *APIError {
	var payload struct {
		Err     string `json:"err"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Err
		if msg == "" {
			msg = payload.Message
		}
	}
	return &APIError{StatusCode: status, Path: path, Message: msg}
}

// IsAuthDenied reports whether err is a credential rejection (401 or 403).
func IsAuthDenied(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && (ae.StatusCode == 401 || ae.StatusCode == 403)
}

// IsNotFound reports whether err is a missing file or node (404).
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == 404
}

// IsRateLimited reports whether err is a 429 that survived every retry.
func IsRateLimited(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == 429
}

// IsTimeout reports whether err is an exhausted request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

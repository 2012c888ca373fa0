package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoToken is returned by calls that need a stored token when none exists.
var ErrNoToken = errors.New("client: no stored token")

// APIError is a non-2xx response decoded from the server error body.
type APIError struct {
	Status    int
	Message   string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields"`
	ExpiredAt string            `json:"expiredAt"`
	Now       string            `json:"now"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, http.StatusText(e.Status), e.Message, e.Code)
	}
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

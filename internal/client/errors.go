// ABOUTME: Error types returned by the exam platform API client
// ABOUTME: Separates rejected credentials from expired sessions and other API failures

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/waynezhang680/examctl/internal/models"
)

var (
	// ErrUnauthorized matches any API response with status 401.
	// By the time a caller sees it the session has already been evicted.
	ErrUnauthorized = errors.New("session expired or invalid")

	// ErrAuthentication matches rejected login or registration attempts
	ErrAuthentication = errors.New("authentication failed")
)

// APIError is a non-2xx response from the platform API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Is reports ErrUnauthorized for 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// AuthenticationError is returned when the service rejects login or registration
type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", ErrAuthentication, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", ErrAuthentication, e.Message)
}

// Is reports ErrAuthentication
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// IsUnauthorized reports whether err came from a 401 response
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// readErrorMessage extracts the error text from an API error body.
// Falls back to the plain body for non-JSON responses such as http.Error output.
func readErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		return errResp.Error
	}
	return string(trimNewline(body))
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

package sheets

import (
	"fmt"
	"strings"
)

// StatusError is returned when the record API answers with an unexpected status.
type StatusError struct {
	Status int
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("sheets %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("sheets %s: status %d: %s", e.URL, e.Status, body)
}

// StatusCode exposes the remote status for error dumps.
func (e *StatusError) StatusCode() int { return e.Status }

// Endpoint exposes the remote URL for error dumps.
func (e *StatusError) Endpoint() string { return e.URL }

package instance

import (
	"os"
	"strings"
)

// GetID names the running process for logs: the platform dyno, then the host name.
func GetID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return "local"
}

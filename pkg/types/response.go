package types

import "github.com/lemonhouse/storefront/pkg/enums"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Notice is a non-fatal message the UI should surface next to an otherwise successful result.
type Notice struct {
	Level   enums.NoticeLevel `json:"level"`
	Message string            `json:"message"`
}

// Warning builds a warning-level notice.
func Warning(message string) *Notice {
	return &Notice{Level: enums.NoticeLevelWarning, Message: message}
}

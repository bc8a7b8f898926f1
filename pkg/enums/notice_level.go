package enums

// NoticeLevel grades a non-fatal message returned alongside a successful response.
type NoticeLevel string

const (
	NoticeLevelInfo    NoticeLevel = "info"
	NoticeLevelWarning NoticeLevel = "warning"
)

package enums

import "fmt"

// LineField names the editable field of a draft line item.
type LineField string

const (
	LineFieldGrade    LineField = "grade"
	LineFieldQuantity LineField = "quantity"
)

var validLineFields = []LineField{
	LineFieldGrade,
	LineFieldQuantity,
}

// IsValid reports whether the value names an editable line field.
func (f LineField) IsValid() bool {
	for _, candidate := range validLineFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseLineField converts the raw string to LineField.
func ParseLineField(value string) (LineField, error) {
	for _, candidate := range validLineFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line field %q", value)
}

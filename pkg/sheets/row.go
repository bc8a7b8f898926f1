package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one spreadsheet row keyed by column name.
type Row map[string]any

// String returns the column as trimmed text. Numbers are rendered without exponent.
func (r Row) String(column string) string {
	value, ok := r[column]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Decimal parses the column as a decimal value. Currency symbols and thousands
// separators are stripped before parsing.
func (r Row) Decimal(column string) (decimal.Decimal, error) {
	raw := r.String(column)
	cleaned := strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("column %s is empty", column)
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", column, err)
	}
	return value, nil
}

// Has reports whether the column is present with a non-blank value.
func (r Row) Has(column string) bool {
	return r.String(column) != ""
}

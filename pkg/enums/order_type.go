package enums

import (
	"fmt"
	"strings"
)

// OrderType records the channel an order was placed through. Values are stored verbatim in the Orders sheet.
type OrderType string

const (
	OrderTypeWebsite  OrderType = "Website"
	OrderTypeWhatsApp OrderType = "WhatsApp"
)

var validOrderTypes = []OrderType{
	OrderTypeWebsite,
	OrderTypeWhatsApp,
}

// IsValid reports whether the value matches a known order channel.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderType converts the raw string to OrderType, ignoring case.
// An empty value defaults to the website channel.
func ParseOrderType(value string) (OrderType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OrderTypeWebsite, nil
	}
	for _, candidate := range validOrderTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}

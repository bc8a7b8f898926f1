package orders

import (
	"strings"
	"time"

	"github.com/lemonhouse/storefront/pkg/enums"
	"github.com/lemonhouse/storefront/pkg/sheets"
	"github.com/shopspring/decimal"
)

// TimestampLayout is the stored timestamp format, day first with a lowercase meridiem.
const TimestampLayout = "02/01/2006, 3:04:05 pm"

// parseLayouts accepts stored timestamps with or without zero padding.
var parseLayouts = []string{
	"2/1/2006, 3:04:05 pm",
	"2/1/2006, 15:04:05",
	"2/1/2006",
}

const groupDateLayout = "02/01/2006"

// Order is an immutable placed order as stored in the Orders collection.
type Order struct {
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Pincode      string          `json:"pincode"`
	OrderDetails string          `json:"orderDetails"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Timestamp    string          `json:"timestamp"`
	OrderType    enums.OrderType `json:"orderType"`
}

// DateGroup lists the orders placed on one calendar date.
type DateGroup struct {
	Date   string  `json:"date"`
	Orders []Order `json:"orders"`
}

const (
	colName         = "Name"
	colPhone        = "Phone"
	colAddress      = "Address"
	colPincode      = "Pincode"
	colOrderDetails = "OrderDetails"
	colTotalAmount  = "TotalAmount"
	colTimestamp    = "Timestamp"
	colOrderType    = "OrderType"
)

// FormatTimestamp renders t in loc using the stored layout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GroupByDate buckets orders by calendar date, keeping the order in which dates first appear.
// Timestamps that cannot be parsed are grouped by the text before their first comma.
func GroupByDate(list []Order, loc *time.Location) []DateGroup {
	groups := []DateGroup{}
	index := map[string]int{}
	for _, order := range list {
		key := dateKey(order.Timestamp, loc)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, DateGroup{Date: key})
		}
		groups[pos].Orders = append(groups[pos].Orders, order)
	}
	return groups
}

func dateKey(timestamp string, loc *time.Location) string {
	if t, ok := ParseTimestamp(timestamp, loc); ok {
		return t.Format(groupDateLayout)
	}
	head, _, _ := strings.Cut(timestamp, ",")
	return strings.TrimSpace(head)
}

func toRow(o Order) sheets.Row {
	return sheets.Row{
		colName:         o.Name,
		colPhone:        o.Phone,
		colAddress:      o.Address,
		colPincode:      o.Pincode,
		colOrderDetails: o.OrderDetails,
		colTotalAmount:  o.TotalAmount.StringFixed(2),
		colTimestamp:    o.Timestamp,
		colOrderType:    string(o.OrderType),
	}
}

func fromRow(row sheets.Row) (Order, error) {
	total, err := row.Decimal(colTotalAmount)
	if err != nil {
		return Order{}, err
	}
	orderType, err := enums.ParseOrderType(row.String(colOrderType))
	if err != nil {
		return Order{}, err
	}
	return Order{
		Name:         row.String(colName),
		Phone:        row.String(colPhone),
		Address:      row.String(colAddress),
		Pincode:      row.String(colPincode),
		OrderDetails: row.String(colOrderDetails),
		TotalAmount:  total,
		Timestamp:    row.String(colTimestamp),
		OrderType:    orderType,
	}, nil
}

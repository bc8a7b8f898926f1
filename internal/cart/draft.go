package cart

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lemonhouse/storefront/internal/catalog"
	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/pkg/enums"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	msgDuplicateGrade = "this variety is already selected"
	msgLoginToOrder   = "please log in to place an order"
	msgZeroTotal      = "order total must be greater than zero"
	currencySymbol    = "₹"
	quantityUnit      = "kg"
)

var quantityStep = decimal.NewFromFloat(0.5)

// LineItem is one row of the order draft. An empty grade means no variety is chosen yet.
type LineItem struct {
	Grade    string          `json:"grade"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Draft is the ordered list of lines a customer is building. No two lines share a non-empty grade.
type Draft struct {
	Lines []LineItem `json:"lines"`
}

// NewDraft returns a draft with one blank line of quantity 1.
func NewDraft() Draft {
	return Draft{Lines: []LineItem{{Grade: "", Quantity: decimal.NewFromInt(1)}}}
}

func (d Draft) clone() Draft {
	lines := make([]LineItem, len(d.Lines))
	copy(lines, d.Lines)
	return Draft{Lines: lines}
}

// AddLine appends a blank line.
func AddLine(d Draft) Draft {
	next := d.clone()
	next.Lines = append(next.Lines, LineItem{Quantity: decimal.NewFromInt(1)})
	return next
}

// RemoveLine drops the line at index. Removing the last remaining line resets the draft.
func RemoveLine(d Draft, index int) (Draft, error) {
	if err := checkIndex(d, index); err != nil {
		return d, err
	}
	if len(d.Lines) == 1 {
		return NewDraft(), nil
	}
	next := Draft{Lines: make([]LineItem, 0, len(d.Lines)-1)}
	next.Lines = append(next.Lines, d.Lines[:index]...)
	next.Lines = append(next.Lines, d.Lines[index+1:]...)
	return next, nil
}

// SetLineItem edits one field of the line at index. Choosing a grade already used by another
// line leaves the draft unchanged and returns a warning notice instead of an error.
func SetLineItem(d Draft, index int, field enums.LineField, value string) (Draft, *types.Notice, error) {
	if err := checkIndex(d, index); err != nil {
		return d, nil, err
	}

	next := d.clone()
	switch field {
	case enums.LineFieldGrade:
		grade := strings.TrimSpace(value)
		if grade != "" {
			for i, line := range d.Lines {
				if i != index && line.Grade == grade {
					return d, types.Warning(msgDuplicateGrade), nil
				}
			}
		}
		next.Lines[index].Grade = grade
	case enums.LineFieldQuantity:
		qty, err := parseQuantity(value)
		if err != nil {
			return d, nil, err
		}
		next.Lines[index].Quantity = qty
	default:
		return d, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown line field %q", field))
	}
	return next, nil, nil
}

// ComputeTotal sums price times quantity for every line whose grade is in the catalog.
// Unknown grades contribute zero.
func ComputeTotal(d Draft, products []catalog.Product) decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		if line.Grade == "" || !line.Quantity.IsPositive() {
			continue
		}
		product, ok := catalog.Lookup(products, line.Grade)
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(line.Quantity))
	}
	return total
}

// Summary renders the chosen lines as numbered text with per-item subtotals.
func Summary(d Draft, products []catalog.Product) string {
	var b strings.Builder
	n := 0
	for _, line := range d.Lines {
		if line.Grade == "" || !line.Quantity.IsPositive() {
			continue
		}
		price := decimal.Zero
		if product, ok := catalog.Lookup(products, line.Grade); ok {
			price = product.Price
		}
		n++
		if n > 1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s - %s %s @ %s/%s = %s",
			n, line.Grade, line.Quantity.String(), quantityUnit,
			formatMoney(price), quantityUnit, formatMoney(price.Mul(line.Quantity)))
	}
	return b.String()
}

// CheckSubmit reports every reason the draft cannot be submitted, in display order.
func CheckSubmit(d Draft, state session.State, total decimal.Decimal) error {
	var err error
	if _, ok := state.User(); !ok {
		err = multierr.Append(err, errors.New(msgLoginToOrder))
	}
	for i, line := range d.Lines {
		if line.Grade == "" {
			err = multierr.Append(err, fmt.Errorf("please select a variety for item %d", i+1))
		}
		if !line.Quantity.IsPositive() {
			err = multierr.Append(err, fmt.Errorf("please enter a quantity for item %d", i+1))
		}
	}
	if !total.IsPositive() {
		err = multierr.Append(err, errors.New(msgZeroTotal))
	}
	if err == nil {
		return nil
	}

	violations := multierr.Errors(err)
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, messages[0]).
		WithDetails(map[string]any{"violations": messages})
}

// BuildExternalMessageLink builds a chat deep link pre-filled with the customer and the order.
func BuildExternalMessageLink(baseURL, number string, d Draft, total decimal.Decimal, state session.State, products []catalog.Product) (string, error) {
	number = digitsOnly(number)
	if number == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "order messaging number not configured")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "order messaging url not configured")
	}

	var b strings.Builder
	b.WriteString("Hello, I would like to order lemons.\n")
	if user, ok := state.User(); ok {
		fmt.Fprintf(&b, "\nName: %s\nPhone: %s\nAddress: %s\nPincode: %s\n", user.Name, user.Phone, user.Address, user.Pincode)
	}
	if summary := Summary(d, products); summary != "" {
		b.WriteString("\nOrder:\n")
		b.WriteString(summary)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nTotal: %s", formatMoney(total))

	text := strings.ReplaceAll(url.QueryEscape(b.String()), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", base, number, text), nil
}

func parseQuantity(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	qty, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be a number")
	}
	if qty.LessThan(quantityStep) || !qty.Mod(quantityStep).IsZero() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 0.5 kg in steps of 0.5")
	}
	return qty, nil
}

func checkIndex(d Draft, index int) error {
	if index < 0 || index >= len(d.Lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d does not exist", index+1))
	}
	return nil
}

func formatMoney(amount decimal.Decimal) string {
	return currencySymbol + amount.StringFixed(2)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

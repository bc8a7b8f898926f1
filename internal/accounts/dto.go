package accounts

import (
	"strings"

	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

// SignUpRequest carries the new account fields.
type SignUpRequest struct {
	Name    string `json:"name" validate:"notblank"`
	Phone   string `json:"phone" validate:"phone"`
	Address string `json:"address" validate:"notblank"`
	Pincode string `json:"pincode" validate:"pincode"`
}

// LoginRequest identifies an existing account by phone and name.
type LoginRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Phone string `json:"phone" validate:"phone"`
}

const (
	colName    = "Name"
	colPhone   = "Phone"
	colAddress = "Address"
	colPincode = "Pincode"
)

func (r SignUpRequest) normalized() SignUpRequest {
	return SignUpRequest{
		Name:    strings.TrimSpace(r.Name),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
		Pincode: strings.TrimSpace(r.Pincode),
	}
}

func (r SignUpRequest) user() session.User {
	return session.User{Name: r.Name, Phone: r.Phone, Address: r.Address, Pincode: r.Pincode}
}

func toRow(u session.User) sheets.Row {
	return sheets.Row{
		colName:    u.Name,
		colPhone:   u.Phone,
		colAddress: u.Address,
		colPincode: u.Pincode,
	}
}

// fromRow parses a Users row. Rows without a phone are not accounts.
func fromRow(row sheets.Row) (session.User, bool) {
	user := session.User{
		Name:    row.String(colName),
		Phone:   row.String(colPhone),
		Address: row.String(colAddress),
		Pincode: row.String(colPincode),
	}
	if user.Phone == "" {
		return session.User{}, false
	}
	return user, true
}

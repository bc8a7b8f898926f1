package addresses

import (
	"strings"

	"github.com/lemonhouse/storefront/pkg/sheets"
)

// Address is a delivery address saved by a customer.
type Address struct {
	ID          string `json:"id"`
	UserPhone   string `json:"userPhone"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	HouseNumber string `json:"houseNumber"`
	Street      string `json:"street"`
	Landmark    string `json:"landmark,omitempty"`
	Pincode     string `json:"pincode"`
	City        string `json:"city"`
	State       string `json:"state"`
}

// Request carries the editable address fields.
type Request struct {
	Name        string `json:"name" validate:"notblank"`
	Phone       string `json:"phone" validate:"phone"`
	HouseNumber string `json:"houseNumber" validate:"notblank"`
	Street      string `json:"street" validate:"notblank"`
	Landmark    string `json:"landmark"`
	Pincode     string `json:"pincode" validate:"pincode"`
	City        string `json:"city" validate:"notblank"`
	State       string `json:"state" validate:"notblank"`
}

const (
	colID          = "id"
	colUserPhone   = "UserPhone"
	colName        = "Name"
	colPhone       = "Phone"
	colHouseNumber = "HouseNumber"
	colStreet      = "Street"
	colLandmark    = "Landmark"
	colPincode     = "Pincode"
	colCity        = "City"
	colState       = "State"
)

func (r Request) normalized() Request {
	return Request{
		Name:        strings.TrimSpace(r.Name),
		Phone:       strings.TrimSpace(r.Phone),
		HouseNumber: strings.TrimSpace(r.HouseNumber),
		Street:      strings.TrimSpace(r.Street),
		Landmark:    strings.TrimSpace(r.Landmark),
		Pincode:     strings.TrimSpace(r.Pincode),
		City:        strings.TrimSpace(r.City),
		State:       strings.TrimSpace(r.State),
	}
}

func (r Request) row(owner string) sheets.Row {
	return sheets.Row{
		colUserPhone:   owner,
		colName:        r.Name,
		colPhone:       r.Phone,
		colHouseNumber: r.HouseNumber,
		colStreet:      r.Street,
		colLandmark:    r.Landmark,
		colPincode:     r.Pincode,
		colCity:        r.City,
		colState:       r.State,
	}
}

func fromRow(row sheets.Row) Address {
	return Address{
		ID:          row.String(colID),
		UserPhone:   row.String(colUserPhone),
		Name:        row.String(colName),
		Phone:       row.String(colPhone),
		HouseNumber: row.String(colHouseNumber),
		Street:      row.String(colStreet),
		Landmark:    row.String(colLandmark),
		Pincode:     row.String(colPincode),
		City:        row.String(colCity),
		State:       row.String(colState),
	}
}

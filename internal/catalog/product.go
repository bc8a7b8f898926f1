package catalog

import (
	"strings"

	"github.com/lemonhouse/storefront/pkg/sheets"
	"github.com/shopspring/decimal"
)

// Product is one lemon variety offered for sale. Grade is the selection key.
type Product struct {
	ID          string          `json:"id"`
	Grade       string          `json:"grade"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

const (
	colID          = "id"
	colGrade       = "Grade"
	colDescription = "Description"
	colPrice       = "Price"
	colImage       = "Image"
)

// fallbackProducts is served when the Products collection cannot be read.
var fallbackProducts = []Product{
	{ID: "1", Grade: "Eureka", Description: "Classic sour lemon with thick skin, ideal for juicing.", Price: decimal.NewFromInt(80), Image: "/images/eureka.jpg"},
	{ID: "2", Grade: "Lisbon", Description: "Very juicy and highly acidic, great for pickles.", Price: decimal.NewFromInt(90), Image: "/images/lisbon.jpg"},
	{ID: "3", Grade: "Meyer", Description: "Sweeter thin skinned lemon for desserts and drinks.", Price: decimal.NewFromInt(120), Image: "/images/meyer.jpg"},
	{ID: "4", Grade: "Kagzi", Description: "Small aromatic lime grown across India.", Price: decimal.NewFromInt(60), Image: "/images/kagzi.jpg"},
}

// Fallback returns a copy of the static product list.
func Fallback() []Product {
	out := make([]Product, len(fallbackProducts))
	copy(out, fallbackProducts)
	return out
}

// Lookup finds the product with exactly the given grade.
func Lookup(products []Product, grade string) (Product, bool) {
	if grade == "" {
		return Product{}, false
	}
	for _, p := range products {
		if p.Grade == grade {
			return p, true
		}
	}
	return Product{}, false
}

// fromRow parses a Products row. Rows without a grade or with an unreadable price are rejected.
func fromRow(row sheets.Row) (Product, error) {
	grade := strings.TrimSpace(row.String(colGrade))
	if grade == "" {
		return Product{}, errMissingGrade
	}
	price, err := row.Decimal(colPrice)
	if err != nil {
		return Product{}, err
	}
	if price.IsNegative() {
		return Product{}, errNegativePrice
	}
	return Product{
		ID:          row.String(colID),
		Grade:       grade,
		Description: row.String(colDescription),
		Price:       price,
		Image:       row.String(colImage),
	}, nil
}

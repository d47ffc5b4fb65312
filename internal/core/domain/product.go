package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ResourceProducts is the resource name of the product catalogue.
const ResourceProducts = "products"

// Product is a catalogue item.
type Product struct {
	ID              string           `json:"id"                        yaml:"id"`
	SKU             string           `json:"sku"                       yaml:"sku"`
	Name            string           `json:"name"                      yaml:"name"`
	Description     string           `json:"description,omitempty"     yaml:"description,omitempty"`
	Category        string           `json:"category,omitempty"        yaml:"category,omitempty"`
	Unit            string           `json:"unit,omitempty"            yaml:"unit,omitempty"`
	CostPrice       decimal.Decimal  `json:"costPrice"                 yaml:"costPrice"`
	SellingPrice    decimal.Decimal  `json:"sellingPrice"              yaml:"sellingPrice"`
	MinSellingPrice *decimal.Decimal `json:"minSellingPrice,omitempty" yaml:"minSellingPrice,omitempty"`
	MaxSellingPrice *decimal.Decimal `json:"maxSellingPrice,omitempty" yaml:"maxSellingPrice,omitempty"`
	StockQuantity   int              `json:"stockQuantity"             yaml:"stockQuantity"`
	IsActive        bool             `json:"isActive"                  yaml:"isActive"`
	CreatedAt       time.Time        `json:"createdAt"                 yaml:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"                 yaml:"updatedAt"`
}

// ProductInput is the payload of a product creation.
type ProductInput struct {
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Category        string           `json:"category,omitempty"`
	Unit            string           `json:"unit,omitempty"`
	CostPrice       decimal.Decimal  `json:"costPrice"`
	SellingPrice    decimal.Decimal  `json:"sellingPrice"`
	MinSellingPrice *decimal.Decimal `json:"minSellingPrice,omitempty"`
	MaxSellingPrice *decimal.Decimal `json:"maxSellingPrice,omitempty"`
	StockQuantity   int              `json:"stockQuantity"`
	IsActive        *bool            `json:"isActive,omitempty"`
}

// Validate checks the payload before it is sent.
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return NewValidationError("sku", "is required")
	}
	if in.StockQuantity < 0 {
		return NewValidationError("stockQuantity", "must not be negative")
	}
	return validatePrices(&in.CostPrice, &in.SellingPrice, in.MinSellingPrice, in.MaxSellingPrice)
}

// ProductPatch is a partial product update. Only non-nil fields are sent.
type ProductPatch struct {
	SKU             *string          `json:"sku,omitempty"`
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Unit            *string          `json:"unit,omitempty"`
	CostPrice       *decimal.Decimal `json:"costPrice,omitempty"`
	SellingPrice    *decimal.Decimal `json:"sellingPrice,omitempty"`
	MinSellingPrice *decimal.Decimal `json:"minSellingPrice,omitempty"`
	MaxSellingPrice *decimal.Decimal `json:"maxSellingPrice,omitempty"`
	StockQuantity   *int             `json:"stockQuantity,omitempty"`
	IsActive        *bool            `json:"isActive,omitempty"`
}

// Validate checks the provided fields.
func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "must not be blank")
	}
	if p.StockQuantity != nil && *p.StockQuantity < 0 {
		return NewValidationError("stockQuantity", "must not be negative")
	}
	return validatePrices(p.CostPrice, p.SellingPrice, p.MinSellingPrice, p.MaxSellingPrice)
}

func validatePrices(cost, selling, lo, hi *decimal.Decimal) error {
	for _, f := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"costPrice", cost},
		{"sellingPrice", selling},
		{"minSellingPrice", lo},
		{"maxSellingPrice", hi},
	} {
		if f.value != nil && f.value.IsNegative() {
			return NewValidationError(f.name, "must not be negative")
		}
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return NewValidationError("minSellingPrice", "must not exceed maxSellingPrice")
	}
	return nil
}

// ProductFilter selects products in a list.
type ProductFilter struct {
	ListOptions
	Category string
	IsActive *bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Query implements ListFilter.
func (f ProductFilter) Query(defaultLimit int) QueryParams {
	q := f.ListOptions.Query(defaultLimit)
	q.Add("category", f.Category)
	q.AddBool("isActive", f.IsActive)
	if f.MinPrice != nil {
		q.Add("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Add("maxPrice", f.MaxPrice.String())
	}
	return q
}

// Set implements FilterSetter.
func (f *ProductFilter) Set(field, value string) error {
	if ok, err := f.SetOption(field, value); ok {
		return err
	}
	switch field {
	case "category":
		f.Category = value
	case "isActive":
		b, err := parseBool(field, value)
		if err != nil {
			return err
		}
		f.IsActive = b
	case "minPrice", "maxPrice":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return invalidFilter(field, value)
		}
		if field == "minPrice" {
			f.MinPrice = &d
		} else {
			f.MaxPrice = &d
		}
	default:
		return unknownFilter(field)
	}
	return nil
}

// Validate implements ListFilter.
func (f ProductFilter) Validate() error {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return NewValidationError("minPrice", "must not exceed maxPrice")
	}
	return nil
}

package domain

import (
	"strings"
	"time"
)

// ResourceCustomers is the resource name of customer records.
const ResourceCustomers = "customers"

// Customer is a customer record.
type Customer struct {
	ID        string    `json:"id"                yaml:"id"`
	Code      string    `json:"code"              yaml:"code"`
	Name      string    `json:"name"              yaml:"name"`
	Email     string    `json:"email,omitempty"   yaml:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"   yaml:"phone,omitempty"`
	Address   string    `json:"address,omitempty" yaml:"address,omitempty"`
	City      string    `json:"city,omitempty"    yaml:"city,omitempty"`
	Country   string    `json:"country,omitempty" yaml:"country,omitempty"`
	TaxID     string    `json:"taxId,omitempty"   yaml:"taxId,omitempty"`
	IsActive  bool      `json:"isActive"          yaml:"isActive"`
	CreatedAt time.Time `json:"createdAt"         yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"         yaml:"updatedAt"`
}

// CustomerInput is the payload of a customer creation.
type CustomerInput struct {
	Code     string `json:"code,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	TaxID    string `json:"taxId,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Validate checks the payload before it is sent.
func (in CustomerInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// CustomerPatch is a partial customer update. Only non-nil fields are sent.
type CustomerPatch struct {
	Code     *string `json:"code,omitempty"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	Country  *string `json:"country,omitempty"`
	TaxID    *string `json:"taxId,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Validate checks the provided fields.
func (p CustomerPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "must not be blank")
	}
	if p.Email != nil && *p.Email != "" && !strings.Contains(*p.Email, "@") {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// CustomerFilter selects customers in a list.
type CustomerFilter struct {
	ListOptions
	IsActive *bool
	City     string
	Country  string
}

// Query implements ListFilter.
func (f CustomerFilter) Query(defaultLimit int) QueryParams {
	q := f.ListOptions.Query(defaultLimit)
	q.AddBool("isActive", f.IsActive)
	q.Add("city", f.City)
	q.Add("country", f.Country)
	return q
}

// Set implements FilterSetter.
func (f *CustomerFilter) Set(field, value string) error {
	if ok, err := f.SetOption(field, value); ok {
		return err
	}
	switch field {
	case "isActive":
		b, err := parseBool(field, value)
		if err != nil {
			return err
		}
		f.IsActive = b
	case "city":
		f.City = value
	case "country":
		f.Country = value
	default:
		return unknownFilter(field)
	}
	return nil
}

// Validate implements ListFilter.
func (f CustomerFilter) Validate() error {
	return nil
}

package domain

import (
	"strings"
	"time"
)

// ResourceLocations is the resource name of physical locations.
const ResourceLocations = "locations"

// LocationType classifies a location.
type LocationType string

// Known location types.
const (
	LocationWarehouse LocationType = "warehouse"
	LocationStore     LocationType = "store"
	LocationOffice    LocationType = "office"
)

// Valid reports whether t is a known location type.
func (t LocationType) Valid() bool {
	switch t {
	case LocationWarehouse, LocationStore, LocationOffice:
		return true
	default:
		return false
	}
}

// Location is a warehouse, store or office.
type Location struct {
	ID        string       `json:"id"                yaml:"id"`
	Code      string       `json:"code"              yaml:"code"`
	Name      string       `json:"name"              yaml:"name"`
	Type      LocationType `json:"type"              yaml:"type"`
	Address   string       `json:"address,omitempty" yaml:"address,omitempty"`
	City      string       `json:"city,omitempty"    yaml:"city,omitempty"`
	Country   string       `json:"country,omitempty" yaml:"country,omitempty"`
	IsActive  bool         `json:"isActive"          yaml:"isActive"`
	CreatedAt time.Time    `json:"createdAt"         yaml:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"         yaml:"updatedAt"`
}

// LocationInput is the payload of a location creation.
type LocationInput struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Type     LocationType `json:"type"`
	Address  string       `json:"address,omitempty"`
	City     string       `json:"city,omitempty"`
	Country  string       `json:"country,omitempty"`
	IsActive *bool        `json:"isActive,omitempty"`
}

// Validate checks the payload before it is sent.
func (in LocationInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return NewValidationError("code", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if !in.Type.Valid() {
		return NewValidationError("type", "must be one of warehouse, store, office")
	}
	return nil
}

// LocationPatch is a partial location update. Only non-nil fields are sent.
type LocationPatch struct {
	Code     *string       `json:"code,omitempty"`
	Name     *string       `json:"name,omitempty"`
	Type     *LocationType `json:"type,omitempty"`
	Address  *string       `json:"address,omitempty"`
	City     *string       `json:"city,omitempty"`
	Country  *string       `json:"country,omitempty"`
	IsActive *bool         `json:"isActive,omitempty"`
}

// Validate checks the provided fields.
func (p LocationPatch) Validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return NewValidationError("type", "must be one of warehouse, store, office")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "must not be blank")
	}
	return nil
}

// LocationFilter selects locations in a list.
type LocationFilter struct {
	ListOptions
	Type     LocationType
	IsActive *bool
}

// Query implements ListFilter.
func (f LocationFilter) Query(defaultLimit int) QueryParams {
	q := f.ListOptions.Query(defaultLimit)
	q.Add("type", string(f.Type))
	q.AddBool("isActive", f.IsActive)
	return q
}

// Set implements FilterSetter.
func (f *LocationFilter) Set(field, value string) error {
	if ok, err := f.SetOption(field, value); ok {
		return err
	}
	switch field {
	case "type":
		f.Type = LocationType(value)
	case "isActive":
		b, err := parseBool(field, value)
		if err != nil {
			return err
		}
		f.IsActive = b
	default:
		return unknownFilter(field)
	}
	return nil
}

// Validate implements ListFilter.
func (f LocationFilter) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return NewValidationError("type", "must be one of warehouse, store, office")
	}
	return nil
}

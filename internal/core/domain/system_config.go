package domain

import "time"

// ResourceSystemConfig is the resource name of system configuration settings.
const ResourceSystemConfig = "system-config"

// SystemConfig is one key/value setting of the back office.
type SystemConfig struct {
	Key         string    `json:"key"                   yaml:"key"`
	Value       string    `json:"value"                 yaml:"value"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string    `json:"category,omitempty"    yaml:"category,omitempty"`
	IsPublic    bool      `json:"isPublic"              yaml:"isPublic"`
	UpdatedAt   time.Time `json:"updatedAt"             yaml:"updatedAt"`
}

// SystemConfigPatch changes the value or description of a setting.
type SystemConfigPatch struct {
	Value       *string `json:"value,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the provided fields.
func (p SystemConfigPatch) Validate() error {
	if p.Value == nil && p.Description == nil {
		return NewValidationError("value", "nothing to update")
	}
	return nil
}

// SystemConfigFilter selects settings in a list.
type SystemConfigFilter struct {
	ListOptions
	Category string
}

// Query implements ListFilter.
func (f SystemConfigFilter) Query(defaultLimit int) QueryParams {
	q := f.ListOptions.Query(defaultLimit)
	q.Add("category", f.Category)
	return q
}

// Set implements FilterSetter.
func (f *SystemConfigFilter) Set(field, value string) error {
	if ok, err := f.SetOption(field, value); ok {
		return err
	}
	if field != "category" {
		return unknownFilter(field)
	}
	f.Category = value
	return nil
}

// Validate implements ListFilter.
func (f SystemConfigFilter) Validate() error {
	return nil
}

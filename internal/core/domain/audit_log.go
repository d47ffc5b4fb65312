package domain

import (
	"encoding/json"
	"time"
)

// ResourceAuditLogs is the resource name of the audit trail.
const ResourceAuditLogs = "audit-logs"

// AuditAction is the kind of change recorded in the audit trail.
type AuditAction string

// Known audit actions.
const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

// AuditLog is one entry of the audit trail. Entries are written by the server only.
type AuditLog struct {
	ID        string          `json:"id"                  yaml:"id"`
	UserID    string          `json:"userId,omitempty"    yaml:"userId,omitempty"`
	UserEmail string          `json:"userEmail,omitempty" yaml:"userEmail,omitempty"`
	Entity    string          `json:"entity"              yaml:"entity"`
	EntityID  string          `json:"entityId,omitempty"  yaml:"entityId,omitempty"`
	Action    AuditAction     `json:"action"              yaml:"action"`
	Changes   json.RawMessage `json:"changes,omitempty"   yaml:"-"`
	IPAddress string          `json:"ipAddress,omitempty" yaml:"ipAddress,omitempty"`
	UserAgent string          `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	CreatedAt time.Time       `json:"createdAt"           yaml:"createdAt"`
}

// AuditLogFilter selects audit entries in a list.
type AuditLogFilter struct {
	ListOptions
	Entity    string
	Action    AuditAction
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Query implements ListFilter.
func (f AuditLogFilter) Query(defaultLimit int) QueryParams {
	q := f.ListOptions.Query(defaultLimit)
	q.Add("entity", f.Entity)
	q.Add("action", string(f.Action))
	q.Add("userId", f.UserID)
	q.Add("startDate", formatDate(f.StartDate))
	q.Add("endDate", formatDate(f.EndDate))
	return q
}

// Set implements FilterSetter.
func (f *AuditLogFilter) Set(field, value string) error {
	if ok, err := f.SetOption(field, value); ok {
		return err
	}
	switch field {
	case "entity":
		f.Entity = value
	case "action":
		f.Action = AuditAction(value)
	case "userId":
		f.UserID = value
	case "startDate", "endDate":
		t, err := parseDate(field, value)
		if err != nil {
			return err
		}
		if field == "startDate" {
			f.StartDate = t
		} else {
			f.EndDate = t
		}
	default:
		return unknownFilter(field)
	}
	return nil
}

// Validate implements ListFilter.
func (f AuditLogFilter) Validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return NewValidationError("startDate", "must not be after endDate")
	}
	return nil
}

package domain

// Operation is the kind of write performed by a mutation.
type Operation string

// Known mutation operations.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// WriteAffects returns the invalidation patterns of a write to resource: the resource
// itself plus the dashboard counters and the audit trail, both of which the server
// updates on every write.
func WriteAffects(resource string) []KeyPattern {
	return []KeyPattern{
		PatternFor(resource),
		PatternFor(ResourceDashboard),
		PatternFor(ResourceAuditLogs),
	}
}

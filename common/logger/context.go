package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The worker sets delivery and route fields once per message so every reconciliation
// log line carries them without passing attributes around.
type LogFields struct {
	DeliveryID     *string // X-GitHub-Delivery
	Event          *string // X-GitHub-Event, e.g. "installation_repositories"
	Action         *string // payload action, e.g. "added"
	InstallationID *int64  // GitHub App installation id
	OrganizationID *int64  // local external organization id
	RepositoryID   *int64  // local repository id
	IssueID        *int64  // local issue id
	MessageID      *string // Redis stream message ID
	Component      string  // e.g. "ghsync.worker"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.DeliveryID != nil {
		result.DeliveryID = new.DeliveryID
	}
	if new.Event != nil {
		result.Event = new.Event
	}
	if new.Action != nil {
		result.Action = new.Action
	}
	if new.InstallationID != nil {
		result.InstallationID = new.InstallationID
	}
	if new.OrganizationID != nil {
		result.OrganizationID = new.OrganizationID
	}
	if new.RepositoryID != nil {
		result.RepositoryID = new.RepositoryID
	}
	if new.IssueID != nil {
		result.IssueID = new.IssueID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

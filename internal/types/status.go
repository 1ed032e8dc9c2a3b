package types

// Status is a type for the lifecycle status of a persisted resource.
// This is used to soft-delete and to determine if a row should be
// included in queries. Any changes to this type should be reflected in
// the database schema by running migrations.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

type RunMode string

const (
	// ModeLocal runs the API server together with the embedded scheduler
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server
	ModeAPI RunMode = "api"
	// ModeScheduler runs just the cron scheduler
	ModeScheduler RunMode = "scheduler"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

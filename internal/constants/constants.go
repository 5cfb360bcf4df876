package constants

// Activity types recorded on significant user actions.
const (
	ActivityInspection  = "inspection"
	ActivityCheckIn     = "check-in"
	ActivityReport      = "report"
	ActivitySchedule    = "schedule"
	ActivityMaintenance = "maintenance"
)

// Schedule lifecycle statuses.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCancelled = "cancelled"
)

// Performance statuses derived from daily generation thresholds.
const (
	PerformanceOver   = "over"
	PerformanceNormal = "normal"
	PerformanceUnder  = "under"
	PerformanceZero   = "zero"
)

// User roles. Two seed accounts exist; there is no registration flow.
const (
	RoleEngineer = "engineer"
	RoleClient   = "client"
)

// Photo types attached to a maintenance form.
const (
	PhotoTypeSite     = "site_photo"
	PhotoTypeEvidence = "evidence"
	PhotoTypeIssue    = "issue"
)

// Keys in the app_flags table used by the migration manager and
// seed pipeline.
const (
	FlagSchemaVersion     = "schema_version"
	FlagMigrationComplete = "migration_complete"
)

package db

import "solarops/fieldstore/internal/models"

// SchemaVersion tags the compiled table definitions. Bumping it
// triggers the migration manager on next startup.
const SchemaVersion = 4

// AllModels lists every table in the local store, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&models.AppFlag{},
		&models.User{},
		&models.Site{},
		&models.Schedule{},
		&models.Activity{},
		&models.MaintenanceForm{},
		&models.FormPhoto{},
		&models.PerformanceRecord{},
	}
}

// MigrationStep is one additive version-to-version transformation.
// Columns name struct fields added to Model at Version; columns are
// never removed or retyped.
type MigrationStep struct {
	Version int
	Model   interface{}
	Columns []string
}

// MigrationSteps is the ordered upgrade history. Versions below the
// oldest step can only be brought forward by a destructive rebuild.
var MigrationSteps = []MigrationStep{
	{
		Version: 2,
		Model:   &models.Schedule{},
		Columns: []string{"CheckedInAt", "CheckedOutAt", "ActualDurationMinutes", "ActivityID"},
	},
	{
		Version: 3,
		Model:   &models.Schedule{},
		Columns: []string{"IsRequiem", "RequiemReason", "LinkedSiteID"},
	},
	{
		Version: 4,
		Model:   &models.MaintenanceForm{},
		Columns: []string{"SyncedAt", "Documents"},
	},
}

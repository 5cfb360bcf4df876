package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/logging"
)

// Manager reconciles the persisted schema version marker with the
// compiled SchemaVersion constant on startup.
//
// The destructive policy reproduces the legacy behavior: any version
// mismatch wipes the store and forces a full re-seed, losing local
// user data. The incremental policy applies the declared column-add
// steps in place instead.
type Manager struct {
	db          *gorm.DB
	destructive bool
}

func NewManager(gdb *gorm.DB, destructive bool) *Manager {
	return &Manager{db: gdb, destructive: destructive}
}

// EnsureSchema brings the store to the current schema version. It
// returns true when the store was wiped (or freshly created) and the
// seed pipeline must run.
func (m *Manager) EnsureSchema(ctx context.Context) (bool, error) {
	// The flags table must exist before the version marker can be read.
	if err := m.db.WithContext(ctx).AutoMigrate(AllModels()[0]); err != nil {
		return false, fmt.Errorf("failed to prepare flags table: %v: %w", err, apperrors.ErrStoreUnavailable)
	}

	stored, err := m.storedVersion(ctx)
	if err != nil {
		return false, err
	}

	switch {
	case stored == 0:
		// Fresh install.
		if err := m.createAll(ctx); err != nil {
			return false, err
		}
		logging.Info("Local store created", "schema_version", SchemaVersion)
		return true, nil

	case stored == SchemaVersion:
		complete, err := m.flag(ctx, constants.FlagMigrationComplete)
		if err != nil {
			return false, err
		}
		if complete == "true" {
			return false, nil
		}
		// A previous seed run was interrupted; tables are current but
		// the pipeline must run again.
		return true, nil

	case m.destructive:
		logging.Warn("Schema version mismatch, wiping local store",
			"stored_version", stored,
			"current_version", SchemaVersion,
		)
		if err := m.dropAll(ctx); err != nil {
			return false, err
		}
		if err := m.createAll(ctx); err != nil {
			return false, err
		}
		return true, nil

	default:
		if err := m.applySteps(ctx, stored); err != nil {
			return false, err
		}
		if err := m.setFlag(ctx, constants.FlagSchemaVersion, strconv.Itoa(SchemaVersion)); err != nil {
			return false, err
		}
		logging.Info("Incremental migration applied",
			"from_version", stored,
			"to_version", SchemaVersion,
		)
		return false, nil
	}
}

// createAll builds every table and stamps the version marker. The
// migration-complete marker is cleared so the seed pipeline runs.
func (m *Manager) createAll(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to create tables: %v: %w", err, apperrors.ErrStoreUnavailable)
	}
	if err := m.setFlag(ctx, constants.FlagSchemaVersion, strconv.Itoa(SchemaVersion)); err != nil {
		return err
	}
	return m.setFlag(ctx, constants.FlagMigrationComplete, "false")
}

func (m *Manager) dropAll(ctx context.Context) error {
	migrator := m.db.WithContext(ctx).Migrator()
	mdls := AllModels()
	// Children first so foreign references never dangle mid-drop.
	for i := len(mdls) - 1; i >= 0; i-- {
		if err := migrator.DropTable(mdls[i]); err != nil {
			return fmt.Errorf("failed to drop table: %v: %w", err, apperrors.ErrStoreUnavailable)
		}
	}
	return nil
}

// applySteps executes the declared column-add steps newer than the
// stored version. Versions predating the oldest declared step cannot
// be migrated in place.
func (m *Manager) applySteps(ctx context.Context, stored int) error {
	if len(MigrationSteps) > 0 && stored < MigrationSteps[0].Version-1 {
		return fmt.Errorf("stored schema version %d predates migration history: %w",
			stored, apperrors.ErrStoreUnavailable)
	}

	migrator := m.db.WithContext(ctx).Migrator()
	for _, step := range MigrationSteps {
		if step.Version <= stored || step.Version > SchemaVersion {
			continue
		}
		for _, column := range step.Columns {
			if migrator.HasColumn(step.Model, column) {
				continue
			}
			if err := migrator.AddColumn(step.Model, column); err != nil {
				return fmt.Errorf("failed to add column %s at version %d: %v: %w",
					column, step.Version, err, apperrors.ErrStoreUnavailable)
			}
		}
	}
	return nil
}

func (m *Manager) storedVersion(ctx context.Context) (int, error) {
	raw, err := m.flag(ctx, constants.FlagSchemaVersion)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version marker %q: %w", raw, apperrors.ErrStoreUnavailable)
	}
	return version, nil
}

func (m *Manager) flag(ctx context.Context, key string) (string, error) {
	var row struct{ Value string }
	err := m.db.WithContext(ctx).
		Table("app_flags").
		Where("key = ?", key).
		Select("value").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read flag %s: %v: %w", key, err, apperrors.ErrStoreUnavailable)
	}
	return row.Value, nil
}

func (m *Manager) setFlag(ctx context.Context, key, value string) error {
	err := m.db.WithContext(ctx).Exec(
		"INSERT INTO app_flags (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value,
	).Error
	if err != nil {
		return fmt.Errorf("failed to write flag %s: %v: %w", key, err, apperrors.ErrStoreUnavailable)
	}
	return nil
}

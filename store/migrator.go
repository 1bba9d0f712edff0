package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/internal/version"
)

// The migration system is deliberately simple: a fresh database gets the full
// LATEST.sql schema for its driver and the build's schema version is recorded
// alongside it. On later startups the recorded version is compared against the
// build; downgrades are refused, upgrades roll the recorded version forward.
// Incremental migrations can be added as NN__description.sql next to
// LATEST.sql once the schema starts evolving between releases.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the full schema applied to fresh installations.
	LatestSchemaFileName = "LATEST.sql"
	// schemaVersionKey is the snapshot key holding the recorded schema version.
	schemaVersionKey = "schema_version"
)

// Migrate brings the database schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	currentSchemaVersion := version.GetSchemaVersion(s.profile.Mode)
	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return err
		}
		return s.writeSchemaVersion(ctx, currentSchemaVersion)
	}

	recordedSchemaVersion, err := s.readSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read recorded schema version")
	}
	if recordedSchemaVersion == "" {
		// Database predates version tracking; adopt the current version.
		return s.writeSchemaVersion(ctx, currentSchemaVersion)
	}
	if version.IsVersionGreaterThan(recordedSchemaVersion, currentSchemaVersion) {
		return errors.Errorf("cannot downgrade schema version from %s to %s", recordedSchemaVersion, currentSchemaVersion)
	}
	if version.IsVersionGreaterOrEqualThan(recordedSchemaVersion, currentSchemaVersion) {
		return nil
	}

	// Incremental migration files run here once the schema changes between
	// minor releases; the snapshot tables have been stable so far.
	slog.Info("schema version updated",
		slog.String("from", recordedSchemaVersion),
		slog.String("to", currentSchemaVersion))
	return s.writeSchemaVersion(ctx, currentSchemaVersion)
}

// applyLatestSchema initializes a fresh database with the full schema for the
// configured driver.
func (s *Store) applyLatestSchema(ctx context.Context) error {
	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", filePath)
	}

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(bytes)); err != nil {
		return errors.Wrapf(err, "failed to execute schema %q", filePath)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit schema transaction")
	}

	slog.Info("database initialized with latest schema", slog.String("driver", s.profile.Driver))
	return nil
}

func (s *Store) readSchemaVersion(ctx context.Context) (string, error) {
	snapshot, err := s.driver.GetSnapshot(ctx, &FindSnapshot{Key: schemaVersionKey})
	if err != nil {
		return "", err
	}
	if snapshot == nil {
		return "", nil
	}
	return snapshot.Value, nil
}

func (s *Store) writeSchemaVersion(ctx context.Context, schemaVersion string) error {
	if _, err := s.driver.UpsertSnapshot(ctx, &Snapshot{
		Key:   schemaVersionKey,
		Value: schemaVersion,
	}); err != nil {
		return errors.Wrapf(err, "failed to record schema version %s", schemaVersion)
	}
	return nil
}

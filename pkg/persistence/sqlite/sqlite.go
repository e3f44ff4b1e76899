// Package sqlite provides the SQLite persistence implementation for the
// automation engine.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/operacional-ops/mapflow/pkg/persistence"
	"github.com/operacional-ops/mapflow/pkg/persistence/sqlbase"
)

const timeFormat = time.RFC3339Nano

// Persistence implements the persistence layer for SQLite.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	tasks       *TaskRepository
	statuses    *StatusRepository
	tags        *TagRepository
	assignees   *AssigneeRepository
	automations *AutomationRepository
	structure   *StructureRepository
	templates   *TemplateRepository
	activities  *ActivityRepository
	members     *MembershipRepository
	profiles    *ProfileRepository
}

// NewPersistence opens (or creates) the SQLite database at databaseURL and
// runs schema migrations. A "sqlite://" prefix is accepted and stripped.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	dsn := strings.TrimPrefix(databaseURL, "sqlite://")

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// table-locked errors under concurrent access.
	database.SetMaxOpenConns(1)

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = database.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:          database,
		logger:      logger,
		tasks:       &TaskRepository{db: database, logger: logger},
		statuses:    &StatusRepository{db: database, logger: logger},
		tags:        &TagRepository{db: database, logger: logger},
		assignees:   &AssigneeRepository{db: database, logger: logger},
		automations: &AutomationRepository{db: database, logger: logger},
		structure:   &StructureRepository{db: database, logger: logger},
		templates:   &TemplateRepository{db: database, logger: logger},
		activities:  &ActivityRepository{db: database, logger: logger},
		members:     &MembershipRepository{db: database, logger: logger},
		profiles:    &ProfileRepository{db: database, logger: logger},
	}, nil
}

func (p *Persistence) Tasks() persistence.TaskRepository             { return p.tasks }
func (p *Persistence) Statuses() persistence.StatusRepository        { return p.statuses }
func (p *Persistence) Tags() persistence.TagRepository               { return p.tags }
func (p *Persistence) Assignees() persistence.AssigneeRepository     { return p.assignees }
func (p *Persistence) Automations() persistence.AutomationRepository { return p.automations }
func (p *Persistence) Structure() persistence.StructureRepository    { return p.structure }
func (p *Persistence) Templates() persistence.TemplateRepository     { return p.templates }
func (p *Persistence) Activities() persistence.ActivityRepository    { return p.activities }
func (p *Persistence) Members() persistence.MembershipRepository     { return p.members }
func (p *Persistence) Profiles() persistence.ProfileRepository       { return p.profiles }

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime reads a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}

	return t, nil
}

// nullString maps an optional id column.
func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}

	s := ns.String

	return &s
}

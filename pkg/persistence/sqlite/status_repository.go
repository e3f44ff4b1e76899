package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// StatusRepository handles status-related database operations.
type StatusRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const statusColumns = `
	id
  , workspace_id
  , scope_type
  , scope_id
  , name
  , is_default
  , order_index
  , template_item_id
`

func (r *StatusRepository) Create(ctx context.Context, status *models.Status) error {
	query := `
		INSERT INTO statuses (
			id, workspace_id, scope_type, scope_id, name,
			is_default, order_index, template_item_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		status.ID, status.WorkspaceID, string(status.ScopeType),
		nullString(status.ScopeID), status.Name, status.IsDefault,
		status.OrderIndex, nullString(status.TemplateItemID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert status: %w", err)
	}

	return nil
}

func (r *StatusRepository) GetByID(ctx context.Context, id string) (*models.Status, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+statusColumns+" FROM statuses WHERE id = ?", id)

	return r.scanStatus(row)
}

func (r *StatusRepository) DefaultForWorkspace(ctx context.Context, workspaceID string) (*models.Status, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE workspace_id = ? AND scope_type = 'workspace' AND is_default = 1
		LIMIT 1
	`

	return r.scanStatus(r.db.QueryRowContext(ctx, query, workspaceID))
}

func (r *StatusRepository) FirstByOrder(ctx context.Context, workspaceID string) (*models.Status, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE workspace_id = ?
		ORDER BY order_index ASC
		LIMIT 1
	`

	return r.scanStatus(r.db.QueryRowContext(ctx, query, workspaceID))
}

func (r *StatusRepository) ListByScope(ctx context.Context, scopeType models.ScopeType, scopeID string) ([]*models.Status, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE scope_type = ? AND scope_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, string(scopeType), scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	statuses := make([]*models.Status, 0)

	for rows.Next() {
		status, err := r.scanStatus(rows)
		if err != nil {
			return nil, err
		}

		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statuses: %w", err)
	}

	return statuses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *StatusRepository) scanStatus(row rowScanner) (*models.Status, error) {
	var (
		status         models.Status
		scopeType      string
		scopeID        sql.NullString
		templateItemID sql.NullString
	)

	err := row.Scan(
		&status.ID, &status.WorkspaceID, &scopeType, &scopeID,
		&status.Name, &status.IsDefault, &status.OrderIndex, &templateItemID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrStatusNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan status: %w", err)
	}

	status.ScopeType = models.ScopeType(scopeType)
	status.ScopeID = fromNullString(scopeID)
	status.TemplateItemID = fromNullString(templateItemID)

	return &status, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// AutomationRepository handles automation rule storage.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const automationColumns = `
	id
  , workspace_id
  , description
  , "trigger"
  , action_type
  , action_config
  , scope_type
  , scope_id
  , enabled
  , created_at
`

func (r *AutomationRepository) Create(ctx context.Context, automation *models.Automation) error {
	configJSON, err := json.Marshal(automation.ActionConfig)
	if err != nil {
		return persistence.NewAutomationError("Create", automation.ID,
			fmt.Errorf("failed to marshal action config: %w", err))
	}

	query := `
		INSERT INTO automations (
			id, workspace_id, description, "trigger", action_type,
			action_config, scope_type, scope_id, enabled, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		automation.ID, automation.WorkspaceID, automation.Description,
		string(automation.Trigger), automation.ActionType, string(configJSON),
		string(automation.ScopeType), nullString(automation.ScopeID),
		automation.Enabled, formatTime(automation.CreatedAt),
	)
	if err != nil {
		return persistence.NewAutomationError("Create", automation.ID, err)
	}

	return nil
}

func (r *AutomationRepository) Update(ctx context.Context, automation *models.Automation) error {
	configJSON, err := json.Marshal(automation.ActionConfig)
	if err != nil {
		return persistence.NewAutomationError("Update", automation.ID,
			fmt.Errorf("failed to marshal action config: %w", err))
	}

	query := `
		UPDATE automations
		SET description = ?, "trigger" = ?, action_type = ?, action_config = ?,
			scope_type = ?, scope_id = ?, enabled = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		automation.Description, string(automation.Trigger), automation.ActionType,
		string(configJSON), string(automation.ScopeType),
		nullString(automation.ScopeID), automation.Enabled, automation.ID,
	)
	if err != nil {
		return persistence.NewAutomationError("Update", automation.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrAutomationNotFound
	}

	return nil
}

func (r *AutomationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM automations WHERE id = ?", id)
	if err != nil {
		return persistence.NewAutomationError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrAutomationNotFound
	}

	return nil
}

func (r *AutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+automationColumns+" FROM automations WHERE id = ?", id)

	return r.scanAutomation(row)
}

func (r *AutomationRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Automation, error) {
	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE workspace_id = ?
		ORDER BY created_at DESC
	`

	return r.queryAutomations(ctx, query, workspaceID)
}

func (r *AutomationRepository) ListEnabledByTrigger(ctx context.Context, workspaceID string, trigger models.AutomationTrigger) ([]*models.Automation, error) {
	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE workspace_id = ? AND "trigger" = ? AND enabled = 1
		ORDER BY created_at ASC
	`

	return r.queryAutomations(ctx, query, workspaceID, string(trigger))
}

func (r *AutomationRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE automations SET enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return persistence.NewAutomationError("SetEnabled", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrAutomationNotFound
	}

	return nil
}

func (r *AutomationRepository) queryAutomations(ctx context.Context, query string, args ...any) ([]*models.Automation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		automation, err := r.scanAutomation(rows)
		if err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automations: %w", err)
	}

	return automations, nil
}

func (r *AutomationRepository) scanAutomation(row rowScanner) (*models.Automation, error) {
	var (
		automation models.Automation
		trigger    string
		configJSON string
		scopeType  string
		scopeID    sql.NullString
		createdAt  string
	)

	err := row.Scan(
		&automation.ID, &automation.WorkspaceID, &automation.Description,
		&trigger, &automation.ActionType, &configJSON, &scopeType,
		&scopeID, &automation.Enabled, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrAutomationNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan automation: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &automation.ActionConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action config of automation %s: %w", automation.ID, err)
	}

	automation.Trigger = models.AutomationTrigger(trigger)
	automation.ScopeType = models.ScopeType(scopeType)
	automation.ScopeID = fromNullString(scopeID)

	automation.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &automation, nil
}

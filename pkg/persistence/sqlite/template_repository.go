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

// TemplateRepository handles space templates, their structural rows and
// template-owned automations.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const templateColumns = `
	id
  , workspace_id
  , created_by_user_id
  , name
  , description
  , color
  , created_at
  , updated_at
`

func (r *TemplateRepository) CreateTemplate(ctx context.Context, template *models.SpaceTemplate) error {
	query := `
		INSERT INTO space_templates (
			id, workspace_id, created_by_user_id, name, description,
			color, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		template.ID, nullString(template.WorkspaceID), template.CreatedByUserID,
		template.Name, template.Description, template.Color,
		formatTime(template.CreatedAt), formatTime(template.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}

	return nil
}

func (r *TemplateRepository) GetTemplate(ctx context.Context, id string) (*models.SpaceTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+templateColumns+" FROM space_templates WHERE id = ?", id)

	return r.scanTemplate(row)
}

func (r *TemplateRepository) UpdateTemplateMeta(ctx context.Context, template *models.SpaceTemplate) error {
	query := `
		UPDATE space_templates
		SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		template.Name, template.Description, template.Color,
		formatTime(template.UpdatedAt), template.ID)
	if err != nil {
		return fmt.Errorf("failed to update template %s: %w", template.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrTemplateNotFound
	}

	return nil
}

func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM space_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrTemplateNotFound
	}

	return nil
}

func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]*models.SpaceTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM space_templates
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	templates := make([]*models.SpaceTemplate, 0)

	for rows.Next() {
		template, err := r.scanTemplate(rows)
		if err != nil {
			return nil, err
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

func (r *TemplateRepository) scanTemplate(row rowScanner) (*models.SpaceTemplate, error) {
	var (
		template    models.SpaceTemplate
		workspaceID sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&template.ID, &workspaceID, &template.CreatedByUserID, &template.Name,
		&template.Description, &template.Color, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrTemplateNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	template.WorkspaceID = fromNullString(workspaceID)

	template.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	template.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &template, nil
}

func (r *TemplateRepository) CreateTemplateFolder(ctx context.Context, folder *models.TemplateFolder) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO space_template_folders (id, template_id, name, description, order_index) VALUES (?, ?, ?, ?, ?)",
		folder.ID, folder.TemplateID, folder.Name, folder.Description, folder.OrderIndex)
	if err != nil {
		return fmt.Errorf("failed to insert template folder: %w", err)
	}

	return nil
}

func (r *TemplateRepository) CreateTemplateList(ctx context.Context, list *models.TemplateList) error {
	query := `
		INSERT INTO space_template_lists (
			id, template_id, folder_ref_id, name, description,
			default_view, order_index, status_template_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		list.ID, list.TemplateID, nullString(list.FolderRefID), list.Name,
		list.Description, list.DefaultView, list.OrderIndex,
		nullString(list.StatusTemplateID))
	if err != nil {
		return fmt.Errorf("failed to insert template list: %w", err)
	}

	return nil
}

func (r *TemplateRepository) CreateTemplateTask(ctx context.Context, task *models.TemplateTask) error {
	query := `
		INSERT INTO space_template_tasks (
			id, template_id, list_ref_id, title, description, priority, order_index
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.TemplateID, task.ListRefID, task.Title,
		task.Description, task.Priority, task.OrderIndex)
	if err != nil {
		return fmt.Errorf("failed to insert template task: %w", err)
	}

	return nil
}

func (r *TemplateRepository) ListTemplateFolders(ctx context.Context, templateID string) ([]*models.TemplateFolder, error) {
	query := `
		SELECT id, template_id, name, description, order_index
		FROM space_template_folders
		WHERE template_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template folders: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	folders := make([]*models.TemplateFolder, 0)

	for rows.Next() {
		var folder models.TemplateFolder
		if err := rows.Scan(&folder.ID, &folder.TemplateID, &folder.Name,
			&folder.Description, &folder.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan template folder: %w", err)
		}

		folders = append(folders, &folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template folders: %w", err)
	}

	return folders, nil
}

func (r *TemplateRepository) ListTemplateLists(ctx context.Context, templateID string) ([]*models.TemplateList, error) {
	query := `
		SELECT id, template_id, folder_ref_id, name, description,
			default_view, order_index, status_template_id
		FROM space_template_lists
		WHERE template_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template lists: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	lists := make([]*models.TemplateList, 0)

	for rows.Next() {
		var (
			list             models.TemplateList
			folderRefID      sql.NullString
			statusTemplateID sql.NullString
		)

		err := rows.Scan(&list.ID, &list.TemplateID, &folderRefID, &list.Name,
			&list.Description, &list.DefaultView, &list.OrderIndex, &statusTemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template list: %w", err)
		}

		list.FolderRefID = fromNullString(folderRefID)
		list.StatusTemplateID = fromNullString(statusTemplateID)

		lists = append(lists, &list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template lists: %w", err)
	}

	return lists, nil
}

func (r *TemplateRepository) ListTemplateTasks(ctx context.Context, templateID string) ([]*models.TemplateTask, error) {
	query := `
		SELECT id, template_id, list_ref_id, title, description, priority, order_index
		FROM space_template_tasks
		WHERE template_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template tasks: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tasks := make([]*models.TemplateTask, 0)

	for rows.Next() {
		var task models.TemplateTask
		if err := rows.Scan(&task.ID, &task.TemplateID, &task.ListRefID, &task.Title,
			&task.Description, &task.Priority, &task.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan template task: %w", err)
		}

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template tasks: %w", err)
	}

	return tasks, nil
}

// DeleteTemplateStructure removes a template's folders, lists, tasks and
// automations while keeping the template row.
func (r *TemplateRepository) DeleteTemplateStructure(ctx context.Context, templateID string) error {
	tables := []string{
		"space_template_automations",
		"space_template_tasks",
		"space_template_lists",
		"space_template_folders",
	}

	for _, table := range tables {
		_, err := r.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE template_id = ?", table), templateID)
		if err != nil {
			return fmt.Errorf("failed to clear %s of template %s: %w", table, templateID, err)
		}
	}

	return nil
}

const templateAutomationColumns = `
	id
  , template_id
  , description
  , "trigger"
  , action_type
  , action_config
  , scope_type
  , folder_ref_id
  , list_ref_id
  , enabled
  , created_at
`

func (r *TemplateRepository) CreateTemplateAutomation(ctx context.Context, automation *models.TemplateAutomation) error {
	configJSON, err := json.Marshal(automation.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	query := `
		INSERT INTO space_template_automations (
			id, template_id, description, "trigger", action_type, action_config,
			scope_type, folder_ref_id, list_ref_id, enabled, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		automation.ID, automation.TemplateID, automation.Description,
		string(automation.Trigger), automation.ActionType, string(configJSON),
		string(automation.ScopeType), nullString(automation.FolderRefID),
		nullString(automation.ListRefID), automation.Enabled,
		formatTime(automation.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert template automation: %w", err)
	}

	return nil
}

func (r *TemplateRepository) UpdateTemplateAutomation(ctx context.Context, automation *models.TemplateAutomation) error {
	configJSON, err := json.Marshal(automation.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	query := `
		UPDATE space_template_automations
		SET description = ?, "trigger" = ?, action_type = ?, action_config = ?,
			scope_type = ?, folder_ref_id = ?, list_ref_id = ?, enabled = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		automation.Description, string(automation.Trigger), automation.ActionType,
		string(configJSON), string(automation.ScopeType),
		nullString(automation.FolderRefID), nullString(automation.ListRefID),
		automation.Enabled, automation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template automation %s: %w", automation.ID, err)
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

func (r *TemplateRepository) DeleteTemplateAutomation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM space_template_automations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete template automation %s: %w", id, err)
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

func (r *TemplateRepository) GetTemplateAutomation(ctx context.Context, id string) (*models.TemplateAutomation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+templateAutomationColumns+" FROM space_template_automations WHERE id = ?", id)

	return r.scanTemplateAutomation(row)
}

func (r *TemplateRepository) ListTemplateAutomations(ctx context.Context, templateID string, enabledOnly bool) ([]*models.TemplateAutomation, error) {
	query := `
		SELECT ` + templateAutomationColumns + `
		FROM space_template_automations
		WHERE template_id = ?
	`
	if enabledOnly {
		query += " AND enabled = 1"
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template automations: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automations := make([]*models.TemplateAutomation, 0)

	for rows.Next() {
		automation, err := r.scanTemplateAutomation(rows)
		if err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template automations: %w", err)
	}

	return automations, nil
}

func (r *TemplateRepository) scanTemplateAutomation(row rowScanner) (*models.TemplateAutomation, error) {
	var (
		automation  models.TemplateAutomation
		trigger     string
		configJSON  string
		scopeType   string
		folderRefID sql.NullString
		listRefID   sql.NullString
		createdAt   string
	)

	err := row.Scan(
		&automation.ID, &automation.TemplateID, &automation.Description,
		&trigger, &automation.ActionType, &configJSON, &scopeType,
		&folderRefID, &listRefID, &automation.Enabled, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrAutomationNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan template automation: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &automation.ActionConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action config of template automation %s: %w", automation.ID, err)
	}

	automation.Trigger = models.AutomationTrigger(trigger)
	automation.ScopeType = models.ScopeType(scopeType)
	automation.FolderRefID = fromNullString(folderRefID)
	automation.ListRefID = fromNullString(listRefID)

	automation.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &automation, nil
}

func (r *TemplateRepository) CreateStatusTemplate(ctx context.Context, template *models.StatusTemplate) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO status_templates (id, name) VALUES (?, ?)",
		template.ID, template.Name)
	if err != nil {
		return fmt.Errorf("failed to insert status template: %w", err)
	}

	return nil
}

func (r *TemplateRepository) CreateStatusTemplateItem(ctx context.Context, item *models.StatusTemplateItem) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO status_template_items (id, template_id, name, order_index, is_default) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.TemplateID, item.Name, item.OrderIndex, item.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to insert status template item: %w", err)
	}

	return nil
}

func (r *TemplateRepository) ListStatusTemplateItems(ctx context.Context, templateID string) ([]*models.StatusTemplateItem, error) {
	query := `
		SELECT id, template_id, name, order_index, is_default
		FROM status_template_items
		WHERE template_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status template items: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	items := make([]*models.StatusTemplateItem, 0)

	for rows.Next() {
		var item models.StatusTemplateItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.Name,
			&item.OrderIndex, &item.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan status template item: %w", err)
		}

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status template items: %w", err)
	}

	return items, nil
}

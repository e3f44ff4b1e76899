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

// TagRepository handles workspace tags and task-tag relations.
type TagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO task_tags (id, workspace_id, name) VALUES (?, ?, ?)",
		tag.ID, tag.WorkspaceID, tag.Name)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	return nil
}

func (r *TagRepository) FindByName(ctx context.Context, workspaceID, name string) (*models.Tag, error) {
	var tag models.Tag

	err := r.db.QueryRowContext(ctx,
		"SELECT id, workspace_id, name FROM task_tags WHERE workspace_id = ? AND name = ?",
		workspaceID, name).Scan(&tag.ID, &tag.WorkspaceID, &tag.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrTagNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query tag %q: %w", name, err)
	}

	return &tag, nil
}

func (r *TagRepository) AttachToTask(ctx context.Context, taskID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO task_tag_relations (task_id, tag_id) VALUES (?, ?) ON CONFLICT (task_id, tag_id) DO NOTHING",
		taskID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag %s to task %s: %w", tagID, taskID, err)
	}

	return nil
}

func (r *TagRepository) DetachFromTask(ctx context.Context, taskID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM task_tag_relations WHERE task_id = ? AND tag_id = ?",
		taskID, tagID)
	if err != nil {
		return fmt.Errorf("failed to detach tag %s from task %s: %w", tagID, taskID, err)
	}

	return nil
}

func (r *TagRepository) NamesForTask(ctx context.Context, taskID string) ([]string, error) {
	query := `
		SELECT t.name
		FROM task_tag_relations rel
		JOIN task_tags t ON t.id = rel.tag_id
		WHERE rel.task_id = ?
		ORDER BY t.name
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags of task %s: %w", taskID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	names := make([]string, 0)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag names: %w", err)
	}

	return names, nil
}

// AssigneeRepository handles task-assignee relations.
type AssigneeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *AssigneeRepository) Add(ctx context.Context, taskID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?) ON CONFLICT (task_id, user_id) DO NOTHING",
		taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to add assignee %s to task %s: %w", userID, taskID, err)
	}

	return nil
}

func (r *AssigneeRepository) ListForTask(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM task_assignees WHERE task_id = ? ORDER BY user_id", taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignees of task %s: %w", taskID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	userIDs := make([]string, 0)

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan assignee: %w", err)
		}

		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignees: %w", err)
	}

	return userIDs, nil
}

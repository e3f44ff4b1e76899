package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

const dateFormat = "2006-01-02"

// TaskRepository handles task-related database operations.
type TaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			id, workspace_id, list_id, parent_id, status_id, title,
			description, priority, due_date, created_by_user_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var dueDate sql.NullString
	if task.DueDate != nil {
		dueDate = sql.NullString{String: task.DueDate.Format(dateFormat), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.WorkspaceID, task.ListID, nullString(task.ParentID),
		task.StatusID, task.Title, task.Description, task.Priority,
		dueDate, task.CreatedByUserID, formatTime(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT
			id
		  , workspace_id
		  , list_id
		  , parent_id
		  , status_id
		  , title
		  , description
		  , priority
		  , due_date
		  , archived_at
		  , created_by_user_id
		  , created_at
		FROM tasks
		WHERE id = ?
	`

	var (
		task       models.Task
		parentID   sql.NullString
		dueDate    sql.NullString
		archivedAt sql.NullString
		createdAt  string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.WorkspaceID, &task.ListID, &parentID, &task.StatusID,
		&task.Title, &task.Description, &task.Priority, &dueDate, &archivedAt,
		&task.CreatedByUserID, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrTaskNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query task %s: %w", id, err)
	}

	task.ParentID = fromNullString(parentID)

	if dueDate.Valid {
		due, err := time.Parse(dateFormat, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse due date of task %s: %w", id, err)
		}

		task.DueDate = &due
	}

	if archivedAt.Valid {
		archived, err := parseTime(archivedAt.String)
		if err != nil {
			return nil, err
		}

		task.ArchivedAt = &archived
	}

	task.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *TaskRepository) UpdatePriority(ctx context.Context, id, priority string) error {
	return r.updateColumn(ctx, id, "priority", priority)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id, statusID string) error {
	return r.updateColumn(ctx, id, "status_id", statusID)
}

func (r *TaskRepository) UpdateDueDate(ctx context.Context, id string, dueDate time.Time) error {
	return r.updateColumn(ctx, id, "due_date", dueDate.Format(dateFormat))
}

func (r *TaskRepository) MoveToList(ctx context.Context, id, listID string) error {
	return r.updateColumn(ctx, id, "list_id", listID)
}

func (r *TaskRepository) Archive(ctx context.Context, id string, archivedAt time.Time) error {
	return r.updateColumn(ctx, id, "archived_at", formatTime(archivedAt))
}

func (r *TaskRepository) updateColumn(ctx context.Context, id, column, value string) error {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE tasks SET %s = ? WHERE id = ?", column), value, id)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepository) HasSubtasks(ctx context.Context, parentID string) (bool, error) {
	var count int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM tasks WHERE parent_id = ?", parentID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count subtasks of %s: %w", parentID, err)
	}

	return count > 0, nil
}

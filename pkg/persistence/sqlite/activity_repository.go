package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// ActivityRepository appends and reads task audit-trail entries.
type ActivityRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ActivityRepository) Append(ctx context.Context, activity *models.Activity) error {
	metadata := activity.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal activity metadata: %w", err)
	}

	query := `
		INSERT INTO task_activities (
			id, task_id, user_id, activity_type, field_name,
			old_value, new_value, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		activity.ID, activity.TaskID, activity.UserID, activity.ActivityType,
		activity.FieldName, nullString(activity.OldValue),
		nullString(activity.NewValue), string(metadataJSON),
		formatTime(activity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

func (r *ActivityRepository) ListForTask(ctx context.Context, taskID string) ([]*models.Activity, error) {
	query := `
		SELECT id, task_id, user_id, activity_type, field_name,
			old_value, new_value, metadata, created_at
		FROM task_activities
		WHERE task_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities of task %s: %w", taskID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	activities := make([]*models.Activity, 0)

	for rows.Next() {
		var (
			activity     models.Activity
			oldValue     sql.NullString
			newValue     sql.NullString
			metadataJSON string
			createdAt    string
		)

		err := rows.Scan(&activity.ID, &activity.TaskID, &activity.UserID,
			&activity.ActivityType, &activity.FieldName, &oldValue, &newValue,
			&metadataJSON, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		activity.OldValue = fromNullString(oldValue)
		activity.NewValue = fromNullString(newValue)

		if err := json.Unmarshal([]byte(metadataJSON), &activity.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of activity %s: %w", activity.ID, err)
		}

		activity.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}

		activities = append(activities, &activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

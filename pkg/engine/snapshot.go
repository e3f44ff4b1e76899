package engine

import (
	"context"
	"fmt"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// snapshotFetcher builds the task projection used for condition evaluation.
// The fetch is lazy and happens at most once per trigger run; rules without
// conditions never pay for it.
type snapshotFetcher struct {
	engine   *Engine
	task     *models.Task
	snapshot *models.TaskSnapshot
}

func (f *snapshotFetcher) fetch(ctx context.Context) (*models.TaskSnapshot, error) {
	if f.snapshot != nil {
		return f.snapshot, nil
	}

	store := f.engine.store

	tags, err := store.Tags().NamesForTask(ctx, f.task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags for snapshot: %w", err)
	}

	assignees, err := store.Assignees().ListForTask(ctx, f.task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignees for snapshot: %w", err)
	}

	hasSubtasks, err := store.Tasks().HasSubtasks(ctx, f.task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subtasks for snapshot: %w", err)
	}

	f.snapshot = &models.TaskSnapshot{
		ID:          f.task.ID,
		Priority:    f.task.Priority,
		DueDate:     f.task.DueDate,
		Tags:        tags,
		Assignees:   assignees,
		HasSubtasks: hasSubtasks,
	}

	return f.snapshot, nil
}

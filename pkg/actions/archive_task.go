package actions

import (
	"context"
	"fmt"
	"log/slog"
)

// ArchiveTaskFactory builds archive_task actions.
type ArchiveTaskFactory struct{}

func NewArchiveTaskFactory() *ArchiveTaskFactory {
	return &ArchiveTaskFactory{}
}

func (*ArchiveTaskFactory) ID() string {
	return "archive_task"
}

func (*ArchiveTaskFactory) Name() string {
	return "Archive Task"
}

func (*ArchiveTaskFactory) Description() string {
	return "Archives the task by stamping its archival timestamp."
}

func (*ArchiveTaskFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (f *ArchiveTaskFactory) Create(_ map[string]any) (Action, error) {
	return &ArchiveTaskAction{}, nil
}

type ArchiveTaskAction struct{}

func (a *ArchiveTaskAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "archive_task")
	task := executionCtx.Task

	archivedAt := executionCtx.now()

	if err := executionCtx.Store.Tasks().Archive(ctx, task.ID, archivedAt); err != nil {
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}

	task.ArchivedAt = &archivedAt

	executionCtx.recordActivity(ctx, logger, "task.archived", "", nil, nil, nil)

	logger.InfoContext(ctx, "task archived", "task_id", task.ID)

	return &Result{}, nil
}

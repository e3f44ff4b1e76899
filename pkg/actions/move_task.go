package actions

import (
	"context"
	"fmt"
	"log/slog"
)

// MoveTaskFactory builds move_task actions.
type MoveTaskFactory struct{}

func NewMoveTaskFactory() *MoveTaskFactory {
	return &MoveTaskFactory{}
}

func (*MoveTaskFactory) ID() string {
	return "move_task"
}

func (*MoveTaskFactory) Name() string {
	return "Move Task"
}

func (*MoveTaskFactory) Description() string {
	return "Moves the task to another list."
}

func (*MoveTaskFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_list_id": map[string]any{
				"type":        "string",
				"description": "Id of the destination list.",
			},
		},
	}
}

func (f *MoveTaskFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &MoveTaskAction{TargetListID: stringValue(config, "target_list_id")}, nil
}

// MoveTaskAction relocates the task. Without a target list it is a no-op.
type MoveTaskAction struct {
	TargetListID string
}

func (a *MoveTaskAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "move_task")
	task := executionCtx.Task

	if a.TargetListID == "" {
		return &Result{}, nil
	}

	if err := executionCtx.Store.Tasks().MoveToList(ctx, task.ID, a.TargetListID); err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	// Later rules in the same run read old values from this struct.
	oldListID := task.ListID
	task.ListID = a.TargetListID

	executionCtx.recordActivity(ctx, logger, "task.moved", "list_id",
		&oldListID, &a.TargetListID, nil)

	logger.InfoContext(ctx, "task moved", "task_id", task.ID, "list_id", a.TargetListID)

	return &Result{}, nil
}

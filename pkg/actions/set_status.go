package actions

import (
	"context"
	"fmt"
	"log/slog"
)

// SetStatusFactory builds set_status actions.
type SetStatusFactory struct{}

func NewSetStatusFactory() *SetStatusFactory {
	return &SetStatusFactory{}
}

func (*SetStatusFactory) ID() string {
	return "set_status"
}

func (*SetStatusFactory) Name() string {
	return "Set Status"
}

func (*SetStatusFactory) Description() string {
	return "Moves the task to another status. May trigger further status-change automations, up to a bounded depth."
}

func (*SetStatusFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_id": map[string]any{
				"type":        "string",
				"description": "Id of the status to apply.",
			},
		},
	}
}

func (f *SetStatusFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &SetStatusAction{StatusID: stringValue(config, "status_id")}, nil
}

// SetStatusAction updates the task's status. Without a status id it is a
// no-op. The returned NewStatusID lets the trigger handler cascade.
type SetStatusAction struct {
	StatusID string
}

func (a *SetStatusAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "set_status")
	task := executionCtx.Task

	if a.StatusID == "" {
		return &Result{}, nil
	}

	if err := executionCtx.Store.Tasks().UpdateStatus(ctx, task.ID, a.StatusID); err != nil {
		return nil, fmt.Errorf("failed to set status: %w", err)
	}

	changed := task.StatusID != a.StatusID
	task.StatusID = a.StatusID

	logger.InfoContext(ctx, "status set", "task_id", task.ID, "status_id", a.StatusID)

	if !changed {
		return &Result{}, nil
	}

	return &Result{NewStatusID: a.StatusID}, nil
}

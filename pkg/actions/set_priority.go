package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// SetPriorityFactory builds set_priority actions.
type SetPriorityFactory struct{}

func NewSetPriorityFactory() *SetPriorityFactory {
	return &SetPriorityFactory{}
}

func (*SetPriorityFactory) ID() string {
	return "set_priority"
}

func (*SetPriorityFactory) Name() string {
	return "Set Priority"
}

func (*SetPriorityFactory) Description() string {
	return "Sets the task's priority."
}

func (*SetPriorityFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"priority": map[string]any{
				"type":        "string",
				"description": "Priority to apply.",
				"default":     models.PriorityMedium,
				"enum": []string{
					models.PriorityLow, models.PriorityMedium,
					models.PriorityHigh, models.PriorityUrgent,
				},
			},
		},
	}
}

func (f *SetPriorityFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &SetPriorityAction{Priority: stringValue(config, "priority")}, nil
}

type SetPriorityAction struct {
	Priority string
}

func (a *SetPriorityAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "set_priority")
	task := executionCtx.Task

	oldPriority := task.Priority
	if oldPriority == "" {
		oldPriority = models.PriorityMedium
	}

	newPriority := a.Priority
	if newPriority == "" {
		newPriority = models.PriorityMedium
	}

	if err := executionCtx.Store.Tasks().UpdatePriority(ctx, task.ID, newPriority); err != nil {
		return nil, fmt.Errorf("failed to set priority: %w", err)
	}

	// Later rules in the same run read old values from this struct.
	task.Priority = newPriority

	executionCtx.recordActivity(ctx, logger, "priority.changed", "priority",
		&oldPriority, &newPriority, nil)

	logger.InfoContext(ctx, "priority set", "task_id", task.ID, "priority", newPriority)

	return &Result{}, nil
}

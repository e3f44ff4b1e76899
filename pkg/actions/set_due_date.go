package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const dueDateFormat = "2006-01-02"

// SetDueDateFactory builds set_due_date actions.
type SetDueDateFactory struct{}

func NewSetDueDateFactory() *SetDueDateFactory {
	return &SetDueDateFactory{}
}

func (*SetDueDateFactory) ID() string {
	return "set_due_date"
}

func (*SetDueDateFactory) Name() string {
	return "Set Due Date"
}

func (*SetDueDateFactory) Description() string {
	return "Sets the task's due date, either relative to today or to an absolute date."
}

func (*SetDueDateFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days_from_now": map[string]any{
				"type":        "integer",
				"description": "Days counted from today. Takes precedence over due_date.",
			},
			"due_date": map[string]any{
				"type":        "string",
				"description": "Absolute date in YYYY-MM-DD form.",
			},
		},
	}
}

func (f *SetDueDateFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	action := &SetDueDateAction{DueDate: stringValue(config, "due_date")}

	if days, ok := intValue(config, "days_from_now"); ok && days != 0 {
		action.DaysFromNow = days
		action.HasDaysFromNow = true
	}

	return action, nil
}

// SetDueDateAction applies a due date. DaysFromNow wins over DueDate; with
// neither set the action is a no-op.
type SetDueDateAction struct {
	DaysFromNow    int
	HasDaysFromNow bool
	DueDate        string
}

func (a *SetDueDateAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "set_due_date")
	task := executionCtx.Task

	var dueDate time.Time

	switch {
	case a.HasDaysFromNow:
		dueDate = executionCtx.now().AddDate(0, 0, a.DaysFromNow)
	case a.DueDate != "":
		parsed, err := time.Parse(dueDateFormat, a.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", a.DueDate, err)
		}

		dueDate = parsed
	default:
		return &Result{}, nil
	}

	if err := executionCtx.Store.Tasks().UpdateDueDate(ctx, task.ID, dueDate); err != nil {
		return nil, fmt.Errorf("failed to set due date: %w", err)
	}

	var oldValue *string

	if task.DueDate != nil {
		old := task.DueDate.Format(dueDateFormat)
		oldValue = &old
	}

	newValue := dueDate.Format(dueDateFormat)

	// Later rules in the same run read old values from this struct.
	due := dueDate
	task.DueDate = &due

	executionCtx.recordActivity(ctx, logger, "due_date.changed", "due_date",
		oldValue, &newValue, nil)

	logger.InfoContext(ctx, "due date set", "task_id", task.ID, "due_date", newValue)

	return &Result{}, nil
}

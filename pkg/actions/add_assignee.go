package actions

import (
	"context"
	"log/slog"
)

// AddAssigneeFactory builds add_assignee actions. The legacy type name
// auto_assign_user registers a second factory over the same action.
type AddAssigneeFactory struct {
	id string
}

func NewAddAssigneeFactory() *AddAssigneeFactory {
	return &AddAssigneeFactory{id: "add_assignee"}
}

// NewAutoAssignUserFactory returns the factory under its legacy type name.
func NewAutoAssignUserFactory() *AddAssigneeFactory {
	return &AddAssigneeFactory{id: "auto_assign_user"}
}

func (f *AddAssigneeFactory) ID() string {
	return f.id
}

func (*AddAssigneeFactory) Name() string {
	return "Add Assignee"
}

func (*AddAssigneeFactory) Description() string {
	return "Assigns one or more users to the task. Already-assigned users are left untouched."
}

func (*AddAssigneeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_ids": map[string]any{
				"type":        "array",
				"description": "Ids of the users to assign.",
				"items":       map[string]any{"type": "string"},
			},
			"user_id": map[string]any{
				"type":        "string",
				"description": "Legacy single-user form of user_ids.",
			},
		},
	}
}

func (f *AddAssigneeFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	userIDs := stringListValue(config, "user_ids")
	if len(userIDs) == 0 {
		userIDs = stringListValue(config, "user_id")
	}

	return &AddAssigneeAction{UserIDs: userIDs}, nil
}

type AddAssigneeAction struct {
	UserIDs []string
}

func (a *AddAssigneeAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "add_assignee")
	task := executionCtx.Task

	if len(a.UserIDs) == 0 {
		return &Result{}, nil
	}

	for _, userID := range a.UserIDs {
		if err := executionCtx.Store.Assignees().Add(ctx, task.ID, userID); err != nil {
			logger.ErrorContext(ctx, "failed to add assignee",
				"task_id", task.ID, "user_id", userID, "error", err)

			continue
		}

		name := userID
		if profile, err := executionCtx.Store.Profiles().GetByID(ctx, userID); err == nil && profile.FullName != "" {
			name = profile.FullName
		}

		executionCtx.recordActivity(ctx, logger, "assignee.added", "", nil, &name,
			map[string]any{"assignee_id": userID})
	}

	logger.InfoContext(ctx, "assignees added", "task_id", task.ID, "count", len(a.UserIDs))

	return &Result{}, nil
}

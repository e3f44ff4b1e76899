package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

const defaultSubtaskTitle = "Automatic subtask"

// CreateSubtaskFactory builds create_subtask actions.
type CreateSubtaskFactory struct{}

func NewCreateSubtaskFactory() *CreateSubtaskFactory {
	return &CreateSubtaskFactory{}
}

func (*CreateSubtaskFactory) ID() string {
	return "create_subtask"
}

func (*CreateSubtaskFactory) Name() string {
	return "Create Subtask"
}

func (*CreateSubtaskFactory) Description() string {
	return "Creates a subtask under the triggering task, in the same list, using the workspace default status."
}

func (*CreateSubtaskFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Title of the new subtask.",
			},
			"subtask_title": map[string]any{
				"type":        "string",
				"description": "Legacy alias of title.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Description of the new subtask.",
			},
		},
	}
}

func (f *CreateSubtaskFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &CreateSubtaskAction{
		Title:       stringValue(config, "title", "subtask_title"),
		Description: stringValue(config, "description"),
	}, nil
}

// CreateSubtaskAction inserts a child task with priority medium. The status is
// the workspace default, falling back to the lowest-ordered status.
type CreateSubtaskAction struct {
	Title       string
	Description string
}

func (a *CreateSubtaskAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "create_subtask")
	task := executionCtx.Task

	status, err := executionCtx.Store.Statuses().DefaultForWorkspace(ctx, task.WorkspaceID)
	if errors.Is(err, persistence.ErrStatusNotFound) {
		status, err = executionCtx.Store.Statuses().FirstByOrder(ctx, task.WorkspaceID)
	}

	if errors.Is(err, persistence.ErrStatusNotFound) {
		return nil, fmt.Errorf("no status found for subtask in workspace %s", task.WorkspaceID)
	}

	if err != nil {
		return nil, err
	}

	title := a.Title
	if title == "" {
		title = defaultSubtaskTitle
	}

	subtask := &models.Task{
		ID:              uuid.NewString(),
		WorkspaceID:     task.WorkspaceID,
		ListID:          task.ListID,
		ParentID:        &task.ID,
		StatusID:        status.ID,
		Title:           title,
		Description:     a.Description,
		Priority:        models.PriorityMedium,
		CreatedByUserID: executionCtx.Identity.UserID,
		CreatedAt:       executionCtx.now(),
	}

	if err := executionCtx.Store.Tasks().Create(ctx, subtask); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	executionCtx.recordActivity(ctx, logger, "subtask.created", "", nil, nil, map[string]any{
		"subtask_id":    subtask.ID,
		"subtask_title": title,
	})

	logger.InfoContext(ctx, "subtask created", "task_id", task.ID, "subtask_id", subtask.ID)

	return &Result{SubtasksCreated: 1}, nil
}

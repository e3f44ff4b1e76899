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

// AddTagFactory builds add_tag actions.
type AddTagFactory struct{}

func NewAddTagFactory() *AddTagFactory {
	return &AddTagFactory{}
}

func (*AddTagFactory) ID() string {
	return "add_tag"
}

func (*AddTagFactory) Name() string {
	return "Add Tag"
}

func (*AddTagFactory) Description() string {
	return "Attaches a tag to the task, creating the tag in the workspace when it does not exist yet."
}

func (*AddTagFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tag_name": map[string]any{
				"type":        "string",
				"description": "Name of the tag to attach.",
			},
		},
	}
}

func (f *AddTagFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &AddTagAction{TagName: stringValue(config, "tag_name")}, nil
}

type AddTagAction struct {
	TagName string
}

func (a *AddTagAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "add_tag")
	task := executionCtx.Task

	if a.TagName == "" {
		return &Result{}, nil
	}

	tag, err := executionCtx.Store.Tags().FindByName(ctx, task.WorkspaceID, a.TagName)
	if errors.Is(err, persistence.ErrTagNotFound) {
		tag = &models.Tag{
			ID:          uuid.NewString(),
			WorkspaceID: task.WorkspaceID,
			Name:        a.TagName,
		}

		err = executionCtx.Store.Tags().Create(ctx, tag)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag %q: %w", a.TagName, err)
	}

	if err := executionCtx.Store.Tags().AttachToTask(ctx, task.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("failed to attach tag %q: %w", a.TagName, err)
	}

	logger.InfoContext(ctx, "tag added", "task_id", task.ID, "tag", a.TagName)

	return &Result{}, nil
}

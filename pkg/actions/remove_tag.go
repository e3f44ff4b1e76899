package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// RemoveTagFactory builds remove_tag actions.
type RemoveTagFactory struct{}

func NewRemoveTagFactory() *RemoveTagFactory {
	return &RemoveTagFactory{}
}

func (*RemoveTagFactory) ID() string {
	return "remove_tag"
}

func (*RemoveTagFactory) Name() string {
	return "Remove Tag"
}

func (*RemoveTagFactory) Description() string {
	return "Detaches a tag from the task. A tag that does not exist is ignored."
}

func (*RemoveTagFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tag_name": map[string]any{
				"type":        "string",
				"description": "Name of the tag to detach.",
			},
		},
	}
}

func (f *RemoveTagFactory) Create(config map[string]any) (Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &RemoveTagAction{TagName: stringValue(config, "tag_name")}, nil
}

type RemoveTagAction struct {
	TagName string
}

func (a *RemoveTagAction) Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error) {
	logger = logger.With("action_type", "remove_tag")
	task := executionCtx.Task

	if a.TagName == "" {
		return &Result{}, nil
	}

	tag, err := executionCtx.Store.Tags().FindByName(ctx, task.WorkspaceID, a.TagName)
	if errors.Is(err, persistence.ErrTagNotFound) {
		return &Result{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up tag %q: %w", a.TagName, err)
	}

	if err := executionCtx.Store.Tags().DetachFromTask(ctx, task.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("failed to detach tag %q: %w", a.TagName, err)
	}

	logger.InfoContext(ctx, "tag removed", "task_id", task.ID, "tag", a.TagName)

	return &Result{}, nil
}

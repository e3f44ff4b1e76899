// Package actions implements the automation action catalog: a registry of
// factories keyed by action type and one executable action per type.
package actions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// Action performs one automation step against a task.
type Action interface {
	Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (*Result, error)
}

// ActionFactory builds actions of one type from their raw configuration and
// describes that configuration for edit-time validation.
type ActionFactory interface {
	ID() string
	Name() string
	Description() string
	Schema() map[string]any
	Create(config map[string]any) (Action, error)
}

// ExecutionContext carries the task an action operates on, the acting
// identity and the store handles the action needs.
type ExecutionContext struct {
	Store          persistence.Persistence
	Task           *models.Task
	Identity       models.Identity
	AutomationName string
	Now            func() time.Time
}

func (e ExecutionContext) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}

	return time.Now()
}

// Result reports side effects the trigger handler aggregates across actions.
// NewStatusID is set when the action changed the task's status.
type Result struct {
	SubtasksCreated int
	NewStatusID     string
}

// recordActivity appends an audit-trail entry for an engine-originated change.
// Failures are logged and swallowed; the audit trail never blocks an action.
func (e ExecutionContext) recordActivity(ctx context.Context, logger *slog.Logger, activityType, fieldName string, oldValue, newValue *string, metadata map[string]any) {
	merged := map[string]any{"created_by": "automation"}

	for key, value := range metadata {
		merged[key] = value
	}

	if e.AutomationName != "" {
		merged["automation_name"] = e.AutomationName
	}

	activity := &models.Activity{
		ID:           uuid.NewString(),
		TaskID:       e.Task.ID,
		UserID:       e.Identity.UserID,
		ActivityType: activityType,
		FieldName:    fieldName,
		OldValue:     oldValue,
		NewValue:     newValue,
		Metadata:     merged,
		CreatedAt:    e.now(),
	}

	if err := e.Store.Activities().Append(ctx, activity); err != nil {
		logger.ErrorContext(ctx, "failed to record automation activity",
			"task_id", e.Task.ID, "activity_type", activityType, "error", err)
	}
}

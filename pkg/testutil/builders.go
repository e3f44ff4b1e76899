// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence/sqlite"
)

// NewStore opens an in-memory store with migrations applied. It is closed
// when the test finishes.
func NewStore(t *testing.T) *sqlite.Persistence {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.NewPersistence(context.Background(), logger, "sqlite://:memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	return store
}

// Logger returns a logger that swallows output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestTask builds a task with default values that can be overridden.
func CreateTestTask(overrides ...func(*models.Task)) *models.Task {
	task := &models.Task{
		ID:              uuid.NewString(),
		WorkspaceID:     "ws-1",
		ListID:          "list-1",
		StatusID:        "status-todo",
		Title:           "Test Task",
		Priority:        models.PriorityMedium,
		CreatedByUserID: "user-1",
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	for _, override := range overrides {
		override(task)
	}

	return task
}

// WithWorkspace sets the task's workspace.
func WithWorkspace(workspaceID string) func(*models.Task) {
	return func(t *models.Task) {
		t.WorkspaceID = workspaceID
	}
}

// WithList sets the task's list.
func WithList(listID string) func(*models.Task) {
	return func(t *models.Task) {
		t.ListID = listID
	}
}

// CreateTestAutomation builds an enabled workspace-wide status-change rule
// with default values that can be overridden.
func CreateTestAutomation(overrides ...func(*models.Automation)) *models.Automation {
	automation := &models.Automation{
		ID:          uuid.NewString(),
		WorkspaceID: "ws-1",
		Description: "Test Automation",
		Trigger:     models.TriggerOnStatusChanged,
		ScopeType:   models.ScopeWorkspace,
		Enabled:     true,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	for _, override := range overrides {
		override(automation)
	}

	return automation
}

// WithActions sets the rule's ordered action steps.
func WithActions(steps ...models.ActionStep) func(*models.Automation) {
	return func(a *models.Automation) {
		a.ActionConfig.Actions = steps
	}
}

// WithScope anchors the rule at a location.
func WithScope(scopeType models.ScopeType, scopeID string) func(*models.Automation) {
	return func(a *models.Automation) {
		a.ScopeType = scopeType

		if scopeID == "" {
			a.ScopeID = nil
		} else {
			a.ScopeID = &scopeID
		}
	}
}

// WithTriggerConfig sets the rule's status-transition filter.
func WithTriggerConfig(from, to []string) func(*models.Automation) {
	return func(a *models.Automation) {
		a.ActionConfig.TriggerConfig = &models.TriggerConfig{
			FromStatusIDs: from,
			ToStatusIDs:   to,
		}
	}
}

// WithConditions sets the rule's condition chain.
func WithConditions(conditions ...models.Condition) func(*models.Automation) {
	return func(a *models.Automation) {
		a.ActionConfig.Conditions = conditions
	}
}

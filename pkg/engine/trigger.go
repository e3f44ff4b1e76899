// Package engine runs automation rules against task events: it resolves which
// rules apply, evaluates their conditions and executes their actions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/operacional-ops/mapflow/pkg/actions"
	"github.com/operacional-ops/mapflow/pkg/conditions"
	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// maxStatusHops bounds the depth of set_status cascades. A rule that moves a
// task to a status watched by another rule re-enters the handler; beyond this
// depth the cascade stops and a warning is logged.
const maxStatusHops = 3

// Engine is the trigger handler. One instance is safe for concurrent use;
// every run keeps its state on the stack.
type Engine struct {
	logger   *slog.Logger
	store    persistence.Persistence
	registry *actions.Registry
	now      func() time.Time
}

func NewEngine(logger *slog.Logger, store persistence.Persistence, registry *actions.Registry) *Engine {
	return &Engine{
		logger:   logger.With("module", "engine"),
		store:    store,
		registry: registry,
		now:      time.Now,
	}
}

// HandleStatusChange runs every enabled on_status_changed automation that
// applies to the task's location. Rule failures are collected in the summary;
// only infrastructure failures surface as an error.
func (e *Engine) HandleStatusChange(ctx context.Context, change models.StatusChange, identity models.Identity) (*models.ExecutionSummary, error) {
	summary := &models.ExecutionSummary{Errors: []string{}}

	err := e.runStatusChange(ctx, change, identity, 0, summary)

	return summary, err
}

func (e *Engine) runStatusChange(ctx context.Context, change models.StatusChange, identity models.Identity, hop int, summary *models.ExecutionSummary) error {
	logger := e.logger.With("task_id", change.TaskID, "workspace_id", change.WorkspaceID)

	automations, err := e.store.Automations().ListEnabledByTrigger(ctx, change.WorkspaceID, models.TriggerOnStatusChanged)
	if err != nil {
		return fmt.Errorf("failed to list automations: %w", err)
	}

	if len(automations) == 0 {
		return nil
	}

	set, err := e.resolveScopeSet(ctx, change.WorkspaceID, change.ListID)
	if errors.Is(err, persistence.ErrListNotFound) {
		logger.WarnContext(ctx, "list of status change not found", "list_id", change.ListID)

		return nil
	}

	if err != nil {
		return err
	}

	task, err := e.store.Tasks().GetByID(ctx, change.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task %s: %w", change.TaskID, err)
	}

	fetcher := &snapshotFetcher{engine: e, task: task}
	finalStatusID := change.NewStatusID

	for _, automation := range automations {
		if !ruleApplies(automation, set) {
			continue
		}

		if tc := automation.ActionConfig.TriggerConfig; tc != nil {
			if from := tc.FromIDs(); len(from) > 0 && !slices.Contains(from, change.OldStatusID) {
				continue
			}

			if to := tc.ToIDs(); len(to) > 0 && !slices.Contains(to, change.NewStatusID) {
				continue
			}
		}

		newStatusID := e.executeRule(ctx, logger, automation, task, fetcher, identity, summary)
		if newStatusID != "" {
			finalStatusID = newStatusID
		}
	}

	if finalStatusID == change.NewStatusID {
		return nil
	}

	if hop >= maxStatusHops {
		logger.WarnContext(ctx, "status cascade depth exceeded, stopping",
			"status_id", finalStatusID, "max_hops", maxStatusHops)

		return nil
	}

	cascade := models.StatusChange{
		TaskID:      change.TaskID,
		WorkspaceID: change.WorkspaceID,
		ListID:      change.ListID,
		OldStatusID: change.NewStatusID,
		NewStatusID: finalStatusID,
	}

	return e.runStatusChange(ctx, cascade, identity, hop+1, summary)
}

// HandleTaskCreated runs every enabled on_task_created automation that
// applies to the new task's location.
func (e *Engine) HandleTaskCreated(ctx context.Context, taskID string, identity models.Identity) (*models.ExecutionSummary, error) {
	summary := &models.ExecutionSummary{Errors: []string{}}
	logger := e.logger.With("task_id", taskID)

	task, err := e.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return summary, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	automations, err := e.store.Automations().ListEnabledByTrigger(ctx, task.WorkspaceID, models.TriggerOnTaskCreated)
	if err != nil {
		return summary, fmt.Errorf("failed to list automations: %w", err)
	}

	if len(automations) == 0 {
		return summary, nil
	}

	set, err := e.resolveScopeSet(ctx, task.WorkspaceID, task.ListID)
	if errors.Is(err, persistence.ErrListNotFound) {
		logger.WarnContext(ctx, "list of new task not found", "list_id", task.ListID)

		return summary, nil
	}

	if err != nil {
		return summary, err
	}

	fetcher := &snapshotFetcher{engine: e, task: task}

	for _, automation := range automations {
		if !ruleApplies(automation, set) {
			continue
		}

		e.executeRule(ctx, logger, automation, task, fetcher, identity, summary)
	}

	return summary, nil
}

// executeRule evaluates one rule's conditions and runs its actions in order.
// The first failing action aborts the rule and records the failure in the
// summary; the rule then does not count as executed. The returned status id is
// non-empty when an action changed the task's status.
func (e *Engine) executeRule(ctx context.Context, logger *slog.Logger, automation *models.Automation, task *models.Task, fetcher *snapshotFetcher, identity models.Identity, summary *models.ExecutionSummary) string {
	if chain := automation.ActionConfig.Conditions; len(chain) > 0 {
		snapshot, err := fetcher.fetch(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "failed to fetch task data for conditions",
				"automation_id", automation.ID, "error", err)

			return ""
		}

		if !conditions.Evaluate(chain, *snapshot) {
			logger.DebugContext(ctx, "conditions not met", "automation_id", automation.ID)

			return ""
		}
	}

	name := automation.Description
	if name == "" {
		name = "Automation " + shortID(automation.ID)
	}

	executionCtx := actions.ExecutionContext{
		Store:          e.store,
		Task:           task,
		Identity:       identity,
		AutomationName: name,
		Now:            e.now,
	}

	var newStatusID string

	for _, step := range automation.ActionConfig.Steps(automation.ActionType) {
		action, err := e.registry.CreateAction(step.Type, step.Config)
		if errors.Is(err, actions.ErrNotRegistered) {
			logger.WarnContext(ctx, "action type not implemented, skipping",
				"automation_id", automation.ID, "action_type", step.Type)

			continue
		}

		if err == nil {
			var result *actions.Result

			result, err = action.Execute(ctx, executionCtx, logger)
			if err == nil {
				summary.SubtasksCreated += result.SubtasksCreated

				if result.NewStatusID != "" {
					newStatusID = result.NewStatusID
				}

				continue
			}
		}

		logger.ErrorContext(ctx, "automation action failed",
			"automation_id", automation.ID, "action_type", step.Type, "error", err)
		summary.Errors = append(summary.Errors,
			fmt.Sprintf("Automation %s: %v", automation.ID, err))

		return newStatusID
	}

	summary.AutomationsExecuted++

	return newStatusID
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

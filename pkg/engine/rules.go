package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/actions"
	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// Rules is the automation edit boundary. Every rule passes struct validation,
// per-action-type config schema validation and scope resolution before it is
// persisted; the trigger path can then trust stored rules.
type Rules struct {
	logger   *slog.Logger
	store    persistence.Persistence
	registry *actions.Registry
	validate *validator.Validate
	now      func() time.Time
}

func NewRules(logger *slog.Logger, store persistence.Persistence, registry *actions.Registry) *Rules {
	return &Rules{
		logger:   logger.With("module", "rules"),
		store:    store,
		registry: registry,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateAutomation validates and stores a new rule. Missing id and creation
// time are filled in.
func (r *Rules) CreateAutomation(ctx context.Context, automation *models.Automation) error {
	if automation.ID == "" {
		automation.ID = uuid.NewString()
	}

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = r.now()
	}

	if err := r.validateAutomation(ctx, automation); err != nil {
		return err
	}

	if err := r.store.Automations().Create(ctx, automation); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "automation created",
		"automation_id", automation.ID, "workspace_id", automation.WorkspaceID)

	return nil
}

// UpdateAutomation validates and stores changes to an existing rule.
func (r *Rules) UpdateAutomation(ctx context.Context, automation *models.Automation) error {
	if err := r.validateAutomation(ctx, automation); err != nil {
		return err
	}

	return r.store.Automations().Update(ctx, automation)
}

func (r *Rules) DeleteAutomation(ctx context.Context, id string) error {
	return r.store.Automations().Delete(ctx, id)
}

func (r *Rules) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return r.store.Automations().SetEnabled(ctx, id, enabled)
}

func (r *Rules) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Automation, error) {
	return r.store.Automations().ListByWorkspace(ctx, workspaceID)
}

func (r *Rules) validateAutomation(ctx context.Context, automation *models.Automation) error {
	if err := r.validate.Struct(automation); err != nil {
		return fmt.Errorf("%w: %w", persistence.ErrInvalidAutomation, err)
	}

	if err := r.validateScope(ctx, automation); err != nil {
		return err
	}

	steps := automation.ActionConfig.Steps(automation.ActionType)
	if len(steps) == 0 {
		return fmt.Errorf("%w: automation has no actions", persistence.ErrInvalidAutomation)
	}

	for _, step := range steps {
		if err := r.registry.ValidateConfig(step.Type, step.Config); err != nil {
			return fmt.Errorf("%w: %w", persistence.ErrInvalidAutomation, err)
		}
	}

	return nil
}

// validateScope enforces the scope invariant: workspace-wide rules carry no
// scope id, every other scope level names an entity that must exist in the
// rule's own workspace.
func (r *Rules) validateScope(ctx context.Context, automation *models.Automation) error {
	if automation.ScopeType == models.ScopeWorkspace {
		automation.ScopeID = nil

		return nil
	}

	if automation.ScopeID == nil || *automation.ScopeID == "" {
		return fmt.Errorf("%w: %s scope requires a scope id",
			persistence.ErrUnresolvedScope, automation.ScopeType)
	}

	workspaceID, err := r.resolveScopeWorkspace(ctx, automation.ScopeType, *automation.ScopeID)
	if persistence.IsNotFound(err) {
		return fmt.Errorf("%w: %s %s does not exist",
			persistence.ErrUnresolvedScope, automation.ScopeType, *automation.ScopeID)
	}

	if err != nil {
		return err
	}

	if workspaceID != automation.WorkspaceID {
		return fmt.Errorf("%w: %s %s belongs to another workspace",
			persistence.ErrUnresolvedScope, automation.ScopeType, *automation.ScopeID)
	}

	return nil
}

// resolveScopeWorkspace returns the workspace owning a scope anchor. Folders
// do not carry a workspace id; theirs comes from the parent space.
func (r *Rules) resolveScopeWorkspace(ctx context.Context, scopeType models.ScopeType, scopeID string) (string, error) {
	switch scopeType {
	case models.ScopeFolder:
		folder, err := r.store.Structure().GetFolder(ctx, scopeID)
		if err != nil {
			return "", err
		}

		space, err := r.store.Structure().GetSpace(ctx, folder.SpaceID)
		if err != nil {
			return "", err
		}

		return space.WorkspaceID, nil
	case models.ScopeList:
		list, err := r.store.Structure().GetList(ctx, scopeID)
		if err != nil {
			return "", err
		}

		return list.WorkspaceID, nil
	default:
		space, err := r.store.Structure().GetSpace(ctx, scopeID)
		if err != nil {
			return "", err
		}

		return space.WorkspaceID, nil
	}
}

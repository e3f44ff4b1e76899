package actions

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"
)

// ErrNotRegistered marks an action type the registry does not know. The
// trigger handler treats such steps as skippable instead of failing the rule.
var ErrNotRegistered = errors.New("action type not registered")

// Registry holds the action factories available to the engine.
type Registry struct {
	logger    *slog.Logger
	factories map[string]ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]ActionFactory),
	}
}

// NewDefaultRegistry returns a registry with every built-in action type.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	registry := NewRegistry(logger)

	registry.RegisterAction(NewCreateSubtaskFactory())
	registry.RegisterAction(NewSetPriorityFactory())
	registry.RegisterAction(NewAddAssigneeFactory())
	registry.RegisterAction(NewAutoAssignUserFactory())
	registry.RegisterAction(NewArchiveTaskFactory())
	registry.RegisterAction(NewSetDueDateFactory())
	registry.RegisterAction(NewSetStatusFactory())
	registry.RegisterAction(NewAddTagFactory())
	registry.RegisterAction(NewRemoveTagFactory())
	registry.RegisterAction(NewMoveTaskFactory())

	return registry
}

func (r *Registry) RegisterAction(factory ActionFactory) {
	r.factories[factory.ID()] = factory
}

// CreateAction builds an executable action from its type and raw config.
func (r *Registry) CreateAction(actionType string, config map[string]any) (Action, error) {
	factory, ok := r.factories[actionType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, actionType)
	}

	return factory.Create(config)
}

// ValidateConfig checks a raw action config against the type's schema. It is
// called at the rule edit boundary, never during trigger execution.
func (r *Registry) ValidateConfig(actionType string, config map[string]any) error {
	factory, ok := r.factories[actionType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, actionType)
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(factory.Schema()),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate %s config: %w", actionType, err)
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}

		return fmt.Errorf("invalid %s config: %v", actionType, issues)
	}

	return nil
}

// IsRegistered reports whether an action type has a factory.
func (r *Registry) IsRegistered(actionType string) bool {
	_, ok := r.factories[actionType]

	return ok
}

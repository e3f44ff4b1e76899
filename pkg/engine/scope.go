package engine

import (
	"context"
	"fmt"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// scopeSet is the set of location ids a task belongs to: its workspace, the
// list, and the list's folder and space when present.
type scopeSet map[string]struct{}

func (s scopeSet) contains(id string) bool {
	_, ok := s[id]

	return ok
}

// resolveScopeSet walks the list upward through folder and space. A rule
// anchored at any level of that chain applies to tasks in the list.
func (e *Engine) resolveScopeSet(ctx context.Context, workspaceID, listID string) (scopeSet, error) {
	list, err := e.store.Structure().GetList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scope of list %s: %w", listID, err)
	}

	set := scopeSet{
		workspaceID: {},
		list.ID:     {},
	}

	if list.SpaceID != "" {
		set[list.SpaceID] = struct{}{}
	}

	if list.FolderID != nil {
		set[*list.FolderID] = struct{}{}
	}

	return set, nil
}

// ruleApplies reports whether an automation's scope anchor covers the task's
// location. Workspace-wide rules carry no scope id.
func ruleApplies(automation *models.Automation, set scopeSet) bool {
	if automation.ScopeID == nil {
		return automation.ScopeType == models.ScopeWorkspace
	}

	return set.contains(*automation.ScopeID)
}

package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

// MaterializeInput names the template to apply and the space it becomes.
type MaterializeInput struct {
	TemplateID       string
	WorkspaceID      string
	SpaceName        string
	SpaceDescription string
	SpaceColor       string
}

// Materialize turns a template into a real space: folders, lists, tasks and
// automations, with every symbolic id remapped to the rows it creates. Folder
// and list names get the company part of the space name appended; template
// names already carry their trailing separator.
//
// Materialization is not transactional. A failure partway leaves the rows
// created so far in place.
func (s *Store) Materialize(ctx context.Context, identity models.Identity, input MaterializeInput) (*models.Space, error) {
	if err := s.checkMaterializePermission(ctx, identity, input.WorkspaceID); err != nil {
		return nil, err
	}

	folders, err := s.store.Templates().ListTemplateFolders(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	lists, err := s.store.Templates().ListTemplateLists(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.Templates().ListTemplateTasks(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	defaultStatus, err := s.store.Statuses().DefaultForWorkspace(ctx, input.WorkspaceID)
	if errors.Is(err, persistence.ErrStatusNotFound) {
		return nil, ErrDefaultStatusMissing
	}

	if err != nil {
		return nil, err
	}

	company := companyName(input.SpaceName)

	space := &models.Space{
		ID:          uuid.NewString(),
		WorkspaceID: input.WorkspaceID,
		Name:        input.SpaceName,
		Description: input.SpaceDescription,
		Color:       input.SpaceColor,
		CreatedAt:   s.now(),
	}

	if err := s.store.Structure().CreateSpace(ctx, space); err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	folderIDMap := make(map[string]string, len(folders))

	for _, folder := range folders {
		real := &models.Folder{
			ID:          uuid.NewString(),
			SpaceID:     space.ID,
			Name:        folder.Name + company,
			Description: folder.Description,
		}

		if err := s.store.Structure().CreateFolder(ctx, real); err != nil {
			return nil, fmt.Errorf("failed to create folder %q: %w", real.Name, err)
		}

		folderIDMap[folder.ID] = real.ID
	}

	listIDMap := make(map[string]string, len(lists))

	for _, list := range lists {
		statusSource := "inherit"
		if list.StatusTemplateID != nil {
			statusSource = "template"
		}

		real := &models.List{
			ID:               uuid.NewString(),
			WorkspaceID:      input.WorkspaceID,
			SpaceID:          space.ID,
			Name:             list.Name + company,
			Description:      list.Description,
			DefaultView:      list.DefaultView,
			StatusTemplateID: list.StatusTemplateID,
			StatusSource:     statusSource,
		}

		if list.FolderRefID != nil {
			if folderID, ok := folderIDMap[*list.FolderRefID]; ok {
				real.FolderID = &folderID
			}
		}

		if err := s.store.Structure().CreateList(ctx, real); err != nil {
			return nil, fmt.Errorf("failed to create list %q: %w", real.Name, err)
		}

		listIDMap[list.ID] = real.ID

		if list.StatusTemplateID != nil {
			if err := s.seedListStatuses(ctx, input.WorkspaceID, real.ID, *list.StatusTemplateID); err != nil {
				return nil, err
			}
		}
	}

	for _, task := range tasks {
		real := &models.Task{
			ID:              uuid.NewString(),
			WorkspaceID:     input.WorkspaceID,
			ListID:          listIDMap[task.ListRefID],
			StatusID:        defaultStatus.ID,
			Title:           task.Title,
			Description:     task.Description,
			Priority:        task.Priority,
			CreatedByUserID: identity.UserID,
			CreatedAt:       s.now(),
		}

		if err := s.store.Tasks().Create(ctx, real); err != nil {
			return nil, fmt.Errorf("failed to create task %q: %w", task.Title, err)
		}
	}

	if err := s.materializeAutomations(ctx, input, space.ID, lists, folderIDMap, listIDMap); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "template materialized",
		"template_id", input.TemplateID, "space_id", space.ID)

	return space, nil
}

// checkMaterializePermission gates materialization: elevated global roles
// pass, everyone else needs a workspace membership as admin or member.
func (s *Store) checkMaterializePermission(ctx context.Context, identity models.Identity, workspaceID string) error {
	if identity.IsElevated() {
		return nil
	}

	member, err := s.store.Members().GetMember(ctx, workspaceID, identity.UserID)
	if errors.Is(err, persistence.ErrMemberNotFound) {
		return fmt.Errorf("%w: user %s is not a member of workspace %s",
			ErrPermissionDenied, identity.UserID, workspaceID)
	}

	if err != nil {
		return err
	}

	if member.Role != models.RoleAdmin && member.Role != models.RoleMember {
		return fmt.Errorf("%w: role %s cannot create spaces", ErrPermissionDenied, member.Role)
	}

	return nil
}

// seedListStatuses creates the list's statuses from its status template, each
// carrying a back-reference to the template item it came from.
func (s *Store) seedListStatuses(ctx context.Context, workspaceID, listID, statusTemplateID string) error {
	items, err := s.store.Templates().ListStatusTemplateItems(ctx, statusTemplateID)
	if err != nil {
		return err
	}

	for _, item := range items {
		itemID := item.ID

		status := &models.Status{
			ID:             uuid.NewString(),
			WorkspaceID:    workspaceID,
			ScopeType:      models.ScopeList,
			ScopeID:        &listID,
			Name:           item.Name,
			IsDefault:      item.IsDefault,
			OrderIndex:     item.OrderIndex,
			TemplateItemID: &itemID,
		}

		if err := s.store.Statuses().Create(ctx, status); err != nil {
			return fmt.Errorf("failed to seed status %q for list %s: %w", item.Name, listID, err)
		}
	}

	return nil
}

// materializeAutomations copies the template's enabled automations into the
// workspace, anchored at the new space, folder or list. Unresolvable anchors
// drop the automation; ids inside configs remap best effort.
func (s *Store) materializeAutomations(ctx context.Context, input MaterializeInput, spaceID string, lists []*models.TemplateList, folderIDMap, listIDMap map[string]string) error {
	automations, err := s.store.Templates().ListTemplateAutomations(ctx, input.TemplateID, true)
	if err != nil {
		return err
	}

	if len(automations) == 0 {
		return nil
	}

	statusIDMap, err := s.buildStatusIDMap(ctx, lists, listIDMap)
	if err != nil {
		return err
	}

	for _, automation := range automations {
		scopeType, scopeID := resolveMaterializedScope(automation, spaceID, folderIDMap, listIDMap)
		if scopeID == "" {
			s.logger.WarnContext(ctx, "dropping automation with unresolved scope",
				"template_automation_id", automation.ID)

			continue
		}

		real := &models.Automation{
			ID:           uuid.NewString(),
			WorkspaceID:  input.WorkspaceID,
			Description:  automation.Description,
			Trigger:      automation.Trigger,
			ActionType:   automation.ActionType,
			ActionConfig: remapActionConfig(automation.ActionConfig, listIDMap, statusIDMap),
			ScopeType:    scopeType,
			ScopeID:      &scopeID,
			Enabled:      true,
			CreatedAt:    s.now(),
		}

		if err := s.store.Automations().Create(ctx, real); err != nil {
			return fmt.Errorf("failed to create automation from template: %w", err)
		}
	}

	return nil
}

// buildStatusIDMap maps status template item ids to the real statuses seeded
// for the new lists. The back-reference wins; name matching is the fallback
// for statuses created before back-references existed.
func (s *Store) buildStatusIDMap(ctx context.Context, lists []*models.TemplateList, listIDMap map[string]string) (map[string]string, error) {
	statusIDMap := make(map[string]string)

	for _, list := range lists {
		if list.StatusTemplateID == nil {
			continue
		}

		realListID, ok := listIDMap[list.ID]
		if !ok {
			continue
		}

		items, err := s.store.Templates().ListStatusTemplateItems(ctx, *list.StatusTemplateID)
		if err != nil {
			return nil, err
		}

		realStatuses, err := s.store.Statuses().ListByScope(ctx, models.ScopeList, realListID)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			matched := ""

			for _, status := range realStatuses {
				if status.TemplateItemID != nil && *status.TemplateItemID == item.ID {
					matched = status.ID

					break
				}
			}

			if matched == "" {
				for _, status := range realStatuses {
					if status.Name == item.Name {
						matched = status.ID

						break
					}
				}
			}

			if matched != "" {
				statusIDMap[item.ID] = matched
			}
		}
	}

	return statusIDMap, nil
}

// resolveMaterializedScope picks the real scope anchor for a template
// automation. Automations without a usable anchor default to the new space.
func resolveMaterializedScope(automation *models.TemplateAutomation, spaceID string, folderIDMap, listIDMap map[string]string) (models.ScopeType, string) {
	switch {
	case automation.ScopeType == models.ScopeFolder && automation.FolderRefID != nil:
		return models.ScopeFolder, folderIDMap[*automation.FolderRefID]
	case automation.ScopeType == models.ScopeList && automation.ListRefID != nil:
		return models.ScopeList, listIDMap[*automation.ListRefID]
	default:
		return models.ScopeSpace, spaceID
	}
}

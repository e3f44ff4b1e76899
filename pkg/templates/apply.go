package templates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// ApplyAutomationsToSpaces copies a template's enabled automations onto
// spaces that already exist. Template folders and lists match real ones by
// name prefix, the same convention materialization writes. Each space is
// processed independently; failures are collected in the summary.
func (s *Store) ApplyAutomationsToSpaces(ctx context.Context, templateID, workspaceID string, spaceIDs []string) (*models.ApplyAutomationsSummary, error) {
	summary := &models.ApplyAutomationsSummary{Errors: []string{}}

	templateFolders, err := s.store.Templates().ListTemplateFolders(ctx, templateID)
	if err != nil {
		return summary, err
	}

	templateLists, err := s.store.Templates().ListTemplateLists(ctx, templateID)
	if err != nil {
		return summary, err
	}

	automations, err := s.store.Templates().ListTemplateAutomations(ctx, templateID, true)
	if err != nil {
		return summary, err
	}

	if len(automations) == 0 {
		return summary, ErrNoEnabledAutomations
	}

	for _, spaceID := range spaceIDs {
		if err := s.applyToSpace(ctx, workspaceID, spaceID, templateFolders, templateLists, automations, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Space %s: %v", spaceID, err))

			continue
		}

		summary.SpacesProcessed++
	}

	return summary, nil
}

func (s *Store) applyToSpace(ctx context.Context, workspaceID, spaceID string, templateFolders []*models.TemplateFolder, templateLists []*models.TemplateList, automations []*models.TemplateAutomation, summary *models.ApplyAutomationsSummary) error {
	realFolders, err := s.store.Structure().ListFoldersBySpace(ctx, spaceID)
	if err != nil {
		return err
	}

	realLists, err := s.store.Structure().ListListsBySpace(ctx, spaceID)
	if err != nil {
		return err
	}

	folderIDMap := folderMapByName(templateFolders, realFolders)
	listIDMap := listMapByName(templateLists, realLists)

	for _, automation := range automations {
		real := remapForExistingSpace(automation, workspaceID, spaceID, folderIDMap, listIDMap)
		if real == nil {
			continue
		}

		real.CreatedAt = s.now()

		if err := s.store.Automations().Create(ctx, real); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Space %s: %v", spaceID, err))

			continue
		}

		summary.AutomationsCreated++
	}

	return nil
}

// remapForExistingSpace rewrites a template automation for a real space. A
// scope anchor that does not match any real entity drops the automation;
// move_task steps whose target list cannot be matched are removed from the
// copy.
func remapForExistingSpace(automation *models.TemplateAutomation, workspaceID, spaceID string, folderIDMap, listIDMap map[string]string) *models.Automation {
	config := cloneActionConfig(automation.ActionConfig)

	if len(config.Actions) > 0 {
		kept := config.Actions[:0]

		for _, step := range config.Actions {
			if step.Type == "move_task" {
				target, _ := step.Config["target_list_id"].(string)
				if target != "" {
					mapped, ok := listIDMap[target]
					if !ok {
						continue
					}

					step.Config["target_list_id"] = mapped
				}
			}

			kept = append(kept, step)
		}

		config.Actions = kept
	}

	scopeID := spaceID
	scopeType := models.ScopeSpace

	switch {
	case automation.ScopeType == models.ScopeList && automation.ListRefID != nil:
		mapped, ok := listIDMap[*automation.ListRefID]
		if !ok {
			return nil
		}

		scopeType, scopeID = models.ScopeList, mapped
	case automation.ScopeType == models.ScopeFolder && automation.FolderRefID != nil:
		mapped, ok := folderIDMap[*automation.FolderRefID]
		if !ok {
			return nil
		}

		scopeType, scopeID = models.ScopeFolder, mapped
	}

	return &models.Automation{
		ID:           uuid.NewString(),
		WorkspaceID:  workspaceID,
		Description:  automation.Description,
		Trigger:      automation.Trigger,
		ActionType:   automation.ActionType,
		ActionConfig: config,
		ScopeType:    scopeType,
		ScopeID:      &scopeID,
		Enabled:      true,
	}
}

// Package templates manages space template definitions and turns them into
// real workspace structure.
package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
)

var (
	// ErrPermissionDenied marks a caller without the workspace role needed to
	// materialize a template.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoEnabledAutomations marks a template without enabled automations to
	// copy onto existing spaces.
	ErrNoEnabledAutomations = errors.New("template has no enabled automations")

	// ErrDefaultStatusMissing marks a workspace without a default status, which
	// template tasks need.
	ErrDefaultStatusMissing = errors.New("workspace default status not found")
)

// FolderInput describes one folder of a template structure. Lists reference
// folders by index into the Folders slice.
type FolderInput struct {
	Name        string
	Description string
	OrderIndex  int
}

type ListInput struct {
	FolderRef        *int
	Name             string
	Description      string
	DefaultView      string
	OrderIndex       int
	StatusTemplateID *string
}

type TaskInput struct {
	ListRef     int
	Title       string
	Description string
	Priority    string
	OrderIndex  int
}

// StructureInput is the full structural payload of a template.
type StructureInput struct {
	Folders []FolderInput
	Lists   []ListInput
	Tasks   []TaskInput
}

// TemplateInput updates a template. A nil Structure leaves the structural rows
// untouched; a non-nil one replaces them wholesale.
type TemplateInput struct {
	Name        string
	Description string
	Color       string
	Structure   *StructureInput
}

// Store is the template definition store.
type Store struct {
	logger *slog.Logger
	store  persistence.Persistence
	now    func() time.Time
}

func NewStore(logger *slog.Logger, store persistence.Persistence) *Store {
	return &Store{
		logger: logger.With("module", "templates"),
		store:  store,
		now:    time.Now,
	}
}

// CreateTemplate stores a new global template together with its structure.
func (s *Store) CreateTemplate(ctx context.Context, identity models.Identity, name, description, color string, structure StructureInput) (*models.SpaceTemplate, error) {
	now := s.now()

	template := &models.SpaceTemplate{
		ID:              uuid.NewString(),
		CreatedByUserID: identity.UserID,
		Name:            name,
		Description:     description,
		Color:           color,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Templates().CreateTemplate(ctx, template); err != nil {
		return nil, err
	}

	if _, _, err := s.insertStructure(ctx, template.ID, structure); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "template created", "template_id", template.ID)

	return template, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*models.SpaceTemplate, error) {
	return s.store.Templates().GetTemplate(ctx, id)
}

func (s *Store) ListTemplates(ctx context.Context) ([]*models.SpaceTemplate, error) {
	return s.store.Templates().ListTemplates(ctx)
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	return s.store.Templates().DeleteTemplate(ctx, id)
}

// UpdateTemplate updates a template's metadata and, when a structure is
// given, replaces its folders, lists and tasks. Template automations survive a
// structural replace: their folder and list anchors are captured by name
// before the deletion and re-resolved against the new rows afterwards.
// Automations whose anchor no longer exists are dropped.
func (s *Store) UpdateTemplate(ctx context.Context, id string, input TemplateInput) (*models.SpaceTemplate, error) {
	template, err := s.store.Templates().GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	template.Name = input.Name
	template.Description = input.Description
	template.Color = input.Color
	template.UpdatedAt = s.now()

	if err := s.store.Templates().UpdateTemplateMeta(ctx, template); err != nil {
		return nil, err
	}

	if input.Structure == nil {
		return template, nil
	}

	automations, err := s.store.Templates().ListTemplateAutomations(ctx, id, false)
	if err != nil {
		return nil, err
	}

	oldFolderNames, oldListNames, err := s.captureNames(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Templates().DeleteTemplateStructure(ctx, id); err != nil {
		return nil, err
	}

	folderNameToID, listNameToID, err := s.insertStructure(ctx, id, *input.Structure)
	if err != nil {
		return nil, err
	}

	s.restoreAutomations(ctx, id, automations, oldFolderNames, oldListNames, folderNameToID, listNameToID)

	return template, nil
}

// DuplicateTemplate copies a template's structure into a new template, with
// every symbolic cross-reference pointing at the copied rows.
func (s *Store) DuplicateTemplate(ctx context.Context, identity models.Identity, templateID string) (*models.SpaceTemplate, error) {
	original, err := s.store.Templates().GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	folders, err := s.store.Templates().ListTemplateFolders(ctx, templateID)
	if err != nil {
		return nil, err
	}

	lists, err := s.store.Templates().ListTemplateLists(ctx, templateID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.Templates().ListTemplateTasks(ctx, templateID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	duplicate := &models.SpaceTemplate{
		ID:              uuid.NewString(),
		CreatedByUserID: identity.UserID,
		Name:            original.Name + " (copy)",
		Description:     original.Description,
		Color:           original.Color,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Templates().CreateTemplate(ctx, duplicate); err != nil {
		return nil, err
	}

	folderIDMap := make(map[string]string, len(folders))

	for _, folder := range folders {
		copied := &models.TemplateFolder{
			ID:          uuid.NewString(),
			TemplateID:  duplicate.ID,
			Name:        folder.Name,
			Description: folder.Description,
			OrderIndex:  folder.OrderIndex,
		}

		if err := s.store.Templates().CreateTemplateFolder(ctx, copied); err != nil {
			return nil, err
		}

		folderIDMap[folder.ID] = copied.ID
	}

	listIDMap := make(map[string]string, len(lists))

	for _, list := range lists {
		copied := &models.TemplateList{
			ID:               uuid.NewString(),
			TemplateID:       duplicate.ID,
			Name:             list.Name,
			Description:      list.Description,
			DefaultView:      list.DefaultView,
			OrderIndex:       list.OrderIndex,
			StatusTemplateID: list.StatusTemplateID,
		}

		if list.FolderRefID != nil {
			if newID, ok := folderIDMap[*list.FolderRefID]; ok {
				copied.FolderRefID = &newID
			}
		}

		if err := s.store.Templates().CreateTemplateList(ctx, copied); err != nil {
			return nil, err
		}

		listIDMap[list.ID] = copied.ID
	}

	for _, task := range tasks {
		copied := &models.TemplateTask{
			ID:          uuid.NewString(),
			TemplateID:  duplicate.ID,
			ListRefID:   listIDMap[task.ListRefID],
			Title:       task.Title,
			Description: task.Description,
			Priority:    task.Priority,
			OrderIndex:  task.OrderIndex,
		}

		if err := s.store.Templates().CreateTemplateTask(ctx, copied); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "template duplicated",
		"template_id", templateID, "duplicate_id", duplicate.ID)

	return duplicate, nil
}

// StatusItemInput describes one status of a status template.
type StatusItemInput struct {
	Name       string
	OrderIndex int
	IsDefault  bool
}

// CreateStatusTemplate stores a named status set lists can be seeded from.
func (s *Store) CreateStatusTemplate(ctx context.Context, name string, items []StatusItemInput) (*models.StatusTemplate, error) {
	template := &models.StatusTemplate{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := s.store.Templates().CreateStatusTemplate(ctx, template); err != nil {
		return nil, err
	}

	for _, item := range items {
		row := &models.StatusTemplateItem{
			ID:         uuid.NewString(),
			TemplateID: template.ID,
			Name:       item.Name,
			OrderIndex: item.OrderIndex,
			IsDefault:  item.IsDefault,
		}

		if err := s.store.Templates().CreateStatusTemplateItem(ctx, row); err != nil {
			return nil, err
		}
	}

	return template, nil
}

// insertStructure creates the structural rows of a template and returns
// name→id maps for the new folders and lists.
func (s *Store) insertStructure(ctx context.Context, templateID string, structure StructureInput) (map[string]string, map[string]string, error) {
	folderIDs := make([]string, len(structure.Folders))
	folderNameToID := make(map[string]string, len(structure.Folders))

	for i, folder := range structure.Folders {
		row := &models.TemplateFolder{
			ID:          uuid.NewString(),
			TemplateID:  templateID,
			Name:        folder.Name,
			Description: folder.Description,
			OrderIndex:  folder.OrderIndex,
		}

		if err := s.store.Templates().CreateTemplateFolder(ctx, row); err != nil {
			return nil, nil, err
		}

		folderIDs[i] = row.ID
		folderNameToID[row.Name] = row.ID
	}

	listIDs := make([]string, len(structure.Lists))
	listNameToID := make(map[string]string, len(structure.Lists))

	for i, list := range structure.Lists {
		row := &models.TemplateList{
			ID:               uuid.NewString(),
			TemplateID:       templateID,
			Name:             list.Name,
			Description:      list.Description,
			DefaultView:      list.DefaultView,
			OrderIndex:       list.OrderIndex,
			StatusTemplateID: list.StatusTemplateID,
		}

		if list.FolderRef != nil && *list.FolderRef >= 0 && *list.FolderRef < len(folderIDs) {
			row.FolderRefID = &folderIDs[*list.FolderRef]
		}

		if err := s.store.Templates().CreateTemplateList(ctx, row); err != nil {
			return nil, nil, err
		}

		listIDs[i] = row.ID
		listNameToID[row.Name] = row.ID
	}

	for _, task := range structure.Tasks {
		if task.ListRef < 0 || task.ListRef >= len(listIDs) {
			return nil, nil, fmt.Errorf("task %q references unknown list index %d", task.Title, task.ListRef)
		}

		row := &models.TemplateTask{
			ID:          uuid.NewString(),
			TemplateID:  templateID,
			ListRefID:   listIDs[task.ListRef],
			Title:       task.Title,
			Description: task.Description,
			Priority:    task.Priority,
			OrderIndex:  task.OrderIndex,
		}

		if err := s.store.Templates().CreateTemplateTask(ctx, row); err != nil {
			return nil, nil, err
		}
	}

	return folderNameToID, listNameToID, nil
}

// captureNames records id→name maps of a template's folders and lists before
// a structural replace destroys the ids.
func (s *Store) captureNames(ctx context.Context, templateID string) (map[string]string, map[string]string, error) {
	folders, err := s.store.Templates().ListTemplateFolders(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}

	lists, err := s.store.Templates().ListTemplateLists(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}

	folderNames := make(map[string]string, len(folders))
	for _, folder := range folders {
		folderNames[folder.ID] = folder.Name
	}

	listNames := make(map[string]string, len(lists))
	for _, list := range lists {
		listNames[list.ID] = list.Name
	}

	return folderNames, listNames, nil
}

// restoreAutomations re-inserts captured automations after a structural
// replace. Anchors resolve old id → name → new id; list ids inside move_task
// actions are rewritten the same way. Failures are logged, not propagated:
// the structural update already succeeded.
func (s *Store) restoreAutomations(ctx context.Context, templateID string, automations []*models.TemplateAutomation, oldFolderNames, oldListNames, folderNameToID, listNameToID map[string]string) {
	oldListToNew := make(map[string]string, len(oldListNames))

	for oldID, name := range oldListNames {
		if newID, ok := listNameToID[name]; ok {
			oldListToNew[oldID] = newID
		}
	}

	for _, automation := range automations {
		var folderRefID, listRefID *string

		if automation.FolderRefID != nil {
			if name, ok := oldFolderNames[*automation.FolderRefID]; ok {
				if newID, ok := folderNameToID[name]; ok {
					folderRefID = &newID
				}
			}
		}

		if automation.ListRefID != nil {
			if name, ok := oldListNames[*automation.ListRefID]; ok {
				if newID, ok := listNameToID[name]; ok {
					listRefID = &newID
				}
			}
		}

		if automation.ScopeType == models.ScopeList && listRefID == nil {
			continue
		}

		if automation.ScopeType == models.ScopeFolder && folderRefID == nil {
			continue
		}

		restored := &models.TemplateAutomation{
			ID:           uuid.NewString(),
			TemplateID:   templateID,
			Description:  automation.Description,
			Trigger:      automation.Trigger,
			ActionType:   automation.ActionType,
			ActionConfig: remapMoveTargets(automation.ActionConfig, oldListToNew),
			ScopeType:    automation.ScopeType,
			FolderRefID:  folderRefID,
			ListRefID:    listRefID,
			Enabled:      automation.Enabled,
			CreatedAt:    s.now(),
		}

		if err := s.store.Templates().CreateTemplateAutomation(ctx, restored); err != nil {
			s.logger.ErrorContext(ctx, "failed to restore template automation",
				"template_id", templateID, "automation_id", automation.ID, "error", err)
		}
	}
}

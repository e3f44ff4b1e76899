package templates

import (
	"context"

	"github.com/google/uuid"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// CreateTemplateAutomation adds an automation definition to a template. New
// template automations start enabled.
func (s *Store) CreateTemplateAutomation(ctx context.Context, automation *models.TemplateAutomation) error {
	if automation.ID == "" {
		automation.ID = uuid.NewString()
	}

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = s.now()
	}

	automation.Enabled = true

	return s.store.Templates().CreateTemplateAutomation(ctx, automation)
}

func (s *Store) UpdateTemplateAutomation(ctx context.Context, automation *models.TemplateAutomation) error {
	return s.store.Templates().UpdateTemplateAutomation(ctx, automation)
}

func (s *Store) DeleteTemplateAutomation(ctx context.Context, id string) error {
	return s.store.Templates().DeleteTemplateAutomation(ctx, id)
}

func (s *Store) ListTemplateAutomations(ctx context.Context, templateID string) ([]*models.TemplateAutomation, error) {
	return s.store.Templates().ListTemplateAutomations(ctx, templateID, false)
}

// ToggleTemplateAutomation flips an automation's enabled flag.
func (s *Store) ToggleTemplateAutomation(ctx context.Context, id string, enabled bool) error {
	automation, err := s.store.Templates().GetTemplateAutomation(ctx, id)
	if err != nil {
		return err
	}

	automation.Enabled = enabled

	return s.store.Templates().UpdateTemplateAutomation(ctx, automation)
}

// DuplicateTemplateAutomation copies an automation within its template. The
// copy is marked as a clone in its description and starts disabled so it
// cannot fire until reviewed.
func (s *Store) DuplicateTemplateAutomation(ctx context.Context, id string) (*models.TemplateAutomation, error) {
	original, err := s.store.Templates().GetTemplateAutomation(ctx, id)
	if err != nil {
		return nil, err
	}

	description := "CLONE"
	if original.Description != "" {
		description = "CLONE - " + original.Description
	}

	duplicate := &models.TemplateAutomation{
		ID:           uuid.NewString(),
		TemplateID:   original.TemplateID,
		Description:  description,
		Trigger:      original.Trigger,
		ActionType:   original.ActionType,
		ActionConfig: original.ActionConfig,
		ScopeType:    original.ScopeType,
		FolderRefID:  original.FolderRefID,
		ListRefID:    original.ListRefID,
		Enabled:      false,
		CreatedAt:    s.now(),
	}

	if err := s.store.Templates().CreateTemplateAutomation(ctx, duplicate); err != nil {
		return nil, err
	}

	return duplicate, nil
}

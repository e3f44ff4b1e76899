package templates_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/templates"
)

func TestApplyAutomationsToSpaces_RequiresEnabledAutomations(t *testing.T) {
	ctx := context.Background()
	templateStore, _ := newTemplateStore(t)
	template := seedTemplate(t, templateStore)

	_, err := templateStore.ApplyAutomationsToSpaces(ctx, template.ID, "ws-1", []string{"space-1"})
	assert.ErrorIs(t, err, templates.ErrNoEnabledAutomations)
}

func TestApplyAutomationsToSpaces_MatchesByNamePrefix(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	template := seedTemplate(t, templateStore)

	templateLists, err := store.Templates().ListTemplateLists(ctx, template.ID)
	require.NoError(t, err)

	kickoffRef := templateLists[0].ID
	backlogRef := templateLists[1].ID

	automation := &models.TemplateAutomation{
		TemplateID:  template.ID,
		Description: "Move done work",
		Trigger:     models.TriggerOnStatusChanged,
		ScopeType:   models.ScopeList,
		ListRefID:   &kickoffRef,
		ActionConfig: models.ActionConfig{
			Actions: []models.ActionStep{
				{Type: "move_task", Config: map[string]any{"target_list_id": backlogRef}},
			},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, automation))

	// A space materialized earlier from the same template: names carry the
	// company suffix after the template name prefix.
	require.NoError(t, store.Structure().CreateSpace(ctx, &models.Space{
		ID: "space-1", WorkspaceID: "ws-1", Name: "Onboarding | Acme Corp", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Structure().CreateList(ctx, &models.List{
		ID: "real-kickoff", WorkspaceID: "ws-1", SpaceID: "space-1", Name: "Kickoff | Acme Corp",
	}))
	require.NoError(t, store.Structure().CreateList(ctx, &models.List{
		ID: "real-backlog", WorkspaceID: "ws-1", SpaceID: "space-1", Name: "Backlog | Acme Corp",
	}))

	summary, err := templateStore.ApplyAutomationsToSpaces(ctx, template.ID, "ws-1", []string{"space-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SpacesProcessed)
	assert.Equal(t, 1, summary.AutomationsCreated)
	assert.Empty(t, summary.Errors)

	created, err := store.Automations().ListEnabledByTrigger(ctx, "ws-1", models.TriggerOnStatusChanged)
	require.NoError(t, err)
	require.Len(t, created, 1)

	assert.Equal(t, models.ScopeList, created[0].ScopeType)
	require.NotNil(t, created[0].ScopeID)
	assert.Equal(t, "real-kickoff", *created[0].ScopeID)
	assert.Equal(t, "real-backlog", created[0].ActionConfig.Actions[0].Config["target_list_id"])
}

func TestApplyAutomationsToSpaces_DropsUnmappableAnchors(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	template := seedTemplate(t, templateStore)

	templateLists, err := store.Templates().ListTemplateLists(ctx, template.ID)
	require.NoError(t, err)

	kickoffRef := templateLists[0].ID
	backlogRef := templateLists[1].ID

	// List-scoped automation whose list has no counterpart in the space.
	anchored := &models.TemplateAutomation{
		TemplateID: template.ID,
		Trigger:    models.TriggerOnStatusChanged,
		ScopeType:  models.ScopeList,
		ListRefID:  &backlogRef,
		ActionConfig: models.ActionConfig{
			Actions: []models.ActionStep{{Type: "archive_task"}},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, anchored))

	// Space-scoped automation with one unmappable move step and one portable
	// step.
	mixed := &models.TemplateAutomation{
		TemplateID: template.ID,
		Trigger:    models.TriggerOnStatusChanged,
		ScopeType:  models.ScopeSpace,
		ActionConfig: models.ActionConfig{
			Actions: []models.ActionStep{
				{Type: "move_task", Config: map[string]any{"target_list_id": kickoffRef}},
				{Type: "set_priority", Config: map[string]any{"priority": "high"}},
			},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, mixed))

	// The space only has a list matching neither template list.
	require.NoError(t, store.Structure().CreateSpace(ctx, &models.Space{
		ID: "space-1", WorkspaceID: "ws-1", Name: "Other | Beta Ltd", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Structure().CreateList(ctx, &models.List{
		ID: "real-other", WorkspaceID: "ws-1", SpaceID: "space-1", Name: "Inbox | Beta Ltd",
	}))

	summary, err := templateStore.ApplyAutomationsToSpaces(ctx, template.ID, "ws-1", []string{"space-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SpacesProcessed)
	assert.Equal(t, 1, summary.AutomationsCreated)

	created, err := store.Automations().ListEnabledByTrigger(ctx, "ws-1", models.TriggerOnStatusChanged)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Only the space-scoped automation survives, with the move step removed.
	assert.Equal(t, models.ScopeSpace, created[0].ScopeType)
	require.Len(t, created[0].ActionConfig.Actions, 1)
	assert.Equal(t, "set_priority", created[0].ActionConfig.Actions[0].Type)
}

func TestApplyAutomationsToSpaces_ProcessesSpacesIndependently(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	template := seedTemplate(t, templateStore)

	automation := &models.TemplateAutomation{
		TemplateID: template.ID,
		Trigger:    models.TriggerOnStatusChanged,
		ScopeType:  models.ScopeSpace,
		ActionConfig: models.ActionConfig{
			Actions: []models.ActionStep{{Type: "archive_task"}},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, automation))

	require.NoError(t, store.Structure().CreateSpace(ctx, &models.Space{
		ID: "space-1", WorkspaceID: "ws-1", Name: "Onboarding | Acme Corp", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Structure().CreateSpace(ctx, &models.Space{
		ID: "space-2", WorkspaceID: "ws-1", Name: "Onboarding | Beta Ltd", CreatedAt: time.Now(),
	}))

	summary, err := templateStore.ApplyAutomationsToSpaces(ctx, template.ID, "ws-1",
		[]string{"space-1", "space-2"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SpacesProcessed)
	assert.Equal(t, 2, summary.AutomationsCreated)
	assert.Empty(t, summary.Errors)
}

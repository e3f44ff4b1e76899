package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
	"github.com/operacional-ops/mapflow/pkg/templates"
	"github.com/operacional-ops/mapflow/pkg/testutil"
)

var (
	elevated = models.Identity{UserID: "user-1", GlobalRoles: []string{models.RoleOwner}}
	member   = models.Identity{UserID: "user-2"}
)

func newTemplateStore(t *testing.T) (*templates.Store, persistence.Persistence) {
	t.Helper()

	store := testutil.NewStore(t)

	return templates.NewStore(testutil.Logger(), store), store
}

func seedDefaultStatus(t *testing.T, store persistence.Persistence) *models.Status {
	t.Helper()

	status := &models.Status{
		ID: "status-default", WorkspaceID: "ws-1", ScopeType: models.ScopeWorkspace,
		Name: "Todo", IsDefault: true, OrderIndex: 1,
	}
	require.NoError(t, store.Statuses().Create(context.Background(), status))

	return status
}

// seedTemplate builds a template with one folder, a list inside it, a
// standalone list and a task.
func seedTemplate(t *testing.T, templateStore *templates.Store) *models.SpaceTemplate {
	t.Helper()

	folderRef := 0

	template, err := templateStore.CreateTemplate(context.Background(), elevated,
		"Client Onboarding", "", "", templates.StructureInput{
			Folders: []templates.FolderInput{
				{Name: "Setup | ", OrderIndex: 0},
			},
			Lists: []templates.ListInput{
				{FolderRef: &folderRef, Name: "Kickoff | ", OrderIndex: 0},
				{Name: "Backlog | ", OrderIndex: 1},
			},
			Tasks: []templates.TaskInput{
				{ListRef: 0, Title: "Collect credentials", Priority: models.PriorityHigh},
			},
		})
	require.NoError(t, err)

	return template
}

func TestMaterialize_CreatesStructure(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	seedDefaultStatus(t, store)
	template := seedTemplate(t, templateStore)

	space, err := templateStore.Materialize(ctx, elevated, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Onboarding | Acme Corp",
	})
	require.NoError(t, err)
	assert.Equal(t, "Onboarding | Acme Corp", space.Name)

	folders, err := store.Structure().ListFoldersBySpace(ctx, space.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Setup | Acme Corp", folders[0].Name)

	lists, err := store.Structure().ListListsBySpace(ctx, space.ID)
	require.NoError(t, err)
	require.Len(t, lists, 2)

	byName := map[string]*models.List{}
	for _, list := range lists {
		byName[list.Name] = list
	}

	kickoff := byName["Kickoff | Acme Corp"]
	require.NotNil(t, kickoff)
	require.NotNil(t, kickoff.FolderID)
	assert.Equal(t, folders[0].ID, *kickoff.FolderID)

	backlog := byName["Backlog | Acme Corp"]
	require.NotNil(t, backlog)
	assert.Nil(t, backlog.FolderID)
}

func TestMaterialize_MemberRoleAllowed(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	seedDefaultStatus(t, store)
	template := seedTemplate(t, templateStore)

	_, err := templateStore.Materialize(ctx, member, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Onboarding | Acme Corp",
	})
	assert.ErrorIs(t, err, templates.ErrPermissionDenied)

	require.NoError(t, store.Members().AddMember(ctx, &models.WorkspaceMember{
		WorkspaceID: "ws-1", UserID: member.UserID, Role: models.RoleMember,
	}))

	space, err := templateStore.Materialize(ctx, member, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Onboarding | Acme Corp",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, space.ID)
}

func TestMaterialize_PermissionGate(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	seedDefaultStatus(t, store)
	template := seedTemplate(t, templateStore)

	input := templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Onboarding | Acme Corp",
	}

	// Not a member at all.
	_, err := templateStore.Materialize(ctx, models.Identity{UserID: "stranger"}, input)
	assert.ErrorIs(t, err, templates.ErrPermissionDenied)

	// Guests cannot create spaces.
	require.NoError(t, store.Members().AddMember(ctx, &models.WorkspaceMember{
		WorkspaceID: "ws-1", UserID: "guest-1", Role: models.RoleGuest,
	}))

	_, err = templateStore.Materialize(ctx, models.Identity{UserID: "guest-1"}, input)
	assert.ErrorIs(t, err, templates.ErrPermissionDenied)

	// Elevated global roles bypass membership entirely.
	_, err = templateStore.Materialize(ctx, elevated, input)
	assert.NoError(t, err)
}

func TestMaterialize_RequiresDefaultStatus(t *testing.T) {
	ctx := context.Background()
	templateStore, _ := newTemplateStore(t)
	template := seedTemplate(t, templateStore)

	_, err := templateStore.Materialize(ctx, elevated, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Onboarding | Acme Corp",
	})
	assert.ErrorIs(t, err, templates.ErrDefaultStatusMissing)
}

func TestMaterialize_SeedsListStatusesFromTemplate(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	seedDefaultStatus(t, store)

	statusTemplate, err := templateStore.CreateStatusTemplate(ctx, "Delivery", []templates.StatusItemInput{
		{Name: "Open", OrderIndex: 0, IsDefault: true},
		{Name: "Shipped", OrderIndex: 1},
	})
	require.NoError(t, err)

	template, err := templateStore.CreateTemplate(ctx, elevated, "Delivery Flow", "", "",
		templates.StructureInput{
			Lists: []templates.ListInput{
				{Name: "Orders | ", StatusTemplateID: &statusTemplate.ID},
			},
		})
	require.NoError(t, err)

	space, err := templateStore.Materialize(ctx, elevated, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Delivery | Acme Corp",
	})
	require.NoError(t, err)

	lists, err := store.Structure().ListListsBySpace(ctx, space.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "template", lists[0].StatusSource)

	statuses, err := store.Statuses().ListByScope(ctx, models.ScopeList, lists[0].ID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Open", statuses[0].Name)
	assert.True(t, statuses[0].IsDefault)
	require.NotNil(t, statuses[0].TemplateItemID)
}

func TestMaterialize_RemapsAutomations(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	seedDefaultStatus(t, store)

	statusTemplate, err := templateStore.CreateStatusTemplate(ctx, "Delivery", []templates.StatusItemInput{
		{Name: "Open", OrderIndex: 0, IsDefault: true},
		{Name: "Shipped", OrderIndex: 1},
	})
	require.NoError(t, err)

	items, err := store.Templates().ListStatusTemplateItems(ctx, statusTemplate.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	template, err := templateStore.CreateTemplate(ctx, elevated, "Delivery Flow", "", "",
		templates.StructureInput{
			Lists: []templates.ListInput{
				{Name: "Orders | ", StatusTemplateID: &statusTemplate.ID},
				{Name: "Archive | ", OrderIndex: 1},
			},
		})
	require.NoError(t, err)

	templateLists, err := store.Templates().ListTemplateLists(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, templateLists, 2)

	ordersRef := templateLists[0].ID
	archiveRef := templateLists[1].ID

	automation := &models.TemplateAutomation{
		TemplateID:  template.ID,
		Description: "Archive shipped orders",
		Trigger:     models.TriggerOnStatusChanged,
		ScopeType:   models.ScopeList,
		ListRefID:   &ordersRef,
		ActionConfig: models.ActionConfig{
			TriggerConfig: &models.TriggerConfig{ToStatusIDs: []string{items[1].ID}},
			Actions: []models.ActionStep{
				{Type: "move_task", Config: map[string]any{"target_list_id": archiveRef}},
			},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, automation))

	space, err := templateStore.Materialize(ctx, elevated, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Delivery | Acme Corp",
	})
	require.NoError(t, err)

	lists, err := store.Structure().ListListsBySpace(ctx, space.ID)
	require.NoError(t, err)

	realListByName := map[string]string{}
	for _, list := range lists {
		realListByName[list.Name] = list.ID
	}

	created, err := store.Automations().ListEnabledByTrigger(ctx, "ws-1", models.TriggerOnStatusChanged)
	require.NoError(t, err)
	require.Len(t, created, 1)

	assert.Equal(t, models.ScopeList, created[0].ScopeType)
	require.NotNil(t, created[0].ScopeID)
	assert.Equal(t, realListByName["Orders | Acme Corp"], *created[0].ScopeID)

	require.Len(t, created[0].ActionConfig.Actions, 1)
	assert.Equal(t, realListByName["Archive | Acme Corp"],
		created[0].ActionConfig.Actions[0].Config["target_list_id"])

	// The status filter now points at the seeded list status, not the item id.
	seeded, err := store.Statuses().ListByScope(ctx, models.ScopeList, realListByName["Orders | Acme Corp"])
	require.NoError(t, err)

	var shippedID string

	for _, status := range seeded {
		if status.Name == "Shipped" {
			shippedID = status.ID
		}
	}

	require.NotEmpty(t, shippedID)
	require.NotNil(t, created[0].ActionConfig.TriggerConfig)
	assert.Equal(t, []string{shippedID}, created[0].ActionConfig.TriggerConfig.ToStatusIDs)
}

func TestMaterialize_DropsAutomationWithUnresolvedAnchor(t *testing.T) {
	ctx := context.Background()
	templateStore, store := newTemplateStore(t)
	seedDefaultStatus(t, store)
	template := seedTemplate(t, templateStore)

	ghostRef := "tl-ghost"
	dangling := &models.TemplateAutomation{
		TemplateID: template.ID,
		Trigger:    models.TriggerOnStatusChanged,
		ScopeType:  models.ScopeList,
		ListRefID:  &ghostRef,
		ActionConfig: models.ActionConfig{
			Actions: []models.ActionStep{{Type: "archive_task"}},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, dangling))

	unanchored := &models.TemplateAutomation{
		TemplateID: template.ID,
		Trigger:    models.TriggerOnStatusChanged,
		ScopeType:  models.ScopeWorkspace,
		ActionConfig: models.ActionConfig{
			Actions: []models.ActionStep{{Type: "archive_task"}},
		},
	}
	require.NoError(t, templateStore.CreateTemplateAutomation(ctx, unanchored))

	space, err := templateStore.Materialize(ctx, elevated, templates.MaterializeInput{
		TemplateID:  template.ID,
		WorkspaceID: "ws-1",
		SpaceName:   "Onboarding | Acme Corp",
	})
	require.NoError(t, err)

	created, err := store.Automations().ListEnabledByTrigger(ctx, "ws-1", models.TriggerOnStatusChanged)
	require.NoError(t, err)

	// The dangling list anchor is dropped; the unanchored one falls back to
	// the new space.
	require.Len(t, created, 1)
	assert.Equal(t, models.ScopeSpace, created[0].ScopeType)
	require.NotNil(t, created[0].ScopeID)
	assert.Equal(t, space.ID, *created[0].ScopeID)
}

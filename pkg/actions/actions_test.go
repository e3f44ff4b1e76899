package actions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operacional-ops/mapflow/pkg/actions"
	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence"
	"github.com/operacional-ops/mapflow/pkg/testutil"
)

var fixedNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

// newExecutionContext seeds a task and wires an execution context around it.
func newExecutionContext(t *testing.T, store persistence.Persistence, overrides ...func(*models.Task)) actions.ExecutionContext {
	t.Helper()

	task := testutil.CreateTestTask(overrides...)
	require.NoError(t, store.Tasks().Create(context.Background(), task))

	return actions.ExecutionContext{
		Store:          store,
		Task:           task,
		Identity:       models.Identity{UserID: "user-1"},
		AutomationName: "Test Automation",
		Now:            func() time.Time { return fixedNow },
	}
}

func TestRegistry_CreateAction_NotRegistered(t *testing.T) {
	registry := actions.NewDefaultRegistry(testutil.Logger())

	_, err := registry.CreateAction("explode_task", nil)
	assert.ErrorIs(t, err, actions.ErrNotRegistered)
	assert.False(t, registry.IsRegistered("explode_task"))
	assert.True(t, registry.IsRegistered("create_subtask"))
	assert.True(t, registry.IsRegistered("auto_assign_user"))
}

func TestRegistry_ValidateConfig(t *testing.T) {
	registry := actions.NewDefaultRegistry(testutil.Logger())

	assert.NoError(t, registry.ValidateConfig("set_priority", map[string]any{"priority": "high"}))
	assert.NoError(t, registry.ValidateConfig("set_priority", nil))

	err := registry.ValidateConfig("set_priority", map[string]any{"priority": "extreme"})
	assert.Error(t, err)

	err = registry.ValidateConfig("set_due_date", map[string]any{"days_from_now": "soon-ish"})
	assert.Error(t, err)

	assert.ErrorIs(t, registry.ValidateConfig("explode_task", nil), actions.ErrNotRegistered)
}

func TestCreateSubtask_UsesDefaultStatusAndTitle(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	require.NoError(t, store.Statuses().Create(ctx, &models.Status{
		ID: "status-todo", WorkspaceID: "ws-1", ScopeType: models.ScopeWorkspace,
		Name: "Todo", IsDefault: true, OrderIndex: 1,
	}))

	action, err := actions.NewCreateSubtaskFactory().Create(nil)
	require.NoError(t, err)

	result, err := action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SubtasksCreated)

	has, err := store.Tasks().HasSubtasks(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.True(t, has)

	activities, err := store.Activities().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "subtask.created", activities[0].ActivityType)
	assert.Equal(t, "Automatic subtask", activities[0].Metadata["subtask_title"])
	assert.Equal(t, "automation", activities[0].Metadata["created_by"])
	assert.Equal(t, "Test Automation", activities[0].Metadata["automation_name"])
}

func TestCreateSubtask_FallsBackToFirstStatusByOrder(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	// No default flagged; the lowest order index wins.
	require.NoError(t, store.Statuses().Create(ctx, &models.Status{
		ID: "status-later", WorkspaceID: "ws-1", ScopeType: models.ScopeWorkspace,
		Name: "Later", OrderIndex: 5,
	}))
	require.NoError(t, store.Statuses().Create(ctx, &models.Status{
		ID: "status-first", WorkspaceID: "ws-1", ScopeType: models.ScopeWorkspace,
		Name: "First", OrderIndex: 1,
	}))

	action, err := actions.NewCreateSubtaskFactory().Create(map[string]any{
		"subtask_title": "Review checklist",
	})
	require.NoError(t, err)

	result, err := action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SubtasksCreated)

	activities, err := store.Activities().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Review checklist", activities[0].Metadata["subtask_title"])
}

func TestCreateSubtask_NoStatusInWorkspace(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewCreateSubtaskFactory().Create(nil)
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	assert.ErrorContains(t, err, "no status found for subtask")
}

func TestSetPriority_DefaultsToMedium(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store, func(task *models.Task) {
		task.Priority = models.PriorityUrgent
	})

	action, err := actions.NewSetPriorityFactory().Create(nil)
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, got.Priority)

	activities, err := store.Activities().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "priority.changed", activities[0].ActivityType)
	assert.Equal(t, models.PriorityUrgent, *activities[0].OldValue)
	assert.Equal(t, models.PriorityMedium, *activities[0].NewValue)
}

func TestAddAssignee_LegacySingleUser(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	require.NoError(t, store.Profiles().Upsert(ctx, &models.Profile{
		ID: "user-9", FullName: "Ana Silva",
	}))

	action, err := actions.NewAddAssigneeFactory().Create(map[string]any{
		"user_id": "user-9",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	users, err := store.Assignees().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-9"}, users)

	activities, err := store.Activities().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "assignee.added", activities[0].ActivityType)
	assert.Equal(t, "Ana Silva", *activities[0].NewValue)
	assert.Equal(t, "user-9", activities[0].Metadata["assignee_id"])
}

func TestAddAssignee_AlreadyAssigned(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	require.NoError(t, store.Assignees().Add(ctx, execCtx.Task.ID, "user-2"))

	action, err := actions.NewAddAssigneeFactory().Create(map[string]any{
		"user_ids": []any{"user-2", "user-3"},
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	users, err := store.Assignees().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2", "user-3"}, users)
}

func TestSetDueDate_DaysFromNowWinsOverAbsolute(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewSetDueDateFactory().Create(map[string]any{
		"days_from_now": float64(3),
		"due_date":      "2030-01-01",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2025-06-13", got.DueDate.Format("2006-01-02"))
}

func TestSetDueDate_AbsoluteDate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewSetDueDateFactory().Create(map[string]any{
		"due_date": "2025-12-24",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2025-12-24", got.DueDate.Format("2006-01-02"))
}

func TestSetDueDate_InvalidDate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewSetDueDateFactory().Create(map[string]any{
		"due_date": "24/12/2025",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	assert.ErrorContains(t, err, "invalid due date")
}

func TestSetDueDate_NoConfigIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewSetDueDateFactory().Create(nil)
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
}

func TestSetStatus_ReportsNewStatus(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewSetStatusFactory().Create(map[string]any{
		"status_id": "status-done",
	})
	require.NoError(t, err)

	result, err := action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, "status-done", result.NewStatusID)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "status-done", got.StatusID)
}

func TestSetStatus_WithoutStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewSetStatusFactory().Create(nil)
	require.NoError(t, err)

	result, err := action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)
	assert.Empty(t, result.NewStatusID)
}

func TestAddTag_CreatesMissingTag(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewAddTagFactory().Create(map[string]any{
		"tag_name": "blocked",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	names, err := store.Tags().NamesForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"blocked"}, names)

	// Running again reuses the tag and keeps a single relation.
	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	names, err = store.Tags().NamesForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"blocked"}, names)
}

func TestRemoveTag_MissingTagIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewRemoveTagFactory().Create(map[string]any{
		"tag_name": "ghost",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	assert.NoError(t, err)
}

func TestRemoveTag_DetachesExistingTag(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	tag := &models.Tag{ID: "tag-1", WorkspaceID: "ws-1", Name: "blocked"}
	require.NoError(t, store.Tags().Create(ctx, tag))
	require.NoError(t, store.Tags().AttachToTask(ctx, execCtx.Task.ID, tag.ID))

	action, err := actions.NewRemoveTagFactory().Create(map[string]any{
		"tag_name": "blocked",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	names, err := store.Tags().NamesForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMoveTask_MovesToTargetList(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewMoveTaskFactory().Create(map[string]any{
		"target_list_id": "list-9",
	})
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "list-9", got.ListID)

	activities, err := store.Activities().ListForTask(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "task.moved", activities[0].ActivityType)
	assert.Equal(t, "list-1", *activities[0].OldValue)
	assert.Equal(t, "list-9", *activities[0].NewValue)
}

func TestArchiveTask_StampsArchivedAt(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	execCtx := newExecutionContext(t, store)

	action, err := actions.NewArchiveTaskFactory().Create(nil)
	require.NoError(t, err)

	_, err = action.Execute(ctx, execCtx, testutil.Logger())
	require.NoError(t, err)

	got, err := store.Tasks().GetByID(ctx, execCtx.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ArchivedAt)
	assert.True(t, got.ArchivedAt.Equal(fixedNow))
}

// Package persistence provides the data storage abstraction layer for the
// automation engine: tasks, statuses, tags, automations, templates and
// activity logs.
package persistence

import (
	"context"
	"time"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// Persistence aggregates the repositories the engine reads from and writes
// to. Implementations guarantee per-statement atomicity only; the engine does
// not rely on cross-statement transactions.
type Persistence interface {
	Tasks() TaskRepository
	Statuses() StatusRepository
	Tags() TagRepository
	Assignees() AssigneeRepository
	Automations() AutomationRepository
	Structure() StructureRepository
	Templates() TemplateRepository
	Activities() ActivityRepository
	Members() MembershipRepository
	Profiles() ProfileRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	UpdatePriority(ctx context.Context, id, priority string) error
	UpdateStatus(ctx context.Context, id, statusID string) error
	UpdateDueDate(ctx context.Context, id string, dueDate time.Time) error
	MoveToList(ctx context.Context, id, listID string) error
	Archive(ctx context.Context, id string, archivedAt time.Time) error
	HasSubtasks(ctx context.Context, parentID string) (bool, error)
}

type StatusRepository interface {
	Create(ctx context.Context, status *models.Status) error
	GetByID(ctx context.Context, id string) (*models.Status, error)
	// DefaultForWorkspace returns the workspace-scoped default status, or
	// ErrStatusNotFound when none is flagged as default.
	DefaultForWorkspace(ctx context.Context, workspaceID string) (*models.Status, error)
	// FirstByOrder returns the lowest-ordered status of a workspace.
	FirstByOrder(ctx context.Context, workspaceID string) (*models.Status, error)
	ListByScope(ctx context.Context, scopeType models.ScopeType, scopeID string) ([]*models.Status, error)
}

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	FindByName(ctx context.Context, workspaceID, name string) (*models.Tag, error)
	// AttachToTask upserts the task-tag relation; attaching twice is a no-op.
	AttachToTask(ctx context.Context, taskID, tagID string) error
	DetachFromTask(ctx context.Context, taskID, tagID string) error
	NamesForTask(ctx context.Context, taskID string) ([]string, error)
}

type AssigneeRepository interface {
	// Add upserts the assignee relation; adding the same user twice leaves a
	// single row.
	Add(ctx context.Context, taskID, userID string) error
	ListForTask(ctx context.Context, taskID string) ([]string, error)
}

type AutomationRepository interface {
	Create(ctx context.Context, automation *models.Automation) error
	Update(ctx context.Context, automation *models.Automation) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Automation, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Automation, error)
	// ListEnabledByTrigger returns enabled automations of one workspace for a
	// trigger, in creation order.
	ListEnabledByTrigger(ctx context.Context, workspaceID string, trigger models.AutomationTrigger) ([]*models.Automation, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type StructureRepository interface {
	CreateSpace(ctx context.Context, space *models.Space) error
	GetSpace(ctx context.Context, id string) (*models.Space, error)
	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	ListFoldersBySpace(ctx context.Context, spaceID string) ([]*models.Folder, error)
	CreateList(ctx context.Context, list *models.List) error
	GetList(ctx context.Context, id string) (*models.List, error)
	// ListListsBySpace returns lists directly in the space and lists inside
	// its folders.
	ListListsBySpace(ctx context.Context, spaceID string) ([]*models.List, error)
}

type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template *models.SpaceTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.SpaceTemplate, error)
	UpdateTemplateMeta(ctx context.Context, template *models.SpaceTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	ListTemplates(ctx context.Context) ([]*models.SpaceTemplate, error)

	CreateTemplateFolder(ctx context.Context, folder *models.TemplateFolder) error
	CreateTemplateList(ctx context.Context, list *models.TemplateList) error
	CreateTemplateTask(ctx context.Context, task *models.TemplateTask) error
	ListTemplateFolders(ctx context.Context, templateID string) ([]*models.TemplateFolder, error)
	ListTemplateLists(ctx context.Context, templateID string) ([]*models.TemplateList, error)
	ListTemplateTasks(ctx context.Context, templateID string) ([]*models.TemplateTask, error)
	// DeleteTemplateStructure removes a template's folders, lists, tasks and
	// automations, leaving the template row itself in place.
	DeleteTemplateStructure(ctx context.Context, templateID string) error

	CreateTemplateAutomation(ctx context.Context, automation *models.TemplateAutomation) error
	UpdateTemplateAutomation(ctx context.Context, automation *models.TemplateAutomation) error
	DeleteTemplateAutomation(ctx context.Context, id string) error
	GetTemplateAutomation(ctx context.Context, id string) (*models.TemplateAutomation, error)
	ListTemplateAutomations(ctx context.Context, templateID string, enabledOnly bool) ([]*models.TemplateAutomation, error)

	CreateStatusTemplate(ctx context.Context, template *models.StatusTemplate) error
	CreateStatusTemplateItem(ctx context.Context, item *models.StatusTemplateItem) error
	ListStatusTemplateItems(ctx context.Context, templateID string) ([]*models.StatusTemplateItem, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, activity *models.Activity) error
	ListForTask(ctx context.Context, taskID string) ([]*models.Activity, error)
}

type MembershipRepository interface {
	AddMember(ctx context.Context, member *models.WorkspaceMember) error
	GetMember(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error)
}

type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

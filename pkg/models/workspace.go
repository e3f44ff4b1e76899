package models

import "time"

// Priority levels a task can carry.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Space is a top-level grouping of folders and lists inside a workspace.
type Space struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Folder struct {
	ID          string `json:"id"`
	SpaceID     string `json:"space_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type List struct {
	ID               string  `json:"id"`
	WorkspaceID      string  `json:"workspace_id"`
	SpaceID          string  `json:"space_id,omitempty"`
	FolderID         *string `json:"folder_id,omitempty"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	DefaultView      string  `json:"default_view,omitempty"`
	StatusTemplateID *string `json:"status_template_id,omitempty"`
	StatusSource     string  `json:"status_source,omitempty"`
}

// Status is a task state definition, scoped either to the whole workspace or
// to a single list seeded from a status template.
type Status struct {
	ID             string    `json:"id"`
	WorkspaceID    string    `json:"workspace_id"`
	ScopeType      ScopeType `json:"scope_type"`
	ScopeID        *string   `json:"scope_id,omitempty"`
	Name           string    `json:"name"`
	IsDefault      bool      `json:"is_default"`
	OrderIndex     int       `json:"order_index"`
	TemplateItemID *string   `json:"template_item_id,omitempty"`
}

type Task struct {
	ID              string     `json:"id"`
	WorkspaceID     string     `json:"workspace_id"`
	ListID          string     `json:"list_id"`
	ParentID        *string    `json:"parent_id,omitempty"`
	StatusID        string     `json:"status_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Priority        string     `json:"priority"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
	CreatedByUserID string     `json:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Tag struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

// Activity is one entry of a task's audit trail. Engine-originated entries
// carry created_by=automation in their metadata.
type Activity struct {
	ID           string         `json:"id"`
	TaskID       string         `json:"task_id"`
	UserID       string         `json:"user_id"`
	ActivityType string         `json:"activity_type"`
	FieldName    string         `json:"field_name,omitempty"`
	OldValue     *string        `json:"old_value,omitempty"`
	NewValue     *string        `json:"new_value,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Workspace membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// Global roles that bypass workspace membership checks.
const (
	RoleGlobalOwner = "global_owner"
	RoleOwner       = "owner"
)

type WorkspaceMember struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
}

// Identity is the acting user, threaded explicitly through every engine entry
// point. GlobalRoles holds application-wide roles independent of workspaces.
type Identity struct {
	UserID      string   `json:"user_id"`
	GlobalRoles []string `json:"global_roles,omitempty"`
}

// IsElevated reports whether the identity holds a global role that bypasses
// workspace membership checks.
func (i Identity) IsElevated() bool {
	for _, role := range i.GlobalRoles {
		switch role {
		case RoleGlobalOwner, RoleOwner, RoleAdmin:
			return true
		}
	}

	return false
}

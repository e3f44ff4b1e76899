package models

import "time"

// SpaceTemplate is a reusable structural blueprint for a space. All
// cross-references between its rows are symbolic: they point to other
// template rows, never to real workspace entities.
type SpaceTemplate struct {
	ID              string    `json:"id"`
	WorkspaceID     *string   `json:"workspace_id,omitempty"`
	CreatedByUserID string    `json:"created_by_user_id"`
	Name            string    `json:"name"        validate:"required"`
	Description     string    `json:"description,omitempty"`
	Color           string    `json:"color,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type TemplateFolder struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
}

type TemplateList struct {
	ID               string  `json:"id"`
	TemplateID       string  `json:"template_id"`
	FolderRefID      *string `json:"folder_ref_id,omitempty"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	DefaultView      string  `json:"default_view,omitempty"`
	OrderIndex       int     `json:"order_index"`
	StatusTemplateID *string `json:"status_template_id,omitempty"`
}

type TemplateTask struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id"`
	ListRefID   string `json:"list_ref_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	OrderIndex  int    `json:"order_index"`
}

// TemplateAutomation is an automation definition owned by a template. Its
// scope anchors (FolderRefID, ListRefID) and any ids inside ActionConfig are
// symbolic until materialization remaps them.
type TemplateAutomation struct {
	ID           string            `json:"id"`
	TemplateID   string            `json:"template_id"`
	Description  string            `json:"description,omitempty"`
	Trigger      AutomationTrigger `json:"trigger"`
	ActionType   string            `json:"action_type"`
	ActionConfig ActionConfig      `json:"action_config"`
	ScopeType    ScopeType         `json:"scope_type"`
	FolderRefID  *string           `json:"folder_ref_id,omitempty"`
	ListRefID    *string           `json:"list_ref_id,omitempty"`
	Enabled      bool              `json:"enabled"`
	CreatedAt    time.Time         `json:"created_at"`
}

// StatusTemplate seeds a list's concrete statuses when the list is
// materialized from a space template.
type StatusTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type StatusTemplateItem struct {
	ID         string `json:"id"`
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
	IsDefault  bool   `json:"is_default"`
}

// Package models defines the core domain records for the workflow automation engine.
package models

import (
	"encoding/json"
	"time"
)

// AutomationTrigger identifies the domain event an automation reacts to.
type AutomationTrigger string

const (
	TriggerOnStatusChanged AutomationTrigger = "on_status_changed"
	TriggerOnTaskCreated   AutomationTrigger = "on_task_created"
)

// ScopeType is the location level an automation is anchored to.
type ScopeType string

const (
	ScopeWorkspace ScopeType = "workspace"
	ScopeSpace     ScopeType = "space"
	ScopeFolder    ScopeType = "folder"
	ScopeList      ScopeType = "list"
)

type ConditionField string

const (
	FieldTag         ConditionField = "tag"
	FieldPriority    ConditionField = "priority"
	FieldAssignee    ConditionField = "assignee"
	FieldDueDate     ConditionField = "due_date"
	FieldHasSubtasks ConditionField = "has_subtasks"
	FieldStatusID    ConditionField = "status_id"
)

type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpIsSet       ConditionOperator = "is_set"
	OpIsNotSet    ConditionOperator = "is_not_set"
	OpAnyOf       ConditionOperator = "any_of"
	OpNoneOf      ConditionOperator = "none_of"
)

type ConditionLogic string

const (
	LogicAnd ConditionLogic = "AND"
	LogicOr  ConditionLogic = "OR"
)

// StringList accepts either a single JSON string or an array of strings.
// Rule configs written by older builds stored scalar values.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many

		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}

	if one == "" {
		*s = nil
	} else {
		*s = StringList{one}
	}

	return nil
}

// Values returns the list with empty entries removed.
func (s StringList) Values() []string {
	out := make([]string, 0, len(s))

	for _, v := range s {
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}

// Condition is one link of an ordered condition chain. Logic binds a condition
// to its successor; the logic of the last condition is never consulted.
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    StringList        `json:"value,omitempty"`
	Logic    ConditionLogic    `json:"logic,omitempty"`
}

// TriggerConfig filters status-change events by old/new status id. The
// singular fields are the legacy shape and normalize into the arrays.
type TriggerConfig struct {
	FromStatusIDs []string `json:"from_status_ids,omitempty"`
	ToStatusIDs   []string `json:"to_status_ids,omitempty"`
	FromStatusID  string   `json:"from_status_id,omitempty"`
	ToStatusID    string   `json:"to_status_id,omitempty"`
}

// FromIDs returns the from-status filter with the legacy singular field
// wrapped into a one-element slice.
func (tc *TriggerConfig) FromIDs() []string {
	if len(tc.FromStatusIDs) > 0 {
		return tc.FromStatusIDs
	}

	if tc.FromStatusID != "" {
		return []string{tc.FromStatusID}
	}

	return nil
}

// ToIDs returns the to-status filter, normalized like FromIDs.
func (tc *TriggerConfig) ToIDs() []string {
	if len(tc.ToStatusIDs) > 0 {
		return tc.ToStatusIDs
	}

	if tc.ToStatusID != "" {
		return []string{tc.ToStatusID}
	}

	return nil
}

// ActionStep is one entry of an automation's ordered actions array.
type ActionStep struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// ActionConfig is the structured payload of an automation. Besides the known
// fields, top-level keys are preserved in Extra: for legacy single-action
// rules the payload itself is the action configuration.
type ActionConfig struct {
	TriggerConfig *TriggerConfig `json:"-"`
	Conditions    []Condition    `json:"-"`
	Actions       []ActionStep   `json:"-"`
	Extra         map[string]any `json:"-"`
}

type actionConfigJSON struct {
	TriggerConfig *TriggerConfig `json:"trigger_config,omitempty"`
	Conditions    []Condition    `json:"conditions,omitempty"`
	Actions       []ActionStep   `json:"actions,omitempty"`
}

func (c *ActionConfig) UnmarshalJSON(data []byte) error {
	var known actionConfigJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra := make(map[string]any)

	for key, value := range raw {
		switch key {
		case "trigger_config", "conditions", "actions":
			continue
		}

		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}

		extra[key] = v
	}

	c.TriggerConfig = known.TriggerConfig
	c.Conditions = known.Conditions
	c.Actions = known.Actions
	c.Extra = extra

	return nil
}

func (c ActionConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)

	for key, value := range c.Extra {
		out[key] = value
	}

	if c.TriggerConfig != nil {
		out["trigger_config"] = c.TriggerConfig
	}

	if len(c.Conditions) > 0 {
		out["conditions"] = c.Conditions
	}

	if len(c.Actions) > 0 {
		out["actions"] = c.Actions
	}

	return json.Marshal(out)
}

// Steps returns the ordered action list. Legacy single-action rules expose the
// automation-level action type with the whole payload as its configuration.
func (c *ActionConfig) Steps(legacyActionType string) []ActionStep {
	if len(c.Actions) > 0 {
		return c.Actions
	}

	if legacyActionType == "" {
		return nil
	}

	return []ActionStep{{Type: legacyActionType, Config: c.Extra}}
}

// Automation is a persisted trigger+condition+action rule scoped to a
// workspace location.
type Automation struct {
	ID           string            `json:"id"`
	WorkspaceID  string            `json:"workspace_id"  validate:"required"`
	Description  string            `json:"description,omitempty"`
	Trigger      AutomationTrigger `json:"trigger"       validate:"required"`
	ActionType   string            `json:"action_type"`
	ActionConfig ActionConfig      `json:"action_config"`
	ScopeType    ScopeType         `json:"scope_type"    validate:"required,oneof=workspace space folder list"`
	ScopeID      *string           `json:"scope_id,omitempty"`
	Enabled      bool              `json:"enabled"`
	CreatedAt    time.Time         `json:"created_at"`
}

package models

// StatusChange is the trigger input supplied by the task-update code path
// whenever a task's status field changes.
type StatusChange struct {
	TaskID      string `json:"task_id"`
	WorkspaceID string `json:"workspace_id"`
	ListID      string `json:"list_id"`
	OldStatusID string `json:"old_status_id"`
	NewStatusID string `json:"new_status_id"`
}

// ExecutionSummary is the outcome of one trigger-driven automation run.
type ExecutionSummary struct {
	AutomationsExecuted int      `json:"automations_executed"`
	SubtasksCreated     int      `json:"subtasks_created"`
	Errors              []string `json:"errors"`
}

// ApplyAutomationsSummary is the outcome of copying a template's automations
// onto already-existing spaces.
type ApplyAutomationsSummary struct {
	SpacesProcessed    int      `json:"spaces_processed"`
	AutomationsCreated int      `json:"automations_created"`
	Errors             []string `json:"errors"`
}

package models

import "time"

// TaskSnapshot is the ephemeral read-only projection of a task used for
// condition evaluation. It is rebuilt per trigger invocation and never
// persisted.
type TaskSnapshot struct {
	ID          string
	Priority    string
	DueDate     *time.Time
	Tags        []string
	Assignees   []string
	HasSubtasks bool
}

// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrTaskNotFound indicates a task was not found by the given identifier.
	ErrTaskNotFound = errors.New("task not found")

	// ErrListNotFound indicates a list was not found by the given identifier.
	ErrListNotFound = errors.New("list not found")

	// ErrFolderNotFound indicates a folder was not found by the given identifier.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrSpaceNotFound indicates a space was not found by the given identifier.
	ErrSpaceNotFound = errors.New("space not found")

	// ErrStatusNotFound indicates no status matched the lookup.
	ErrStatusNotFound = errors.New("status not found")

	// ErrTagNotFound indicates a workspace tag was not found by name or id.
	ErrTagNotFound = errors.New("tag not found")

	// ErrAutomationNotFound indicates an automation was not found by the given identifier.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrTemplateNotFound indicates a space template was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrMemberNotFound indicates a user has no membership row in the workspace.
	ErrMemberNotFound = errors.New("workspace member not found")

	// ErrProfileNotFound indicates no profile exists for the user id.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidAutomation indicates an automation failed edit-boundary validation.
	ErrInvalidAutomation = errors.New("invalid automation")

	// ErrUnresolvedScope indicates a list/folder scoped automation references
	// an entity that does not exist in its workspace.
	ErrUnresolvedScope = errors.New("automation scope does not resolve")
)

// AutomationError wraps automation-related errors with additional context.
type AutomationError struct {
	Op           string // Operation being performed (e.g., "Create", "Update")
	AutomationID string
	Err          error
}

func (e *AutomationError) Error() string {
	if e.AutomationID == "" {
		return fmt.Sprintf("%s operation failed for automation: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s operation failed for automation %s: %v", e.Op, e.AutomationID, e.Err)
}

func (e *AutomationError) Unwrap() error {
	return e.Err
}

func (e *AutomationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAutomationError creates a new automation error with context.
func NewAutomationError(op, automationID string, err error) *AutomationError {
	return &AutomationError{
		Op:           op,
		AutomationID: automationID,
		Err:          err,
	}
}

// IsNotFound checks if an error indicates any entity lookup miss.
func IsNotFound(err error) bool {
	for _, sentinel := range []error{
		ErrTaskNotFound, ErrListNotFound, ErrFolderNotFound, ErrSpaceNotFound,
		ErrStatusNotFound, ErrTagNotFound, ErrAutomationNotFound,
		ErrTemplateNotFound, ErrMemberNotFound, ErrProfileNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}

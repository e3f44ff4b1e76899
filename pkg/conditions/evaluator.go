// Package conditions evaluates automation condition chains against a task
// snapshot.
package conditions

import (
	"slices"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// Evaluate runs an ordered condition chain against a snapshot. An empty chain
// evaluates to true. Combination is strictly left to right: the logic operator
// of condition i applies between the accumulated result and condition i+1, so
// AND carries no precedence over OR.
func Evaluate(chain []models.Condition, snapshot models.TaskSnapshot) bool {
	if len(chain) == 0 {
		return true
	}

	result := evaluateSingle(chain[0], snapshot)

	for i := 1; i < len(chain); i++ {
		current := evaluateSingle(chain[i], snapshot)

		if chain[i-1].Logic == models.LogicAnd {
			result = result && current
		} else {
			result = result || current
		}
	}

	return result
}

// evaluateSingle checks one condition. Operators outside a field's supported
// set evaluate to true, as does an unfamiliar field: rules never fail closed
// on config the evaluator does not understand.
func evaluateSingle(condition models.Condition, snapshot models.TaskSnapshot) bool {
	values := condition.Value.Values()

	switch condition.Field {
	case models.FieldPriority:
		switch condition.Operator {
		case models.OpEquals, models.OpAnyOf:
			return slices.Contains(values, snapshot.Priority)
		case models.OpNotEquals:
			return !slices.Contains(values, snapshot.Priority)
		default:
			return true
		}

	case models.FieldTag:
		switch condition.Operator {
		case models.OpContains, models.OpAnyOf:
			return anyIn(values, snapshot.Tags)
		case models.OpNotContains, models.OpNoneOf:
			return !anyIn(values, snapshot.Tags)
		default:
			return true
		}

	case models.FieldAssignee:
		switch condition.Operator {
		case models.OpIsSet:
			return len(snapshot.Assignees) > 0
		case models.OpIsNotSet:
			return len(snapshot.Assignees) == 0
		case models.OpContains:
			return anyIn(values, snapshot.Assignees)
		case models.OpNotContains:
			return !anyIn(values, snapshot.Assignees)
		default:
			return true
		}

	case models.FieldDueDate:
		switch condition.Operator {
		case models.OpIsSet:
			return snapshot.DueDate != nil
		case models.OpIsNotSet:
			return snapshot.DueDate == nil
		default:
			return true
		}

	case models.FieldHasSubtasks:
		switch condition.Operator {
		case models.OpIsSet:
			return snapshot.HasSubtasks
		case models.OpIsNotSet:
			return !snapshot.HasSubtasks
		default:
			return true
		}

	default:
		return true
	}
}

// anyIn reports whether any of values is present in set.
func anyIn(values, set []string) bool {
	for _, v := range values {
		if slices.Contains(set, v) {
			return true
		}
	}

	return false
}

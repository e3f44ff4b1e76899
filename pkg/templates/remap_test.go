package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/operacional-ops/mapflow/pkg/models"
)

func TestCompanyName(t *testing.T) {
	tests := []struct {
		name      string
		spaceName string
		want      string
	}{
		{"label and company", "Onboarding | Acme Corp", "Acme Corp"},
		{"multiple separators", "Ops | Clients | Beta Ltd", "Beta Ltd"},
		{"no separator", "  Acme Corp  ", "Acme Corp"},
		{"trailing separator", "Onboarding | ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, companyName(tt.spaceName))
		})
	}
}

func TestRemapActionConfig(t *testing.T) {
	listIDMap := map[string]string{"tl-1": "list-real"}
	statusIDMap := map[string]string{"item-1": "status-real", "item-2": "status-real-2"}

	config := models.ActionConfig{
		TriggerConfig: &models.TriggerConfig{
			FromStatusIDs: []string{"item-1", "unknown"},
			ToStatusID:    "item-2",
		},
		Conditions: []models.Condition{
			{Field: models.FieldStatusID, Operator: models.OpAnyOf, Value: models.StringList{"item-1"}},
			{Field: models.FieldTag, Operator: models.OpContains, Value: models.StringList{"item-1"}},
		},
		Actions: []models.ActionStep{
			{Type: "move_task", Config: map[string]any{"target_list_id": "tl-1"}},
			{Type: "set_status", Config: map[string]any{"status_id": "item-2"}},
		},
		Extra: map[string]any{"status_id": "item-1"},
	}

	out := remapActionConfig(config, listIDMap, statusIDMap)

	assert.Equal(t, []string{"status-real", "unknown"}, out.TriggerConfig.FromStatusIDs)
	assert.Equal(t, "status-real-2", out.TriggerConfig.ToStatusID)

	assert.Equal(t, models.StringList{"status-real"}, out.Conditions[0].Value)
	// Non-status conditions keep their values even when they collide with ids.
	assert.Equal(t, models.StringList{"item-1"}, out.Conditions[1].Value)

	assert.Equal(t, "list-real", out.Actions[0].Config["target_list_id"])
	assert.Equal(t, "status-real-2", out.Actions[1].Config["status_id"])
	assert.Equal(t, "status-real", out.Extra["status_id"])

	// The source config is untouched.
	assert.Equal(t, []string{"item-1", "unknown"}, config.TriggerConfig.FromStatusIDs)
	assert.Equal(t, "tl-1", config.Actions[0].Config["target_list_id"])
	assert.Equal(t, "item-1", config.Extra["status_id"])
}

func TestRemapMoveTargets_OnlyTouchesMoveSteps(t *testing.T) {
	config := models.ActionConfig{
		Actions: []models.ActionStep{
			{Type: "move_task", Config: map[string]any{"target_list_id": "old-1"}},
			{Type: "set_status", Config: map[string]any{"status_id": "old-1"}},
		},
	}

	out := remapMoveTargets(config, map[string]string{"old-1": "new-1"})

	assert.Equal(t, "new-1", out.Actions[0].Config["target_list_id"])
	assert.Equal(t, "old-1", out.Actions[1].Config["status_id"])
}

func TestFolderAndListMapsByNamePrefix(t *testing.T) {
	templateFolders := []*models.TemplateFolder{
		{ID: "tf-1", Name: "Setup | "},
		{ID: "tf-2", Name: "Delivery | "},
	}
	realFolders := []*models.Folder{
		{ID: "f-1", Name: "Setup | Acme Corp"},
		{ID: "f-9", Name: "Unrelated"},
	}

	folderMap := folderMapByName(templateFolders, realFolders)
	assert.Equal(t, map[string]string{"tf-1": "f-1"}, folderMap)

	templateLists := []*models.TemplateList{{ID: "tl-1", Name: "Kickoff | "}}
	realLists := []*models.List{{ID: "l-1", Name: "Kickoff | Acme Corp"}}

	listMap := listMapByName(templateLists, realLists)
	assert.Equal(t, map[string]string{"tl-1": "l-1"}, listMap)
}

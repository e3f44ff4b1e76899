package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operacional-ops/mapflow/pkg/models"
)

func TestStringList_UnmarshalScalarAndArray(t *testing.T) {
	var fromArray models.StringList
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &fromArray))
	assert.Equal(t, models.StringList{"a", "b"}, fromArray)

	var fromScalar models.StringList
	require.NoError(t, json.Unmarshal([]byte(`"solo"`), &fromScalar))
	assert.Equal(t, models.StringList{"solo"}, fromScalar)

	var fromEmpty models.StringList
	require.NoError(t, json.Unmarshal([]byte(`""`), &fromEmpty))
	assert.Nil(t, fromEmpty)

	assert.Error(t, json.Unmarshal([]byte(`42`), &fromScalar))
}

func TestStringList_ValuesDropsEmpties(t *testing.T) {
	list := models.StringList{"a", "", "b"}
	assert.Equal(t, []string{"a", "b"}, list.Values())
}

func TestActionConfig_PreservesUnknownKeys(t *testing.T) {
	raw := []byte(`{
		"trigger_config": {"to_status_ids": ["s-1"]},
		"actions": [{"type": "archive_task"}],
		"priority": "high",
		"custom_flag": true
	}`)

	var config models.ActionConfig
	require.NoError(t, json.Unmarshal(raw, &config))

	require.NotNil(t, config.TriggerConfig)
	assert.Equal(t, []string{"s-1"}, config.TriggerConfig.ToStatusIDs)
	require.Len(t, config.Actions, 1)
	assert.Equal(t, "high", config.Extra["priority"])
	assert.Equal(t, true, config.Extra["custom_flag"])

	out, err := json.Marshal(config)
	require.NoError(t, err)

	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal(out, &roundTrip))
	assert.Equal(t, "high", roundTrip["priority"])
	assert.Contains(t, roundTrip, "trigger_config")
	assert.Contains(t, roundTrip, "actions")
}

func TestActionConfig_StepsLegacyFallback(t *testing.T) {
	config := models.ActionConfig{
		Extra: map[string]any{"priority": "urgent"},
	}

	steps := config.Steps("set_priority")
	require.Len(t, steps, 1)
	assert.Equal(t, "set_priority", steps[0].Type)
	assert.Equal(t, "urgent", steps[0].Config["priority"])

	assert.Nil(t, config.Steps(""))

	config.Actions = []models.ActionStep{{Type: "archive_task"}}
	steps = config.Steps("set_priority")
	require.Len(t, steps, 1)
	assert.Equal(t, "archive_task", steps[0].Type)
}

func TestTriggerConfig_LegacySingularNormalization(t *testing.T) {
	tc := &models.TriggerConfig{FromStatusID: "s-1", ToStatusID: "s-2"}
	assert.Equal(t, []string{"s-1"}, tc.FromIDs())
	assert.Equal(t, []string{"s-2"}, tc.ToIDs())

	// Arrays win over the singular fields.
	tc = &models.TriggerConfig{FromStatusIDs: []string{"s-3"}, FromStatusID: "s-1"}
	assert.Equal(t, []string{"s-3"}, tc.FromIDs())
	assert.Nil(t, tc.ToIDs())
}

func TestIdentity_IsElevated(t *testing.T) {
	assert.False(t, models.Identity{UserID: "u"}.IsElevated())
	assert.False(t, models.Identity{GlobalRoles: []string{"viewer"}}.IsElevated())
	assert.True(t, models.Identity{GlobalRoles: []string{models.RoleGlobalOwner}}.IsElevated())
	assert.True(t, models.Identity{GlobalRoles: []string{"viewer", models.RoleAdmin}}.IsElevated())
}

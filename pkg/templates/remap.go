package templates

import (
	"strings"

	"github.com/operacional-ops/mapflow/pkg/models"
)

// remapActionConfig rewrites every symbolic id inside an automation payload to
// its materialized counterpart: trigger-config status filters, target_list_id
// and status_id inside action steps, and status-valued condition values. Ids
// without a mapping are left as-is; remapping is best effort.
func remapActionConfig(config models.ActionConfig, listIDMap, statusIDMap map[string]string) models.ActionConfig {
	out := cloneActionConfig(config)

	if tc := out.TriggerConfig; tc != nil {
		tc.FromStatusIDs = remapIDs(tc.FromStatusIDs, statusIDMap)
		tc.ToStatusIDs = remapIDs(tc.ToStatusIDs, statusIDMap)

		if mapped, ok := statusIDMap[tc.FromStatusID]; ok {
			tc.FromStatusID = mapped
		}

		if mapped, ok := statusIDMap[tc.ToStatusID]; ok {
			tc.ToStatusID = mapped
		}
	}

	for i := range out.Actions {
		remapStepConfig(out.Actions[i].Config, listIDMap, statusIDMap)
	}

	remapStepConfig(out.Extra, listIDMap, statusIDMap)

	for i := range out.Conditions {
		if out.Conditions[i].Field != models.FieldStatusID {
			continue
		}

		out.Conditions[i].Value = models.StringList(
			remapIDs(out.Conditions[i].Value, statusIDMap))
	}

	return out
}

func remapStepConfig(config map[string]any, listIDMap, statusIDMap map[string]string) {
	if config == nil {
		return
	}

	if target, ok := config["target_list_id"].(string); ok {
		if mapped, ok := listIDMap[target]; ok {
			config["target_list_id"] = mapped
		}
	}

	if statusID, ok := config["status_id"].(string); ok {
		if mapped, ok := statusIDMap[statusID]; ok {
			config["status_id"] = mapped
		}
	}
}

func remapIDs(ids []string, idMap map[string]string) []string {
	if len(ids) == 0 {
		return ids
	}

	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if mapped, ok := idMap[id]; ok {
			id = mapped
		}

		if id != "" {
			out = append(out, id)
		}
	}

	return out
}

// remapMoveTargets rewrites only the list ids inside move_task steps. The
// structural edit path uses it: statuses are untouched by an edit, lists are
// reborn under new ids.
func remapMoveTargets(config models.ActionConfig, oldListToNew map[string]string) models.ActionConfig {
	out := cloneActionConfig(config)

	for i := range out.Actions {
		if out.Actions[i].Type != "move_task" {
			continue
		}

		remapStepConfig(out.Actions[i].Config, oldListToNew, nil)
	}

	return out
}

// cloneActionConfig copies a payload deeply enough that remapping does not
// mutate the source automation.
func cloneActionConfig(config models.ActionConfig) models.ActionConfig {
	out := models.ActionConfig{}

	if config.TriggerConfig != nil {
		tc := *config.TriggerConfig
		tc.FromStatusIDs = append([]string(nil), config.TriggerConfig.FromStatusIDs...)
		tc.ToStatusIDs = append([]string(nil), config.TriggerConfig.ToStatusIDs...)
		out.TriggerConfig = &tc
	}

	if config.Conditions != nil {
		out.Conditions = make([]models.Condition, len(config.Conditions))

		for i, condition := range config.Conditions {
			condition.Value = append(models.StringList(nil), condition.Value...)
			out.Conditions[i] = condition
		}
	}

	if config.Actions != nil {
		out.Actions = make([]models.ActionStep, len(config.Actions))

		for i, step := range config.Actions {
			out.Actions[i] = models.ActionStep{
				Type:   step.Type,
				Config: cloneMap(step.Config),
			}
		}
	}

	out.Extra = cloneMap(config.Extra)

	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))

	for key, value := range m {
		out[key] = value
	}

	return out
}

// folderMapByName matches template folders to real folders created from them.
// Materialized names are the template name with the company name appended, so
// the template name is a prefix of the real name.
func folderMapByName(templateFolders []*models.TemplateFolder, realFolders []*models.Folder) map[string]string {
	out := make(map[string]string, len(templateFolders))

	for _, templateFolder := range templateFolders {
		for _, realFolder := range realFolders {
			if strings.HasPrefix(realFolder.Name, templateFolder.Name) {
				out[templateFolder.ID] = realFolder.ID

				break
			}
		}
	}

	return out
}

func listMapByName(templateLists []*models.TemplateList, realLists []*models.List) map[string]string {
	out := make(map[string]string, len(templateLists))

	for _, templateList := range templateLists {
		for _, realList := range realLists {
			if strings.HasPrefix(realList.Name, templateList.Name) {
				out[templateList.ID] = realList.ID

				break
			}
		}
	}

	return out
}

// companyName extracts the company part of a space name following the
// "<label> | <company>" convention. A name without the separator is used
// whole.
func companyName(spaceName string) string {
	parts := strings.Split(spaceName, "|")
	if len(parts) > 1 {
		return strings.TrimSpace(parts[len(parts)-1])
	}

	return strings.TrimSpace(spaceName)
}

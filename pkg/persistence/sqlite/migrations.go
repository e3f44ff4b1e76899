package sqlite

// migrations returns the ordered schema migrations for the SQLite store.
func migrations() map[int]string {
	return map[int]string{
		1: migrationV1,
	}
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS spaces (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
	id TEXT PRIMARY KEY,
	space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lists (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	space_id TEXT NOT NULL DEFAULT '',
	folder_id TEXT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	default_view TEXT NOT NULL DEFAULT 'list',
	status_template_id TEXT,
	status_source TEXT NOT NULL DEFAULT 'inherit'
);

CREATE TABLE IF NOT EXISTS statuses (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	scope_type TEXT NOT NULL DEFAULT 'workspace',
	scope_id TEXT,
	name TEXT NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0,
	order_index INTEGER NOT NULL DEFAULT 0,
	template_item_id TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	list_id TEXT NOT NULL,
	parent_id TEXT,
	status_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	due_date TEXT,
	archived_at TEXT,
	created_by_user_id TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);

CREATE TABLE IF NOT EXISTS task_tags (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	name TEXT NOT NULL,
	UNIQUE (workspace_id, name)
);

CREATE TABLE IF NOT EXISTS task_tag_relations (
	task_id TEXT NOT NULL,
	tag_id TEXT NOT NULL,
	PRIMARY KEY (task_id, tag_id)
);

CREATE TABLE IF NOT EXISTS task_assignees (
	task_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	PRIMARY KEY (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS automations (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	"trigger" TEXT NOT NULL,
	action_type TEXT NOT NULL DEFAULT '',
	action_config TEXT NOT NULL DEFAULT '{}',
	scope_type TEXT NOT NULL,
	scope_id TEXT,
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_automations_workspace_trigger
	ON automations(workspace_id, "trigger", enabled);

CREATE TABLE IF NOT EXISTS task_activities (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	activity_type TEXT NOT NULL,
	field_name TEXT NOT NULL DEFAULT '',
	old_value TEXT,
	new_value TEXT,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_activities_task ON task_activities(task_id);

CREATE TABLE IF NOT EXISTS workspace_members (
	workspace_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	PRIMARY KEY (workspace_id, user_id)
);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS space_templates (
	id TEXT PRIMARY KEY,
	workspace_id TEXT,
	created_by_user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS space_template_folders (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES space_templates(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	order_index INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS space_template_lists (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES space_templates(id) ON DELETE CASCADE,
	folder_ref_id TEXT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	default_view TEXT NOT NULL DEFAULT 'list',
	order_index INTEGER NOT NULL DEFAULT 0,
	status_template_id TEXT
);

CREATE TABLE IF NOT EXISTS space_template_tasks (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES space_templates(id) ON DELETE CASCADE,
	list_ref_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	order_index INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS space_template_automations (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES space_templates(id) ON DELETE CASCADE,
	description TEXT NOT NULL DEFAULT '',
	"trigger" TEXT NOT NULL,
	action_type TEXT NOT NULL DEFAULT '',
	action_config TEXT NOT NULL DEFAULT '{}',
	scope_type TEXT NOT NULL,
	folder_ref_id TEXT,
	list_ref_id TEXT,
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS status_templates (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS status_template_items (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES status_templates(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	is_default INTEGER NOT NULL DEFAULT 0
);
`

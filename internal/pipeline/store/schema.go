package store

// schemaDDL is the literal schema from §6, applied once at Open via
// CREATE TABLE IF NOT EXISTS so repeated opens of an existing database are
// idempotent.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS assets (
	pathid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS asset_versions (
	pathid TEXT PRIMARY KEY,
	asset_pathid TEXT NOT NULL REFERENCES assets(pathid) ON DELETE CASCADE,
	version_0 INT NOT NULL DEFAULT 0,
	version_1 INT NOT NULL DEFAULT -1,
	version_2 INT NOT NULL DEFAULT -1,
	data_task_attr TEXT NOT NULL,
	data_produced INT NOT NULL DEFAULT 0,
	data_calculator_id TEXT DEFAULT NULL,
	data TEXT,
	UNIQUE(asset_pathid, version_0, version_1, version_2)
);

CREATE TABLE IF NOT EXISTS asset_version_dependencies (
	dependant TEXT NOT NULL REFERENCES asset_versions(pathid) ON DELETE CASCADE,
	depends_on TEXT NOT NULL REFERENCES asset_versions(pathid) ON DELETE RESTRICT,
	UNIQUE(dependant, depends_on)
);

CREATE TABLE IF NOT EXISTS asset_templates (
	asset_path_id TEXT PRIMARY KEY REFERENCES assets(pathid) ON DELETE CASCADE,
	data_task_attr TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS asset_template_version_inputs (
	asset_path_id TEXT NOT NULL REFERENCES asset_templates(asset_path_id) ON DELETE CASCADE,
	depends_on TEXT NOT NULL REFERENCES asset_versions(pathid) ON DELETE RESTRICT,
	UNIQUE(asset_path_id, depends_on)
);

CREATE TABLE IF NOT EXISTS asset_template_trigger_inputs (
	asset_path_id TEXT NOT NULL REFERENCES asset_templates(asset_path_id) ON DELETE CASCADE,
	depends_on TEXT NOT NULL REFERENCES assets(pathid) ON DELETE RESTRICT,
	UNIQUE(asset_path_id, depends_on)
);

CREATE INDEX IF NOT EXISTS idx_asset_versions_asset_pathid ON asset_versions(asset_pathid);
CREATE INDEX IF NOT EXISTS idx_avd_depends_on ON asset_version_dependencies(depends_on);
CREATE INDEX IF NOT EXISTS idx_ati_depends_on ON asset_template_trigger_inputs(depends_on);
`

// States of data_produced, matching pipelinepb.DataAvailability.
const (
	dataNotComputed = 0
	dataIsComputing = 1
	dataAvailable   = 2
)

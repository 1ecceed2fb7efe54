package store

// Schema version for migration tracking
const SchemaVersion = "1.0.0"

// Meta keys
const (
	MetaKeySchemaVersion = "schema_version"
	MetaKeyCreatedAt     = "created_at"
	MetaKeyDriver        = "driver"
)

// SQLite connection settings
const (
	EnableWALMode     = `PRAGMA journal_mode=WAL;`
	SetWALCheckpoint  = `PRAGMA wal_autocheckpoint=1000;`
	EnableForeignKeys = `PRAGMA foreign_keys=ON;`
)

// DDL statements for database initialization. They are written in the
// subset shared by SQLite and Postgres.
const (
	// Meta table stores configuration and version info
	CreateMetaTable = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	// Analyses table caches one serialized analysis per project and type
	CreateAnalysesTable = `
CREATE TABLE IF NOT EXISTS analyses (
    project_id TEXT NOT NULL,
    analysis_type TEXT NOT NULL,
    version INTEGER NOT NULL,
    fingerprint TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (project_id, analysis_type)
);`

	// Asset index maps guids to paths for reverse lookups
	CreateAssetIndexTable = `
CREATE TABLE IF NOT EXISTS asset_index (
    project_id TEXT NOT NULL,
    guid TEXT NOT NULL,
    path TEXT NOT NULL,
    asset_type TEXT NOT NULL,
    PRIMARY KEY (project_id, guid)
);`

	// Index for path lookups
	CreateAssetIndexPathIndex = `
CREATE INDEX IF NOT EXISTS idx_asset_index_path ON asset_index(project_id, path);`

	// Asset edges mirror the dependency list of the cached analysis
	CreateAssetEdgesTable = `
CREATE TABLE IF NOT EXISTS asset_edges (
    project_id TEXT NOT NULL,
    source_guid TEXT NOT NULL,
    target_guid TEXT NOT NULL,
    edge_type TEXT NOT NULL,
    PRIMARY KEY (project_id, source_guid, target_guid, edge_type)
);`

	// Index for "who references this guid" queries
	CreateAssetEdgesTargetIndex = `
CREATE INDEX IF NOT EXISTS idx_asset_edges_target ON asset_edges(project_id, target_guid);`
)

var schemas = []string{
	CreateMetaTable,
	CreateAnalysesTable,
	CreateAssetIndexTable,
	CreateAssetIndexPathIndex,
	CreateAssetEdgesTable,
	CreateAssetEdgesTargetIndex,
}

package snapcache

// Schema is the cache table. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key              TEXT PRIMARY KEY,
	id               TEXT NOT NULL UNIQUE,
	serialized_html  TEXT NOT NULL,
	original_size    INTEGER NOT NULL,
	snapshot_size    INTEGER NOT NULL,
	size_ratio       REAL NOT NULL,
	estimated_tokens INTEGER NOT NULL,
	adaptive         INTEGER NOT NULL DEFAULT 0,
	k                REAL,
	l                REAL,
	m                REAL,
	iterations       INTEGER,
	created_at       INTEGER NOT NULL,
	last_hit_at      INTEGER NOT NULL,
	hits             INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_snapshots_last_hit ON snapshots(last_hit_at);
`

// CLAUDE:SUMMARY SQLite cache of computed snapshots keyed by a BLAKE2b digest of markup, parameters and options.
// Package snapcache stores computed snapshots in SQLite so repeated requests
// for the same markup and policy skip the pipeline. Transform is
// deterministic, so a cached entry is exactly what a new run would produce
// with the same ground truth.
package snapcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/domsnap/dbopen"
	"github.com/hazyhaar/domsnap/idgen"
	"github.com/hazyhaar/domsnap/snapshot"
)

// Config configures a Cache.
type Config struct {
	// Path of the database file. Default: "domsnap-cache.db".
	Path string `yaml:"path"`
	// MaxEntries bounds the table; Prune evicts the least recently hit
	// entries beyond it. Zero means 10000.
	MaxEntries int `yaml:"max_entries"`

	IDs    idgen.Generator `yaml:"-"`
	Logger *slog.Logger    `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Path == "" {
		c.Path = "domsnap-cache.db"
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 10000
	}
	if c.IDs == nil {
		c.IDs = idgen.Entry
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Entry is a cached snapshot.
type Entry struct {
	ID       string                       `json:"id"`
	Key      string                       `json:"key"`
	Snapshot snapshot.Snapshot            `json:"snapshot"`
	Adaptive *snapshot.AdaptiveParameters `json:"parameters,omitempty"`
	Created  time.Time                    `json:"created_at"`
	Hits     int                          `json:"hits"`
}

// Cache is the snapshot store. Safe for concurrent use.
type Cache struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (or creates) the cache database.
func Open(cfg Config) (*Cache, error) {
	cfg.defaults()
	db, err := dbopen.Open(cfg.Path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("snapcache: %w", err)
	}
	return &Cache{db: db, cfg: cfg, logger: cfg.Logger, now: time.Now}, nil
}

// New wraps an open database, applying the schema. The caller keeps
// ownership of db.
func New(db *sql.DB, cfg Config) (*Cache, error) {
	cfg.defaults()
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("snapcache: schema: %w", err)
	}
	return &Cache{db: db, cfg: cfg, logger: cfg.Logger, now: time.Now}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the entry stored under key and records the hit. A miss
// returns nil, nil.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, error) {
	e := &Entry{Key: key}
	var (
		adaptive   bool
		k, l, m    sql.NullFloat64
		iterations sql.NullInt64
		created    int64
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT id, serialized_html, original_size, snapshot_size, size_ratio,
		       estimated_tokens, adaptive, k, l, m, iterations, created_at, hits
		FROM snapshots WHERE key = ?`, key).Scan(
		&e.ID, &e.Snapshot.SerializedHTML, &e.Snapshot.Meta.OriginalSize,
		&e.Snapshot.Meta.SnapshotSize, &e.Snapshot.Meta.SizeRatio,
		&e.Snapshot.Meta.EstimatedTokens, &adaptive, &k, &l, &m, &iterations,
		&created, &e.Hits,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapcache: get: %w", err)
	}
	e.Created = time.UnixMilli(created)
	if adaptive {
		e.Adaptive = &snapshot.AdaptiveParameters{
			K: k.Float64, L: l.Float64, M: m.Float64, Iterations: int(iterations.Int64),
		}
	}

	if _, err := dbopen.Exec(ctx, c.db, `
		UPDATE snapshots SET hits = hits + 1, last_hit_at = ? WHERE key = ?`,
		c.now().UnixMilli(), key); err != nil {
		return nil, fmt.Errorf("snapcache: record hit: %w", err)
	}
	e.Hits++
	return e, nil
}

// Put stores snap under key, replacing any previous entry. adaptive is nil
// for plain Transform results.
func (c *Cache) Put(ctx context.Context, key string, snap *snapshot.Snapshot, adaptive *snapshot.AdaptiveParameters) (*Entry, error) {
	now := c.now()
	e := &Entry{ID: c.cfg.IDs(), Key: key, Snapshot: *snap, Adaptive: adaptive, Created: now}

	var k, l, m, iterations any
	if adaptive != nil {
		k, l, m, iterations = adaptive.K, adaptive.L, adaptive.M, adaptive.Iterations
	}
	err := dbopen.RunTx(ctx, c.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots
				(key, id, serialized_html, original_size, snapshot_size, size_ratio,
				 estimated_tokens, adaptive, k, l, m, iterations, created_at, last_hit_at, hits)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,0)
			ON CONFLICT(key) DO UPDATE SET
				id = excluded.id,
				serialized_html = excluded.serialized_html,
				original_size = excluded.original_size,
				snapshot_size = excluded.snapshot_size,
				size_ratio = excluded.size_ratio,
				estimated_tokens = excluded.estimated_tokens,
				adaptive = excluded.adaptive,
				k = excluded.k, l = excluded.l, m = excluded.m,
				iterations = excluded.iterations,
				created_at = excluded.created_at,
				last_hit_at = excluded.last_hit_at,
				hits = 0`,
			key, e.ID, snap.SerializedHTML, snap.Meta.OriginalSize, snap.Meta.SnapshotSize,
			snap.Meta.SizeRatio, snap.Meta.EstimatedTokens, adaptive != nil, k, l, m, iterations,
			now.UnixMilli(), now.UnixMilli(),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("snapcache: put: %w", err)
	}
	c.logger.Debug("snapcache: stored", "id", e.ID, "tokens", snap.Meta.EstimatedTokens)
	return e, nil
}

// Prune evicts the least recently hit entries beyond MaxEntries and returns
// how many were removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	res, err := dbopen.Exec(ctx, c.db, `
		DELETE FROM snapshots WHERE key IN (
			SELECT key FROM snapshots
			ORDER BY last_hit_at DESC, created_at DESC
			LIMIT -1 OFFSET ?)`, c.cfg.MaxEntries)
	if err != nil {
		return 0, fmt.Errorf("snapcache: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.logger.Info("snapcache: pruned", "removed", n, "max_entries", c.cfg.MaxEntries)
	}
	return int(n), nil
}

// Stats summarises the cache.
type Stats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
}

// Stats counts entries and total hits.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(hits), 0) FROM snapshots`).Scan(&s.Entries, &s.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("snapcache: stats: %w", err)
	}
	return s, nil
}

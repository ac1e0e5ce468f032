package hashcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"photorestore/internal/asset"
	"photorestore/internal/fingerprint"
	"photorestore/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old caches are dropped and rebuilt on open.
const schemaVersion = 1

// Cache is a SQLite-backed fingerprint store bound to one hash algorithm.
// It implements fingerprint.Cache.
type Cache struct {
	db     *sql.DB
	path   string
	algo   string
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats counts cache traffic for one process lifetime.
type Stats struct {
	Hits   int64
	Misses int64
}

// Open initializes or connects to the cache database at path and prepares
// the schema.
func Open(path string, algo fingerprint.Algorithm, logger *slog.Logger) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{
		db:     db,
		path:   path,
		algo:   string(algo),
		logger: logging.NewComponentLogger(logger, "hashcache"),
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path reports the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Stats reports hit and miss counts since the cache was opened.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Lookup returns the cached record for path when size and modification
// time still match the stored entry. Read errors are logged and reported
// as misses so a damaged cache never fails a run.
func (c *Cache) Lookup(ctx context.Context, path string, size int64, modTime time.Time) (asset.Record, bool) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT kind, content_hash, perceptual_hash, captured_at, width, height, duration_ns, warnings_json
         FROM fingerprints
         WHERE path = ? AND algorithm = ? AND size = ? AND mod_time_ns = ?`,
		path,
		c.algo,
		size,
		modTime.UnixNano(),
	)

	var (
		kindStr     string
		contentHash string
		perceptual  sql.NullString
		capturedRaw sql.NullString
		width       sql.NullInt64
		height      sql.NullInt64
		durationNS  sql.NullInt64
		warningsRaw sql.NullString
	)
	if err := row.Scan(&kindStr, &contentHash, &perceptual, &capturedRaw, &width, &height, &durationNS, &warningsRaw); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Debug("cache lookup failed", logging.String("path", path), logging.Error(err))
		}
		c.misses.Add(1)
		return asset.Record{}, false
	}

	rec := asset.Record{
		Path:        path,
		Kind:        asset.Kind(kindStr),
		Size:        size,
		ContentHash: contentHash,
	}
	if perceptual.Valid {
		if v, err := strconv.ParseUint(perceptual.String, 16, 64); err == nil {
			ph := asset.PerceptualHash(v)
			rec.Perceptual = &ph
		}
	}
	if capturedRaw.Valid {
		if ts, err := parseTimeString(capturedRaw.String); err == nil {
			rec.CapturedAt = &ts
		}
	}
	if width.Valid && height.Valid {
		rec.Pixels = &asset.Dimensions{Width: int(width.Int64), Height: int(height.Int64)}
	}
	if durationNS.Valid {
		d := time.Duration(durationNS.Int64)
		rec.Duration = &d
	}
	if warningsRaw.Valid && warningsRaw.String != "" {
		var warnings []string
		if err := json.Unmarshal([]byte(warningsRaw.String), &warnings); err == nil {
			rec.Warnings = warnings
		}
	}

	c.hits.Add(1)
	return rec, true
}

// Store upserts the record keyed by its path and the cache's algorithm.
func (c *Cache) Store(ctx context.Context, rec asset.Record, modTime time.Time) error {
	var warningsJSON any
	if len(rec.Warnings) > 0 {
		data, err := json.Marshal(rec.Warnings)
		if err != nil {
			return fmt.Errorf("marshal warnings: %w", err)
		}
		warningsJSON = string(data)
	}

	var perceptual any
	if rec.Perceptual != nil {
		perceptual = rec.Perceptual.String()
	}

	var width, height any
	if rec.Pixels != nil {
		width = rec.Pixels.Width
		height = rec.Pixels.Height
	}

	var durationNS any
	if rec.Duration != nil {
		durationNS = int64(*rec.Duration)
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO fingerprints (
            path, algorithm, size, mod_time_ns, kind, content_hash,
            perceptual_hash, captured_at, width, height, duration_ns,
            warnings_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Path,
		c.algo,
		rec.Size,
		modTime.UnixNano(),
		string(rec.Kind),
		rec.ContentHash,
		perceptual,
		nullableTime(rec.CapturedAt),
		width,
		height,
		durationNS,
		warningsJSON,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store fingerprint: %w", err)
	}
	return nil
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		// New database: create schema
		return c.createSchema(ctx)
	}

	var version int
	err = c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		// Stale schema: cached fingerprints are recomputable, drop and rebuild.
		c.logger.Info("cache schema changed, rebuilding",
			logging.Int("found", version), logging.Int("want", schemaVersion))
		for _, stmt := range []string{
			"DROP TABLE IF EXISTS fingerprints",
			"DROP TABLE IF EXISTS schema_version",
		} {
			if _, execErr := c.db.ExecContext(ctx, stmt); execErr != nil {
				return fmt.Errorf("drop stale cache: %w", execErr)
			}
		}
		return c.createSchema(ctx)
	}

	return nil
}

func (c *Cache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

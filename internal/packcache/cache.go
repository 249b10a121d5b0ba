package packcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"packhub/internal/logging"
	"packhub/internal/trainingpack"
)

// ErrNotFound reports that no entry exists for a key.
var ErrNotFound = errors.New("pack not found in cache")

const (
	timeLayout     = "2006-01-02T15:04:05.000000000Z"
	lockRetryDelay = 50 * time.Millisecond
)

// Entry is a cached decode result.
type Entry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	ShotCount   int    `json:"shot_count"`
	PayloadSize int    `json:"payload_size"`
	Mode        string `json:"mode"`
	// Fingerprint identifies the metadata bytes the pack was decoded from.
	Fingerprint string             `json:"fingerprint,omitempty"`
	CachedAt    time.Time          `json:"cached_at"`
	Pack        *trainingpack.Pack `json:"pack,omitempty"`
}

// Cache provides access to the decoded pack database. The zero path yields a
// disabled cache.
type Cache struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time
}

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "packcache")

	path = strings.TrimSpace(path)
	c := &Cache{path: path, logger: logger, now: time.Now}
	if path == "" {
		return c, nil
	}
	ctx = ensureContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
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
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c.db = db
	c.lock = flock.New(path + ".lock")
	if err := c.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Enabled reports whether the cache is backed by a database.
func (c *Cache) Enabled() bool {
	return c != nil && c.db != nil
}

// Path returns the database location, or "" for a disabled cache.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the entry stored under key, including the decoded pack.
func (c *Cache) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" || !c.Enabled() {
		return Entry{}, false, nil
	}
	ctx = ensureContext(ctx)

	var (
		entry    Entry
		body     []byte
		cachedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return c.db.QueryRowContext(ctx,
			`SELECT key, name, code, shot_count, payload_size, mode, fingerprint, body, cached_at
			FROM packs WHERE key = ?`, key,
		).Scan(&entry.Key, &entry.Name, &entry.Code, &entry.ShotCount, &entry.PayloadSize, &entry.Mode,
			&entry.Fingerprint, &body, &cachedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup pack %q: %w", key, err)
	}

	entry.CachedAt = parseTime(cachedAt)
	pack, err := decodePack(body)
	if err != nil {
		return Entry{}, false, fmt.Errorf("decode cached pack %q: %w", key, err)
	}
	entry.Pack = pack
	return entry, true, nil
}

// Store adds or replaces the entry for entry.Key. Summary columns are taken
// from entry.Pack.
func (c *Cache) Store(ctx context.Context, entry Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	if entry.Pack == nil {
		return errors.New("cache entry has no pack")
	}
	if !c.Enabled() {
		return nil
	}
	ctx = ensureContext(ctx)

	if entry.CachedAt.IsZero() {
		entry.CachedAt = c.now()
	}
	body, err := encodePack(entry.Pack)
	if err != nil {
		return err
	}

	err = retryOnBusy(ctx, func() error {
		_, execErr := c.db.ExecContext(ctx,
			`INSERT INTO packs (key, name, code, shot_count, payload_size, mode, fingerprint, body, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				name = excluded.name,
				code = excluded.code,
				shot_count = excluded.shot_count,
				payload_size = excluded.payload_size,
				mode = excluded.mode,
				fingerprint = excluded.fingerprint,
				body = excluded.body,
				cached_at = excluded.cached_at`,
			entry.Key, entry.Pack.Name, entry.Pack.Code, entry.Pack.ShotCount,
			entry.PayloadSize, entry.Mode, entry.Fingerprint, body, formatTime(entry.CachedAt))
		return execErr
	})
	if err != nil {
		return fmt.Errorf("store pack %q: %w", entry.Key, err)
	}

	c.logger.Debug("cached decoded pack",
		logging.String(logging.FieldPackKey, entry.Key),
		logging.String("name", entry.Pack.Name),
		logging.Int("shot_count", entry.Pack.ShotCount),
		logging.Int("compressed_bytes", len(body)))
	return nil
}

// Remove deletes the entry stored under key.
func (c *Cache) Remove(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if !c.Enabled() {
		return nil
	}
	ctx = ensureContext(ctx)

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = c.db.ExecContext(ctx, "DELETE FROM packs WHERE key = ?", key)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("remove pack %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	c.logger.Debug("removed pack from cache", logging.String(logging.FieldPackKey, key))
	return nil
}

// List returns summary entries (without decoded packs) sorted newest first.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	if !c.Enabled() {
		return nil, nil
	}
	ctx = ensureContext(ctx)

	var entries []Entry
	err := retryOnBusy(ctx, func() error {
		entries = entries[:0]
		rows, err := c.db.QueryContext(ctx,
			`SELECT key, name, code, shot_count, payload_size, mode, fingerprint, cached_at
			FROM packs ORDER BY cached_at DESC, key ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				entry    Entry
				cachedAt string
			)
			if err := rows.Scan(&entry.Key, &entry.Name, &entry.Code, &entry.ShotCount, &entry.PayloadSize, &entry.Mode, &entry.Fingerprint, &cachedAt); err != nil {
				return err
			}
			entry.CachedAt = parseTime(cachedAt)
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	return entries, nil
}

// Count returns the number of cached packs.
func (c *Cache) Count(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	ctx = ensureContext(ctx)

	var count int
	err := retryOnBusy(ctx, func() error {
		return c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM packs").Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count packs: %w", err)
	}
	return count, nil
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	ctx = ensureContext(ctx)

	return c.withLock(ctx, func() error {
		if err := retryOnBusy(ctx, func() error {
			_, err := c.db.ExecContext(ctx, "DELETE FROM packs")
			return err
		}); err != nil {
			return fmt.Errorf("clear packs: %w", err)
		}
		c.logger.Debug("cleared pack cache")
		return nil
	})
}

// Prune removes entries cached more than olderThan ago and returns how many
// were deleted. A non-positive age removes nothing.
func (c *Cache) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if !c.Enabled() || olderThan <= 0 {
		return 0, nil
	}
	ctx = ensureContext(ctx)

	cutoff := formatTime(c.now().Add(-olderThan))
	var removed int64
	err := c.withLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			res, err := c.db.ExecContext(ctx, "DELETE FROM packs WHERE cached_at < ?", cutoff)
			if err != nil {
				return err
			}
			removed, err = res.RowsAffected()
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("prune packs: %w", err)
	}
	if removed > 0 {
		c.logger.Info("pruned pack cache",
			logging.Int64("removed", removed),
			logging.Duration("older_than", olderThan))
	}
	return removed, nil
}

func (c *Cache) withLock(ctx context.Context, fn func() error) error {
	locked, err := c.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire cache lock: %s is held by another process", c.lock.Path())
	}
	defer func() {
		if unlockErr := c.lock.Unlock(); unlockErr != nil {
			logging.Warn(c.logger, "failed to release cache lock", logging.Remedy{
				Event:  "packcache_unlock_failed",
				Hint:   "remove the stale lock file if later maintenance blocks",
				Impact: "later clear or prune calls may wait for the lock",
			}, logging.Error(unlockErr))
		}
	}()
	return fn()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

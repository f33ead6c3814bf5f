package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goonworks/goonbot/logger"
	"github.com/goonworks/goonbot/models"
	"github.com/goonworks/goonbot/timeutil"
	"github.com/mattn/go-sqlite3"
)

var _ Store = (*SQLiteStore)(nil)

const (
	memoryDSN       = "file:goonbot?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000"
	defaultDebounce = 5 * time.Second
)

// SQLiteStore keeps all state in an in-memory SQLite database and
// snapshots it to a disk file with the sqlite3 online backup API.
// Writes mark the store dirty and a debounced timer flushes it.
type SQLiteStore struct {
	mu           sync.RWMutex
	db           *sql.DB
	snapshotPath string
	logger       logger.Logger

	flushDebounce time.Duration
	flushTimer    *time.Timer
	flushMu       sync.Mutex
	dirty         bool
	ctx           context.Context
	cancel        context.CancelFunc
}

type Params struct {
	Path   string
	Logger logger.Logger
}

func NewSQLiteStore(p Params) *SQLiteStore {
	return &SQLiteStore{
		snapshotPath:  p.Path,
		flushDebounce: defaultDebounce,
		logger:        p.Logger,
	}
}

func (s *SQLiteStore) log() logger.Logger {
	if s.logger == nil {
		return logger.NewNop()
	}
	return s.logger
}

// SetFlushDebounce sets the debounce duration for disk flushes.
// Must be called before Open().
func (s *SQLiteStore) SetFlushDebounce(d time.Duration) {
	s.flushDebounce = d
}

func (s *SQLiteStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	database, err := sql.Open("sqlite3", memoryDSN)
	if err != nil {
		return err
	}
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if err = database.PingContext(ctx); err != nil {
		_ = database.Close()
		return err
	}

	s.db = database
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s.applyMigrations(ctx)
}

// Close closes the database without flushing. Use Shutdown for graceful shutdown.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopFlushTimer()
	if s.cancel != nil {
		s.cancel()
	}

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Shutdown performs a final flush to disk and closes the database.
func (s *SQLiteStore) Shutdown(ctx context.Context) error {
	s.flushMu.Lock()
	s.stopFlushTimer()
	dirty := s.dirty
	s.flushMu.Unlock()

	if dirty && s.snapshotPath != "" {
		if err := s.FlushToDisk(ctx, s.snapshotPath); err != nil {
			s.log().ErrorW("shutdown flush failed", "error", err)
		}
	}

	return s.Close()
}

func (s *SQLiteStore) RestoreFromDisk(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store is not open")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	fileDB, err := sql.Open("sqlite3", sqliteFileDSN(path))
	if err != nil {
		return err
	}
	defer fileDB.Close()

	if err := s.backup(ctx, fileDB, s.db); err != nil {
		return err
	}

	return s.applyMigrations(ctx)
}

func (s *SQLiteStore) FlushToDisk(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked(ctx, path)
}

func (s *SQLiteStore) scheduleFlush() {
	if s.snapshotPath == "" {
		return
	}

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.dirty = true
	if s.flushTimer != nil {
		s.flushTimer.Stop()
	}

	s.flushTimer = time.AfterFunc(s.flushDebounce, func() {
		s.performScheduledFlush()
	})
}

func (s *SQLiteStore) performScheduledFlush() {
	s.flushMu.Lock()
	if !s.dirty {
		s.flushMu.Unlock()
		return
	}
	s.flushMu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	if err := s.FlushToDisk(ctx, s.snapshotPath); err != nil {
		s.log().ErrorW("scheduled flush failed", "error", err)
		return
	}

	s.flushMu.Lock()
	s.dirty = false
	s.flushMu.Unlock()
}

func (s *SQLiteStore) stopFlushTimer() {
	if s.flushTimer != nil {
		s.flushTimer.Stop()
		s.flushTimer = nil
	}
}

func (s *SQLiteStore) JoinQueue(ctx context.Context, entry models.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store is not open")
	}

	s.log().DebugW("joining queue",
		"activity", entry.Activity,
		"user_id", entry.UserID,
	)

	joinedAt := entry.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queue_entries (activity, user_id, joined_at) VALUES (?, ?, ?)`,
		entry.Activity, entry.UserID, joinedAt.UTC().Format(time.RFC3339))
	if err != nil {
		s.log().ErrorW("failed to join queue",
			"error", err,
			"activity", entry.Activity,
			"user_id", entry.UserID,
		)
		return err
	}

	s.scheduleFlush()
	return nil
}

func (s *SQLiteStore) LeaveQueue(ctx context.Context, activity, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return false, errors.New("store is not open")
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM queue_entries WHERE activity = ? AND user_id = ?`,
		activity, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		s.scheduleFlush()
	}
	return affected > 0, nil
}

func (s *SQLiteStore) ListQueue(ctx context.Context, activity string) ([]models.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT activity, user_id, joined_at FROM queue_entries
		 WHERE activity = ? ORDER BY id ASC`,
		activity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QueueEntry
	for rows.Next() {
		var entry models.QueueEntry
		var joinedAt string
		if err := rows.Scan(&entry.Activity, &entry.UserID, &joinedAt); err != nil {
			return nil, err
		}
		if t, err := timeutil.ParseRFC3339(joinedAt); err == nil {
			entry.JoinedAt = t
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListActiveQueues(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT activity FROM queue_entries ORDER BY activity COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var activity string
		if err := rows.Scan(&activity); err != nil {
			return nil, err
		}
		out = append(out, activity)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListQueuesForUser(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT activity FROM queue_entries WHERE user_id = ? ORDER BY id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var activity string
		if err := rows.Scan(&activity); err != nil {
			return nil, err
		}
		out = append(out, activity)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateEvent(ctx context.Context, event models.ScheduledEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store is not open")
	}

	s.log().DebugW("creating event",
		"event_id", event.ID,
		"message_id", event.MessageID,
		"activity", event.Activity,
		"starts_at", event.StartsAt,
	)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, message_id, channel_id, activity, starts_at, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.MessageID, event.ChannelID, event.Activity, event.StartsAt, event.Note)
	if err != nil {
		s.log().ErrorW("failed to create event", "error", err, "event_id", event.ID)
		return err
	}

	s.scheduleFlush()
	return nil
}

// GetEventByMessage returns the event announced by the given message,
// or nil when the message is not an event post.
func (s *SQLiteStore) GetEventByMessage(ctx context.Context, messageID string) (*models.ScheduledEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}

	var event models.ScheduledEvent
	err := s.db.QueryRowContext(ctx,
		`SELECT id, message_id, channel_id, activity, starts_at, note
		 FROM events WHERE message_id = ?`,
		messageID).Scan(&event.ID, &event.MessageID, &event.ChannelID,
		&event.Activity, &event.StartsAt, &event.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *SQLiteStore) SetSignup(ctx context.Context, signup models.EventSignup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store is not open")
	}
	if !signup.Kind.Valid() {
		return fmt.Errorf("invalid signup kind %q", signup.Kind)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_signups (event_id, user_id, kind) VALUES (?, ?, ?)
		 ON CONFLICT (event_id, user_id, kind) DO NOTHING`,
		signup.EventID, signup.UserID, string(signup.Kind))
	if err != nil {
		return err
	}

	s.scheduleFlush()
	return nil
}

func (s *SQLiteStore) RemoveSignup(ctx context.Context, eventID, userID string, kind models.SignupKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store is not open")
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM event_signups WHERE event_id = ? AND user_id = ? AND kind = ?`,
		eventID, userID, string(kind))
	if err != nil {
		return err
	}

	s.scheduleFlush()
	return nil
}

func (s *SQLiteStore) ListSignups(ctx context.Context, eventID string) ([]models.EventSignup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, user_id, kind FROM event_signups
		 WHERE event_id = ? ORDER BY rowid ASC`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EventSignup
	for rows.Next() {
		var signup models.EventSignup
		var kind string
		if err := rows.Scan(&signup.EventID, &signup.UserID, &kind); err != nil {
			return nil, err
		}
		signup.Kind = models.SignupKind(kind)
		out = append(out, signup)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) flushLocked(ctx context.Context, path string) error {
	if s.db == nil {
		return errors.New("store is not open")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	fileDB, err := sql.Open("sqlite3", sqliteFileDSN(path))
	if err != nil {
		return err
	}
	defer fileDB.Close()

	return s.backup(ctx, s.db, fileDB)
}

func (s *SQLiteStore) backup(ctx context.Context, src *sql.DB, dst *sql.DB) error {
	srcConn, err := src.Conn(ctx)
	if err != nil {
		return err
	}
	defer srcConn.Close()

	dstConn, err := dst.Conn(ctx)
	if err != nil {
		return err
	}
	defer dstConn.Close()

	return dstConn.Raw(func(dstDriver any) error {
		return srcConn.Raw(func(srcDriver any) error {
			dstSQLite, ok := dstDriver.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected destination driver: %T", dstDriver)
			}
			srcSQLite, ok := srcDriver.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected source driver: %T", srcDriver)
			}

			backup, err := dstSQLite.Backup("main", srcSQLite, "main")
			if err != nil {
				return err
			}
			defer backup.Finish()

			_, err = backup.Step(-1)
			return err
		})
	})
}

func (s *SQLiteStore) applyMigrations(ctx context.Context) error {
	if s.db == nil {
		return errors.New("store is not open")
	}

	migrationsPath, err := resolveMigrationsPath()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(migrationsPath, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sqlText := strings.TrimSpace(string(content))
		if sqlText == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}

func resolveMigrationsPath() (string, error) {
	paths := []string{
		filepath.Join("schema", "migrations"),
		filepath.Join("store", "schema", "migrations"),
	}
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("migrations directory not found")
}

func sqliteFileDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

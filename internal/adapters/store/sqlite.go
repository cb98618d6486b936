package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hyperbot/internal/core/domain"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Defaults seeds newly created records.
type Defaults struct {
	OwnerNumbers []string
	Antilink     bool
	Antispam     bool
}

// SettingsSource provides the effective settings that seed records once UseSettings was called.
type SettingsSource interface {
	Current(ctx context.Context) domain.Settings
}

// SQLite persists users, groups and env overrides. A store opened without a database answers every read
// with defaults and rejects every write with domain.ErrStoreUnavailable.
type SQLite struct {
	db       *sql.DB
	defaults Defaults
	settings SettingsSource
	now      func() time.Time
}

func NewSQLite(dbPath string, defaults Defaults) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite: empty db path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, defaults: defaults, now: time.Now}, nil
}

// NewOffline returns a store that only serves defaults.
func NewOffline(defaults Defaults) *SQLite {
	return &SQLite{defaults: defaults, now: time.Now}
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0,
	is_premium INTEGER NOT NULL DEFAULT 0,
	warns INTEGER NOT NULL DEFAULT 0,
	is_banned INTEGER NOT NULL DEFAULT 0,
	banned_reason TEXT,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	antilink INTEGER NOT NULL DEFAULT 0,
	antispam INTEGER NOT NULL DEFAULT 0,
	welcome INTEGER NOT NULL DEFAULT 1,
	goodbye INTEGER NOT NULL DEFAULT 1,
	nsfw INTEGER NOT NULL DEFAULT 0,
	is_banned INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS env (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	return nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UseSettings makes new records follow the effective settings instead of the static defaults. It must
// be called before the store is shared.
func (s *SQLite) UseSettings(settings SettingsSource) {
	s.settings = settings
}

func (s *SQLite) defaultsFor(ctx context.Context) Defaults {
	if s.settings == nil {
		return s.defaults
	}

	current := s.settings.Current(ctx)
	return Defaults{OwnerNumbers: current.OwnerNumbers, Antilink: current.Antilink, Antispam: current.Antispam}
}

func (s *SQLite) defaultUser(id, name string) domain.UserRecord {
	return domain.UserRecord{ID: id, Name: name, Phone: domain.NumberOf(id)}
}

func (s *SQLite) defaultGroup(defaults Defaults, id, name string) domain.GroupRecord {
	return domain.GroupRecord{
		ID:       id,
		Name:     name,
		Antilink: defaults.Antilink,
		Antispam: defaults.Antispam,
		Welcome:  true,
		Goodbye:  true,
	}
}

// GetUser returns the user record, creating it on first sight. Owners are created as admins.
func (s *SQLite) GetUser(ctx context.Context, id, name string) domain.UserRecord {
	if s.db == nil || id == "" {
		return s.defaultUser(id, name)
	}

	if name == "" {
		name = "User"
	}

	phone := domain.NumberOf(id)
	const insert = `
INSERT INTO users (id, name, phone, is_admin, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;`

	if _, err := s.db.ExecContext(ctx, insert, id, name, phone,
		slices.Contains(s.defaultsFor(ctx).OwnerNumbers, phone), s.now()); err != nil {
		log.Error().Err(err).Str("user", id).Msg("error creating user")
		return s.defaultUser(id, name)
	}

	const query = `
SELECT name, phone, is_admin, is_premium, warns, is_banned, banned_reason, updated_at
FROM users
WHERE id = ?;`

	user := domain.UserRecord{ID: id}
	var reason sql.NullString
	var updatedAt sql.NullTime

	if err := s.db.QueryRowContext(ctx, query, id).Scan(&user.Name, &user.Phone, &user.IsAdmin,
		&user.IsPremium, &user.Warns, &user.IsBanned, &reason, &updatedAt); err != nil {
		log.Error().Err(err).Str("user", id).Msg("error reading user")
		return s.defaultUser(id, name)
	}

	user.BannedReason = reason.String
	user.UpdatedAt = updatedAt.Time

	return user
}

// GetGroup returns the group record, creating it with the configured guard defaults on first sight.
func (s *SQLite) GetGroup(ctx context.Context, id, name string) domain.GroupRecord {
	defaults := s.defaultsFor(ctx)
	if s.db == nil || id == "" {
		return s.defaultGroup(defaults, id, name)
	}

	if name == "" {
		name = "Group"
	}

	const insert = `
INSERT INTO chat_groups (id, name, antilink, antispam, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;`

	if _, err := s.db.ExecContext(ctx, insert, id, name, defaults.Antilink, defaults.Antispam,
		s.now()); err != nil {
		log.Error().Err(err).Str("group", id).Msg("error creating group")
		return s.defaultGroup(defaults, id, name)
	}

	const query = `
SELECT name, antilink, antispam, welcome, goodbye, nsfw, is_banned, updated_at
FROM chat_groups
WHERE id = ?;`

	group := domain.GroupRecord{ID: id}
	var updatedAt sql.NullTime

	if err := s.db.QueryRowContext(ctx, query, id).Scan(&group.Name, &group.Antilink, &group.Antispam,
		&group.Welcome, &group.Goodbye, &group.NSFW, &group.IsBanned, &updatedAt); err != nil {
		log.Error().Err(err).Str("group", id).Msg("error reading group")
		return s.defaultGroup(defaults, id, name)
	}

	group.UpdatedAt = updatedAt.Time

	return group
}

func (s *SQLite) UpdateGroup(ctx context.Context, group domain.GroupRecord) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	const upsert = `
INSERT INTO chat_groups (id, name, antilink, antispam, welcome, goodbye, nsfw, is_banned, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	antilink = excluded.antilink,
	antispam = excluded.antispam,
	welcome = excluded.welcome,
	goodbye = excluded.goodbye,
	nsfw = excluded.nsfw,
	is_banned = excluded.is_banned,
	updated_at = excluded.updated_at;`

	if _, err := s.db.ExecContext(ctx, upsert, group.ID, group.Name, group.Antilink, group.Antispam,
		group.Welcome, group.Goodbye, group.NSFW, group.IsBanned, s.now()); err != nil {
		return fmt.Errorf("sqlite: update group: %w", err)
	}

	return nil
}

// ReadEnv returns every persisted env override. It returns nil when the store is unavailable.
func (s *SQLite) ReadEnv(ctx context.Context) map[string]string {
	if s.db == nil {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM env;`)
	if err != nil {
		log.Error().Err(err).Msg("error reading env")
		return nil
	}
	defer rows.Close()

	env := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			log.Error().Err(err).Msg("error scanning env row")
			return nil
		}
		env[key] = value
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("error iterating env rows")
		return nil
	}

	return env
}

func (s *SQLite) UpdateEnv(ctx context.Context, key, value string) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	const upsert = `
INSERT INTO env (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`

	if _, err := s.db.ExecContext(ctx, upsert, key, value, s.now()); err != nil {
		return fmt.Errorf("sqlite: update env %s: %w", key, err)
	}

	return nil
}

// InitializeEnv seeds the env table with defaults unless it already holds values.
func (s *SQLite) InitializeEnv(ctx context.Context, defaults map[string]string) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM env;`).Scan(&count); err != nil {
		return fmt.Errorf("sqlite: count env: %w", err)
	}

	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	for key, value := range defaults {
		if _, err := tx.ExecContext(ctx, `INSERT INTO env (key, value, updated_at) VALUES (?, ?, ?);`,
			key, value, now); err != nil {
			return fmt.Errorf("sqlite: seed env %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	log.Info().Int("keys", len(defaults)).Msg("env initialized in database")

	return nil
}

func (s *SQLite) BanUser(ctx context.Context, id, reason string) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	if reason == "" {
		reason = "No reason provided"
	}

	const upsert = `
INSERT INTO users (id, name, phone, is_banned, banned_reason, updated_at)
VALUES (?, 'User', ?, 1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	is_banned = 1,
	banned_reason = excluded.banned_reason,
	updated_at = excluded.updated_at;`

	if _, err := s.db.ExecContext(ctx, upsert, id, domain.NumberOf(id), reason, s.now()); err != nil {
		return fmt.Errorf("sqlite: ban user: %w", err)
	}

	return nil
}

func (s *SQLite) UnbanUser(ctx context.Context, id string) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	const upsert = `
INSERT INTO users (id, name, phone, updated_at)
VALUES (?, 'User', ?, ?)
ON CONFLICT(id) DO UPDATE SET
	is_banned = 0,
	banned_reason = NULL,
	updated_at = excluded.updated_at;`

	if _, err := s.db.ExecContext(ctx, upsert, id, domain.NumberOf(id), s.now()); err != nil {
		return fmt.Errorf("sqlite: unban user: %w", err)
	}

	return nil
}

// AddWarn increments the warn counter and returns the new value. It returns 1 when the store is
// unavailable.
func (s *SQLite) AddWarn(ctx context.Context, id string) int {
	if s.db == nil {
		return 1
	}

	const upsert = `
INSERT INTO users (id, name, phone, warns, updated_at)
VALUES (?, 'User', ?, 1, ?)
ON CONFLICT(id) DO UPDATE SET
	warns = warns + 1,
	updated_at = excluded.updated_at
RETURNING warns;`

	var warns int
	if err := s.db.QueryRowContext(ctx, upsert, id, domain.NumberOf(id), s.now()).Scan(&warns); err != nil {
		log.Error().Err(err).Str("user", id).Msg("error adding warn")
		return 1
	}

	return warns
}

func (s *SQLite) ResetWarns(ctx context.Context, id string) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	const upsert = `
INSERT INTO users (id, name, phone, updated_at)
VALUES (?, 'User', ?, ?)
ON CONFLICT(id) DO UPDATE SET
	warns = 0,
	updated_at = excluded.updated_at;`

	if _, err := s.db.ExecContext(ctx, upsert, id, domain.NumberOf(id), s.now()); err != nil {
		return fmt.Errorf("sqlite: reset warns: %w", err)
	}

	return nil
}

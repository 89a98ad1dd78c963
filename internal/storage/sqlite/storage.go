// Package sqlite provides a SQLite-backed implementation of the storage interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/storage"
	"github.com/mcoot/kingdom-bot/internal/storage/sqlite/migrations"
)

const playerColumns = `sender, display_name, kingdom, state, expected_type, expected_meta,
	expected_until, data, created_at, updated_at`

// Storage persists players and the interaction log in a SQLite file
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the embedded migrations
func Open(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers, which makes each update transaction atomic
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init pragmas: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite-storage")),
	}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, sender string) (*model.Player, error) {
	return s.getPlayer(ctx, s.db, sender)
}

func (s *Storage) getPlayer(ctx context.Context, q queryer, sender string) (*model.Player, error) {
	row := q.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM players WHERE sender = ?", sender)
	player, err := s.scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, bool, error) {
	args, err := playerArgs(player)
	if err != nil {
		return nil, false, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO players ("+playerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(sender) DO NOTHING",
		args...,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert player: %w", err)
	}
	if n == 1 {
		return player.Clone(), true, nil
	}

	existing, err := s.GetPlayer(ctx, player.Sender)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, sender string, fn storage.MutateFunc) (*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	player, err := s.getPlayer(ctx, tx, sender)
	if err != nil {
		return nil, err
	}
	if err := fn(player); err != nil {
		return nil, err
	}
	player.Sender = sender

	args, err := playerArgs(player)
	if err != nil {
		return nil, err
	}
	// args[0] is the sender; it moves to the WHERE clause
	_, err = tx.ExecContext(ctx, `UPDATE players SET display_name = ?, kingdom = ?, state = ?,
		expected_type = ?, expected_meta = ?, expected_until = ?, data = ?, created_at = ?, updated_at = ?
		WHERE sender = ?`, append(args[1:], sender)...)
	if err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+playerColumns+" FROM players ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		player, err := s.scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// Log operations

func (s *Storage) AppendLog(ctx context.Context, entry *model.LogEntry) error {
	var payload sql.NullString
	if len(entry.Payload) > 0 {
		payload = sql.NullString{String: string(entry.Payload), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO logs (log_id, sender, event, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Sender, string(entry.Event), payload, entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Logs returns the interaction log for a sender, oldest first
func (s *Storage) Logs(ctx context.Context, sender string) ([]*model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT log_id, sender, event, payload, created_at FROM logs WHERE sender = ? ORDER BY created_at, id",
		sender,
	)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.LogEntry
	for rows.Next() {
		var (
			id, payload sql.NullString
			entry       model.LogEntry
			event       string
			createdAt   int64
		)
		if err := rows.Scan(&id, &entry.Sender, &event, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		entry.ID = id.String
		entry.Event = model.LogEventType(event)
		if payload.Valid {
			entry.Payload = []byte(payload.String)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Row mapping

type scanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanPlayer(row scanner) (*model.Player, error) {
	var (
		sender                              string
		displayName, kingdom, state         sql.NullString
		expectedType, expectedMeta, data    sql.NullString
		expectedUntil, createdAt, updatedAt sql.NullInt64
	)
	if err := row.Scan(&sender, &displayName, &kingdom, &state, &expectedType, &expectedMeta,
		&expectedUntil, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	payload, err := model.DecodePayload([]byte(data.String))
	if err != nil {
		s.logger.Warn("malformed player payload, using empty payload",
			slog.String("sender", sender),
			slog.String("error", err.Error()))
	}

	p := &model.Player{
		Sender:      sender,
		DisplayName: displayName.String,
		Kingdom:     model.Kingdom(kingdom.String),
		State:       model.PlayerState(state.String),
		Expectation: model.Expectation{Type: expectedType.String},
		Payload:     payload,
		CreatedAt:   time.UnixMilli(createdAt.Int64).UTC(),
		UpdatedAt:   time.UnixMilli(updatedAt.Int64).UTC(),
	}
	if expectedMeta.Valid && expectedMeta.String != "" {
		p.Expectation.Meta = json.RawMessage(expectedMeta.String)
	}
	if expectedUntil.Valid {
		until := time.UnixMilli(expectedUntil.Int64).UTC()
		p.Expectation.Until = &until
	}
	return p, nil
}

// playerArgs returns the column values in playerColumns order
func playerArgs(p *model.Player) ([]any, error) {
	data, err := model.EncodePayload(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return []any{
		p.Sender,
		p.DisplayName,
		nullString(string(p.Kingdom)),
		string(p.State),
		nullString(p.Expectation.Type),
		nullString(string(p.Expectation.Meta)),
		nullMillis(p.Expectation.Until),
		string(data),
		p.CreatedAt.UnixMilli(),
		p.UpdatedAt.UnixMilli(),
	}, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

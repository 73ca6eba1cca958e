/*
Package cache persists the local user's created-lobby session to a small
sqlite database so it survives client restarts.

The cache is advisory: recovery reads it for continuity, but the server
snapshot is always authoritative. A corrupt or missing cache row degrades to
an empty session, never to an error the caller must handle specially.
*/
package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"lobbysync/internal/app/lobby"
	"lobbysync/internal/pkg/logx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// myLobbyKey is the single row key: the cache holds at most one session.
const myLobbyKey = "my_lobby"

// SQLiteCache implements lobby.SessionCache on an embedded sqlite database.
type SQLiteCache struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the cache database at the given path and
// runs pending migrations.
func Open(path string) (*SQLiteCache, error) {
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session cache: %w", err)
	}

	// modernc sqlite serializes access per connection; a single connection
	// avoids SQLITE_BUSY between the synchronizer and recovery.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach session cache: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate session cache: %w", err)
	}

	return &SQLiteCache{
		db:     db,
		logger: logx.Component("session_cache"),
	}, nil
}

// SaveMyLobby upserts the cached session for the lobby the local user created.
func (c *SQLiteCache) SaveMyLobby(ctx context.Context, l lobby.Lobby, lobbyLink string) error {
	encoded, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode cached lobby: %w", err)
	}

	query := `
		INSERT INTO session_cache (cache_key, lobby_json, lobby_link, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			lobby_json = excluded.lobby_json,
			lobby_link = excluded.lobby_link,
			updated_at = excluded.updated_at
	`

	if _, err := c.db.ExecContext(ctx, query, myLobbyKey, string(encoded), lobbyLink, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save cached session: %w", err)
	}

	c.logger.Debug().Str("lobby_code", l.LobbyCode).Msg("Cached session saved.")
	return nil
}

// LoadMyLobby returns the cached session, or (nil, nil) when none exists.
// A row that no longer decodes is dropped and treated as absent.
func (c *SQLiteCache) LoadMyLobby(ctx context.Context) (*lobby.CachedSession, error) {
	query := `SELECT lobby_json, lobby_link FROM session_cache WHERE cache_key = ?`

	var lobbyJSON, lobbyLink string
	err := c.db.QueryRowContext(ctx, query, myLobbyKey).Scan(&lobbyJSON, &lobbyLink)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached session: %w", err)
	}

	var cached lobby.Lobby
	if err := json.Unmarshal([]byte(lobbyJSON), &cached); err != nil {
		c.logger.Warn().Err(err).Msg("Cached session is corrupt, discarding.")
		if clearErr := c.ClearMyLobby(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("Failed to discard corrupt cached session.")
		}
		return nil, nil
	}

	return &lobby.CachedSession{Lobby: cached, LobbyLink: lobbyLink}, nil
}

// ClearMyLobby deletes the cached session. Deleting an absent row is a no-op.
func (c *SQLiteCache) ClearMyLobby(ctx context.Context) error {
	query := `DELETE FROM session_cache WHERE cache_key = ?`

	if _, err := c.db.ExecContext(ctx, query, myLobbyKey); err != nil {
		return fmt.Errorf("failed to clear cached session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

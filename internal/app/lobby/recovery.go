/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines session recovery: the one-shot startup sequence that
fetches the authoritative lobby snapshot, seeds the store, and reconciles
the durable "my lobby" cache against it. The cache is never trusted over the
snapshot; a cached lobby the snapshot does not confirm is stale and gets
discarded by the reducer's snapshot pass.
*/
package lobby

import (
	"context"

	"lobbysync/internal/pkg/logx"
)

// SnapshotFetcher is the one-shot read collaborator for recovery.
type SnapshotFetcher interface {
	FetchLobbies(ctx context.Context) ([]Lobby, error)
}

// RecoverSession seeds the store from the server snapshot. The cached entry
// is only read for logging; the SnapshotLoaded reduction re-derives MyLobby
// from the snapshot and emits the matching cache save or clear.
func (s *Synchronizer) RecoverSession(ctx context.Context, fetcher SnapshotFetcher) error {
	logger := logx.Component("session_recovery")

	var cached *CachedSession
	if s.cache != nil {
		loaded, err := s.cache.LoadMyLobby(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not read my-lobby cache entry. Continuing without it.")
		} else {
			cached = loaded
		}
	}

	lobbies, err := fetcher.FetchLobbies(ctx)
	if err != nil {
		return err
	}

	if cached != nil {
		confirmed := false
		for _, l := range lobbies {
			if l.LobbyCode == cached.Lobby.LobbyCode && l.CreatedBy == s.reducer.me.ID {
				confirmed = true
				break
			}
		}
		if confirmed {
			logger.Info().
				Str("lobby_code", cached.Lobby.LobbyCode).
				Msg("Cached lobby confirmed by server snapshot.")
		} else {
			logger.Info().
				Str("lobby_code", cached.Lobby.LobbyCode).
				Msg("Cached lobby not present in server snapshot. Discarding stale session.")
		}
	}

	return s.Enqueue(ctx, SnapshotLoaded{Lobbies: lobbies})
}

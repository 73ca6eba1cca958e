/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the synchronizer: the single serialization point for all
mutations. One goroutine drains a bounded action inbox (remote events, local
command results, the recovery snapshot), applies the reducer, commits the
result to the store, and dispatches the derived effects. Because every
mutation passes through this one ordered queue, a local optimistic update and
its remote echo can never race on the same state snapshot.
*/
package lobby

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"lobbysync/internal/pkg/logx"
)

const (
	// actionInboxBuffer bounds the apply queue. Producers block when it is
	// full, which backpressures the transport read pump naturally.
	actionInboxBuffer = 256

	// cacheOpTimeout bounds each durable cache write/delete so a wedged disk
	// cannot stall the apply loop indefinitely.
	cacheOpTimeout = 3 * time.Second
)

// CachedSession is the advisory durable record of "my current lobby".
type CachedSession struct {
	Lobby     Lobby
	LobbyLink string
}

// SessionCache is the durable key/value collaborator for reload-survival.
// The cache is advisory only; the store's own state is authoritative once
// hydrated from the server snapshot.
type SessionCache interface {
	SaveMyLobby(ctx context.Context, l Lobby, lobbyLink string) error
	LoadMyLobby(ctx context.Context) (*CachedSession, error)
	ClearMyLobby(ctx context.Context) error
}

// Synchronizer owns the apply queue and the current converged state.
type Synchronizer struct {
	inbox    chan Action
	store    *Store
	reducer  *Reducer
	cache    SessionCache
	signaler *TurnSignaler

	state  State
	logger zerolog.Logger
}

// NewSynchronizer wires the reducer, store, durable cache, and turn signaler
// into one apply pipeline. cache and signaler may be nil in tests.
func NewSynchronizer(store *Store, reducer *Reducer, cache SessionCache, signaler *TurnSignaler) *Synchronizer {
	return &Synchronizer{
		inbox:    make(chan Action, actionInboxBuffer),
		store:    store,
		reducer:  reducer,
		cache:    cache,
		signaler: signaler,
		state:    NewState(),
		logger:   logx.Component("synchronizer"),
	}
}

// Enqueue submits an action to the apply queue, blocking only when the queue
// is full or the context ends.
func (s *Synchronizer) Enqueue(ctx context.Context, a Action) error {
	select {
	case s.inbox <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the apply queue until the context ends. It must be the only
// goroutine mutating s.state.
func (s *Synchronizer) Run(ctx context.Context) {
	s.logger.Info().Msg("Apply loop started.")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Apply loop stopped.")
			return

		case action := <-s.inbox:
			s.apply(action)
		}
	}
}

// apply runs one reducer transition, commits it, and dispatches effects.
func (s *Synchronizer) apply(action Action) {
	next, effects := s.reducer.Reduce(s.state, action)
	s.state = next
	s.store.Commit(next)

	for _, effect := range effects {
		s.dispatch(effect)
	}
}

// dispatch performs the side work one effect describes. Cache failures are
// logged and dropped: the cache is advisory, and converged state must not
// depend on it.
func (s *Synchronizer) dispatch(effect Effect) {
	switch e := effect.(type) {
	case SaveMyLobby:
		if s.cache == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()
		if err := s.cache.SaveMyLobby(ctx, e.Lobby, e.LobbyLink); err != nil {
			s.logger.Error().Err(err).
				Str("lobby_code", e.Lobby.LobbyCode).
				Msg("Failed to persist my-lobby cache entry.")
		}

	case ClearMyLobby:
		if s.cache == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()
		if err := s.cache.ClearMyLobby(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear my-lobby cache entry.")
		}

	case ShowUserNotice:
		s.store.PushUserNotice(e.Notice)

	case ShowDeletedLobby:
		s.store.SetDeletedLobbyInfo(e.Info)

	case ShowTurnNotice:
		if s.signaler != nil {
			s.signaler.Show(e.Notice)
		}
	}
}

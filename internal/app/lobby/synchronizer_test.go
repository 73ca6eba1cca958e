package lobby

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeCache records cache operations and serves a pre-seeded session.
type fakeCache struct {
	mu      sync.Mutex
	session *CachedSession
	saves   int
	clears  int
	failAll bool
}

func (f *fakeCache) SaveMyLobby(_ context.Context, l Lobby, lobbyLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("disk full")
	}
	f.session = &CachedSession{Lobby: l, LobbyLink: lobbyLink}
	f.saves++
	return nil
}

func (f *fakeCache) LoadMyLobby(_ context.Context) (*CachedSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeCache) ClearMyLobby(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("disk full")
	}
	f.session = nil
	f.clears++
	return nil
}

func (f *fakeCache) snapshot() (saves, clears int, session *CachedSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves, f.clears, f.session
}

// fakeFrames is a FrameSource backed by a plain channel.
type fakeFrames struct {
	ch chan []byte
}

func (f *fakeFrames) Frames() <-chan []byte { return f.ch }

// fakeFetcher serves a fixed snapshot.
type fakeFetcher struct {
	lobbies []Lobby
	err     error
}

func (f *fakeFetcher) FetchLobbies(_ context.Context) ([]Lobby, error) {
	return f.lobbies, f.err
}

// waitFor polls the condition, waking on store change signals and on a
// fallback tick for side effects that land after the commit notification.
func waitFor(t *testing.T, store *Store, condition func() bool) {
	t.Helper()

	ch, cancel := store.Subscribe()
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if condition() {
			return
		}
		select {
		case <-ch:
		case <-ticker.C:
		case <-deadline:
			t.Fatal("timed out waiting for store condition")
		}
	}
}

func startSynchronizer(t *testing.T, cache SessionCache) (*Synchronizer, *Store, context.Context) {
	t.Helper()

	store := NewStore()
	syncer := NewSynchronizer(store, NewReducer(me), cache, NewTurnSignaler())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go syncer.Run(ctx)

	return syncer, store, ctx
}

func TestSynchronizerAppliesActionsInOrder(t *testing.T) {
	cache := &fakeCache{}
	syncer, store, ctx := startSynchronizer(t, cache)

	mine := Lobby{LobbyCode: "EF56", LobbyName: "My Lobby", CreatedBy: "u2"}
	require.NoError(t, syncer.Enqueue(ctx, LobbyCreatedLocally{Lobby: mine, LobbyLink: "https://play.example/join/EF56"}))

	waitFor(t, store, func() bool { return store.MyLobby() != nil })

	saves, _, session := cache.snapshot()
	require.Equal(t, 1, saves)
	require.NotNil(t, session)
	require.Equal(t, "EF56", session.Lobby.LobbyCode)

	require.NoError(t, syncer.Enqueue(ctx, LobbyDeletedLocally{LobbyCode: "EF56"}))

	waitFor(t, store, func() bool { return store.MyLobby() == nil })

	_, clears, session := cache.snapshot()
	require.Equal(t, 1, clears)
	require.Nil(t, session)
	require.Nil(t, store.DeletedLobbyInfo(), "self-initiated delete must not block")
}

func TestSynchronizerSurvivesCacheFailures(t *testing.T) {
	cache := &fakeCache{failAll: true}
	syncer, store, ctx := startSynchronizer(t, cache)

	mine := Lobby{LobbyCode: "EF56", CreatedBy: "u2"}
	require.NoError(t, syncer.Enqueue(ctx, LobbyCreatedLocally{Lobby: mine}))

	// Converged state must not depend on the advisory cache.
	waitFor(t, store, func() bool { return store.MyLobby() != nil })
}

func TestSynchronizerRoutesEffectsToStoreAndSignaler(t *testing.T) {
	cache := &fakeCache{}
	syncer, store, ctx := startSynchronizer(t, cache)

	seed := seedLobby("AB12")
	require.NoError(t, syncer.Enqueue(ctx, SnapshotLoaded{Lobbies: seed.Lobbies}))
	require.NoError(t, syncer.Enqueue(ctx, EventAction{Origin: OriginRemote, Event: Event{
		Type:      EventPlayerKicked,
		LobbyCode: "AB12",
		Data:      []byte(`{"kickedUserId":"u2"}`),
	}}))

	waitFor(t, store, func() bool { return store.DeletedLobbyInfo() != nil })

	info := store.DeletedLobbyInfo()
	require.Equal(t, ReasonKicked, info.Reason)
	require.True(t, info.IsKicked)
}

func TestEventPumpParsesAndDropsMalformedFrames(t *testing.T) {
	cache := &fakeCache{}
	syncer, store, ctx := startSynchronizer(t, cache)

	src := &fakeFrames{ch: make(chan []byte, 8)}

	pumpDone := make(chan error, 1)
	go func() { pumpDone <- syncer.RunEventPump(ctx, src) }()

	src.ch <- []byte(`garbage frame`)
	src.ch <- []byte(`{"type":"LOBBY_CREATED","lobbyCode":"GH78","data":{"lobbyCode":"GH78","lobbyName":"Bingo Hall","createdBy":"u9"}}`)
	close(src.ch)

	require.NoError(t, <-pumpDone, "a closed source is a clean stop")

	waitFor(t, store, func() bool { return len(store.Lobbies()) == 1 })
	require.Equal(t, "GH78", store.Lobbies()[0].LobbyCode)
}

func TestRecoverSessionHydratesFromSnapshot(t *testing.T) {
	cache := &fakeCache{session: &CachedSession{
		Lobby:     Lobby{LobbyCode: "KL12", CreatedBy: "u2"},
		LobbyLink: "https://play.example/join/KL12",
	}}
	syncer, store, ctx := startSynchronizer(t, cache)

	fetcher := &fakeFetcher{lobbies: []Lobby{
		{LobbyCode: "KL12", CreatedBy: "u2", LobbyLink: "https://play.example/join/KL12",
			Members: []Member{{ID: "u2", IsHost: true}}},
		{LobbyCode: "MN34", CreatedBy: "u8", Members: []Member{{ID: "u8", IsHost: true}}},
	}}

	require.NoError(t, syncer.RecoverSession(ctx, fetcher))

	waitFor(t, store, func() bool { return len(store.Lobbies()) == 2 })

	my := store.MyLobby()
	require.NotNil(t, my)
	require.Equal(t, "KL12", my.LobbyCode)
}

func TestRecoverSessionClearsStaleCache(t *testing.T) {
	cache := &fakeCache{session: &CachedSession{
		Lobby: Lobby{LobbyCode: "GONE", CreatedBy: "u2"},
	}}
	syncer, store, ctx := startSynchronizer(t, cache)

	fetcher := &fakeFetcher{lobbies: []Lobby{
		{LobbyCode: "MN34", CreatedBy: "u8", Members: []Member{{ID: "u8", IsHost: true}}},
	}}

	require.NoError(t, syncer.RecoverSession(ctx, fetcher))

	waitFor(t, store, func() bool {
		_, _, session := cache.snapshot()
		return session == nil
	})
	require.Nil(t, store.MyLobby())
}

func TestRecoverSessionPropagatesFetchErrors(t *testing.T) {
	cache := &fakeCache{}
	syncer, _, ctx := startSynchronizer(t, cache)

	fetcher := &fakeFetcher{err: errors.New("backend unreachable")}
	require.Error(t, syncer.RecoverSession(ctx, fetcher))
}

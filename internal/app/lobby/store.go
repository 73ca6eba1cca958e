/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the convergence store: the single mutable shared resource.
It holds the converged state plus the ephemeral signals awaiting display, and
exposes read access and change notification to the local API. The store is
mutated exclusively through reducer output applied by the synchronizer; it
never performs I/O.
*/
package lobby

import (
	"sync"

	"lobbysync/internal/pkg/randx"
)

// userNoticeBacklog bounds how many undelivered transient notices are kept;
// older notices are discarded first since they are display-once signals.
const userNoticeBacklog = 16

// Store holds the converged lobby state and the pending ephemeral signals.
type Store struct {
	// mu protects all fields below.
	mu sync.RWMutex

	state State

	// deletedInfo is the pending blocking terminal signal, cleared only by
	// the consumer through ClearDeletedLobbyInfo.
	deletedInfo *DeletedLobbyInfo

	// userNotices queues display-once "someone left / was kicked" notices
	// until the rendering layer drains them.
	userNotices []TransientUserNotice

	// subscribers maps subscription ids to buffered change-signal channels.
	subscribers map[int]chan struct{}
	nextSubID   int
}

// NewStore returns an empty convergence store.
func NewStore() *Store {
	return &Store{
		state:       NewState(),
		subscribers: make(map[int]chan struct{}),
	}
}

// Commit atomically replaces the converged state and notifies subscribers.
// Only the synchronizer calls this, with reducer output.
func (st *Store) Commit(next State) {
	st.mu.Lock()
	st.state = next
	st.mu.Unlock()

	st.notify()
}

// Lobbies returns a copy of all known lobbies.
func (st *Store) Lobbies() []Lobby {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.state.cloneLobbies()
}

// Members returns a copy of the member list for the given lobby code, or nil
// when the lobby is unknown.
func (st *Store) Members(lobbyCode string) []Member {
	st.mu.RLock()
	defer st.mu.RUnlock()

	members, ok := st.state.MembersByLobby[lobbyCode]
	if !ok {
		return nil
	}

	result := make([]Member, len(members))
	copy(result, members)
	return result
}

// MyLobby returns a copy of the lobby the local user created, or nil.
func (st *Store) MyLobby() *Lobby {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if st.state.MyLobby == nil {
		return nil
	}

	mine := *st.state.MyLobby
	members := make([]Member, len(mine.Members))
	copy(members, mine.Members)
	mine.Members = members
	return &mine
}

// SetDeletedLobbyInfo records the blocking terminal signal.
func (st *Store) SetDeletedLobbyInfo(info DeletedLobbyInfo) {
	st.mu.Lock()
	st.deletedInfo = &info
	st.mu.Unlock()

	st.notify()
}

// DeletedLobbyInfo returns the pending terminal signal, or nil.
func (st *Store) DeletedLobbyInfo() *DeletedLobbyInfo {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if st.deletedInfo == nil {
		return nil
	}
	info := *st.deletedInfo
	return &info
}

// ClearDeletedLobbyInfo discards the pending terminal signal. This is the
// consumer's acknowledgment; the reducer never clears it.
func (st *Store) ClearDeletedLobbyInfo() {
	st.mu.Lock()
	st.deletedInfo = nil
	st.mu.Unlock()

	st.notify()
}

// PushUserNotice queues a display-once transient notice, discarding the
// oldest entry when the backlog is full.
func (st *Store) PushUserNotice(notice TransientUserNotice) {
	if notice.ID == "" {
		notice.ID = randx.NoticeID()
	}

	st.mu.Lock()
	if len(st.userNotices) >= userNoticeBacklog {
		st.userNotices = st.userNotices[1:]
	}
	st.userNotices = append(st.userNotices, notice)
	st.mu.Unlock()

	st.notify()
}

// DrainUserNotices returns all queued transient notices and clears the
// queue. Each notice is delivered exactly once.
func (st *Store) DrainUserNotices() []TransientUserNotice {
	st.mu.Lock()
	defer st.mu.Unlock()

	notices := st.userNotices
	st.userNotices = nil
	return notices
}

// Subscribe registers a change listener. The returned channel receives a
// signal (capacity one, coalesced) whenever the store changes; the returned
// cancel function removes the subscription.
func (st *Store) Subscribe() (<-chan struct{}, func()) {
	st.mu.Lock()
	id := st.nextSubID
	st.nextSubID++
	ch := make(chan struct{}, 1)
	st.subscribers[id] = ch
	st.mu.Unlock()

	cancel := func() {
		st.mu.Lock()
		delete(st.subscribers, id)
		st.mu.Unlock()
	}
	return ch, cancel
}

// notify signals every subscriber without blocking; a subscriber that has
// not consumed the previous signal keeps its single pending one.
func (st *Store) notify() {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, ch := range st.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

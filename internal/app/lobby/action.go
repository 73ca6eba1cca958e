/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the Action union fed into the reducer. Both remote events
and local command results flow through the same entry point, each carrying an
explicit origin tag. The tag replaces the source design's global "is this a
websocket-originated update" flag with a pure, testable predicate.
*/
package lobby

// Origin tags where an action came from. Remote actions are server-pushed
// events; local actions are the results of commands the local user issued.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Action is the closed union of reducer inputs.
type Action interface{ isAction() }

// EventAction wraps a parsed server-pushed event.
type EventAction struct {
	Origin Origin
	Event  Event
}

// SnapshotLoaded seeds the store with the authoritative lobby list fetched
// during session recovery. It replaces all known lobbies wholesale.
type SnapshotLoaded struct {
	Lobbies []Lobby
}

// LobbyCreatedLocally is the successful result of a local create command.
// The optimistic patch it applies is deduplicated against the later
// LOBBY_CREATED echo by lobby-code idempotence.
type LobbyCreatedLocally struct {
	Lobby     Lobby
	LobbyLink string
}

// LobbyDeletedLocally is the successful result of a local delete command.
type LobbyDeletedLocally struct {
	LobbyCode string
}

// LobbyLeftLocally is the successful result of a local leave command. Leaving
// ends the server's lobby-scoped broadcasts to this client, so the echo is
// not guaranteed and the patch must be applied locally. A kick command has no
// local action: its broadcast reaches the host before they leave anything.
type LobbyLeftLocally struct {
	LobbyCode string
	UserID    string
}

func (EventAction) isAction()         {}
func (SnapshotLoaded) isAction()      {}
func (LobbyCreatedLocally) isAction() {}
func (LobbyDeletedLocally) isAction() {}
func (LobbyLeftLocally) isAction()    {}

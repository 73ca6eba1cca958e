/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the Effect union the reducer emits alongside each state
transition. Effects describe side work (cache writes, transient notices) that
the synchronizer dispatches after committing the new state; the reducer
itself never performs I/O.
*/
package lobby

// Effect is the closed union of derived side effects.
type Effect interface{ isEffect() }

// SaveMyLobby persists the local user's lobby (plus share link) to the
// durable session cache so a restart can attempt recovery.
type SaveMyLobby struct {
	Lobby     Lobby
	LobbyLink string
}

// ClearMyLobby removes the durable session cache entry.
type ClearMyLobby struct{}

// ShowUserNotice surfaces a transient "someone left / was kicked" notice.
type ShowUserNotice struct {
	Notice TransientUserNotice
}

// ShowDeletedLobby surfaces the blocking terminal signal for the local user.
type ShowDeletedLobby struct {
	Info DeletedLobbyInfo
}

// ShowTurnNotice asks the turn signaler to display a navigable notice.
type ShowTurnNotice struct {
	Notice TurnNotice
}

func (SaveMyLobby) isEffect()      {}
func (ClearMyLobby) isEffect()     {}
func (ShowUserNotice) isEffect()   {}
func (ShowDeletedLobby) isEffect() {}
func (ShowTurnNotice) isEffect()   {}

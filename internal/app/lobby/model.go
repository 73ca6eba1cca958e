/*
Package lobby contains the core logic that keeps a client-side mirror of
server-authoritative lobby state converged against a continuous, unordered,
at-least-once event stream and locally-initiated commands.

This file defines the domain model: lobbies, members, and the ephemeral
signals the reducer emits for the rendering layer.
*/
package lobby

import "time"

// LobbyType distinguishes ordinary lobbies from scheduled platform events.
type LobbyType string

const (
	// TypeNormal is a player-created lobby with no schedule.
	TypeNormal LobbyType = "normal"

	// TypeEvent is a scheduled platform event with a start and end time.
	TypeEvent LobbyType = "event"
)

// Status describes the lifecycle of a lobby as seen by the client. One field
// carries both the plain-lobby and the scheduled-event vocabularies; the
// server only ever sends values appropriate for the lobby's type.
type Status string

const (
	StatusActive   Status = "active"
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusEnded    Status = "ended"
	StatusHostLeft Status = "host_left"
)

// Member represents one participant in a lobby.
type Member struct {
	// ID is the platform-wide unique user identifier.
	ID string `json:"id"`

	// Name is the member's display name.
	Name string `json:"name"`

	// Avatar is the URL for the member's avatar, when set.
	Avatar string `json:"avatar,omitempty"`

	// IsHost marks the member with elevated control over the lobby.
	// At most one member of a lobby has IsHost set at any converged point.
	IsHost bool `json:"isHost"`
}

// Lobby is a named, addressable session grouping members around one game
// instance. LobbyCode is the sole identity key; no two live lobbies share one.
type Lobby struct {
	LobbyCode         string     `json:"lobbyCode"`
	LobbyName         string     `json:"lobbyName"`
	LobbyType         LobbyType  `json:"lobbyType"`
	CreatedBy         string     `json:"createdBy"`
	MaxMembers        int        `json:"maxMembers"`
	Members           []Member   `json:"members"`
	StartTime         *time.Time `json:"startTime,omitempty"`
	EndTime           *time.Time `json:"endTime,omitempty"`
	Status            Status     `json:"status"`
	PasswordProtected bool       `json:"passwordProtected"`

	// LobbyLink is the shareable join URL, known for lobbies the local
	// user created.
	LobbyLink string `json:"lobbyLink,omitempty"`
}

// HasMember reports whether the given user id is in the lobby's member list.
func (l Lobby) HasMember(userID string) bool {
	for _, m := range l.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Reason strings attached to DeletedLobbyInfo and TransientUserNotice so the
// rendering layer can localize the terminal message.
const (
	ReasonKicked     = "kicked"
	ReasonLeft       = "left"
	ReasonDeleted    = "deleted"
	ReasonExpired    = "expired"
	ReasonRemoved    = "removed"
	ReasonEventEnded = "event_ended"
	ReasonHostLeft   = "host_left"
)

// TransientUserNotice is an ephemeral signal describing "someone just left or
// was kicked". It is displayed once and discarded; it is not part of the
// convergent state. ID is assigned when the notice is queued so the rendering
// layer can key repeated notices about the same user.
type TransientUserNotice struct {
	ID        string `json:"id,omitempty"`
	LobbyCode string `json:"lobbyCode"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// DeletedLobbyInfo is the ephemeral terminal signal produced when the local
// user's view of a lobby is invalidated by a remote actor (host deleted it,
// the event expired, the user was kicked). It drives a blocking UI state and
// is cleared explicitly by the consumer, never by the reducer.
type DeletedLobbyInfo struct {
	LobbyCode string `json:"lobbyCode"`
	Reason    string `json:"reason"`
	IsKicked  bool   `json:"isKicked,omitempty"`
}

// TurnNotice is the transient, dismissible, navigable signal emitted when a
// turn-change event names the local user. It is orthogonal to lobby and
// membership state.
type TurnNotice struct {
	LobbyCode string `json:"lobbyCode"`
	Message   string `json:"message"`
}

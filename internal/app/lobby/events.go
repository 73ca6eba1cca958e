/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the inbound event envelope and the discriminated event
union pushed by the platform backend, together with the tolerant parsing the
EventStream adapter applies to every raw frame.
*/
package lobby

import (
	"encoding/json"
	"strings"
)

// EventType is the discriminator carried in every inbound event envelope.
type EventType string

const (
	EventLobbyCreated       EventType = "LOBBY_CREATED"
	EventUserJoined         EventType = "USER_JOINED"
	EventUserLeft           EventType = "USER_LEFT"
	EventMemberCountUpdated EventType = "LOBBY_MEMBER_COUNT_UPDATED"
	EventPlayerKicked       EventType = "PLAYER_KICKED_BY_HOST"
	EventUserKicked         EventType = "USER_KICKED"
	EventLobbyDeleted       EventType = "LOBBY_DELETED"
	EventLobbyExpired       EventType = "LOBBY_EXPIRED"
	EventLobbyRemoved       EventType = "LOBBY_REMOVED"
	EventLobbyUpdated       EventType = "LOBBY_UPDATED"
	EventStatusChanged      EventType = "EVENT_STATUS"
	EventHostReturned       EventType = "HOST_RETURNED"
	EventHostLeaveTimeout   EventType = "HOST_LEAVE_TIMEOUT"
)

// turnChangeSuffix identifies the per-game turn events (HANGMAN_TURN_CHANGE,
// BINGO_TURN_CHANGE, ...) without enumerating every game.
const turnChangeSuffix = "_TURN_CHANGE"

// Event is the parsed inbound envelope. Only Type is required; consumers must
// tolerate missing payloads, additional unknown fields, and unknown types.
type Event struct {
	Type            EventType       `json:"type"`
	LobbyCode       string          `json:"lobbyCode,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	SharedGameState json.RawMessage `json:"sharedGameState,omitempty"`
}

// IsTurnChange reports whether the event is a per-game turn-change signal.
func (e Event) IsTurnChange() bool {
	return strings.HasSuffix(string(e.Type), turnChangeSuffix)
}

// ParseEvent attempts to parse a raw frame into an Event. It returns ok=false
// for non-JSON frames and frames missing the type discriminator; the caller
// logs and drops those without ever failing the pipeline. Unknown event types
// parse successfully and reduce to a no-op downstream (forward compatibility).
func ParseEvent(raw []byte) (Event, bool) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return Event{}, false
	}

	if event.Type == "" {
		return Event{}, false
	}

	return event, true
}

// memberPayload covers the membership events. The backend is inconsistent
// about the id field name ("userId" on join/turn events, "kickedUserId" on
// kick events, "id" inside full member objects), so all three are accepted.
type memberPayload struct {
	UserID       string `json:"userId"`
	KickedUserID string `json:"kickedUserId"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	IsHost       bool   `json:"isHost"`
	Message      string `json:"message"`
}

// member normalizes the payload into a Member, preferring the most specific
// id field present.
func (p memberPayload) member() Member {
	id := p.UserID
	if id == "" {
		id = p.KickedUserID
	}
	if id == "" {
		id = p.ID
	}

	name := p.Name
	if name == "" {
		name = id
	}

	return Member{
		ID:     id,
		Name:   name,
		Avatar: p.Avatar,
		IsHost: p.IsHost,
	}
}

// decodeMember decodes the event payload as a single member. ok=false means
// the payload was absent, malformed, or carried no usable id.
func (e Event) decodeMember() (Member, string, bool) {
	if len(e.Data) == 0 {
		return Member{}, "", false
	}

	var payload memberPayload
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return Member{}, "", false
	}

	member := payload.member()
	if member.ID == "" {
		return Member{}, "", false
	}

	return member, payload.Message, true
}

// decodeLobby decodes the event payload as a full lobby object, falling back
// to the envelope lobbyCode when the payload omits its own.
func (e Event) decodeLobby() (Lobby, bool) {
	if len(e.Data) == 0 {
		return Lobby{}, false
	}

	var decoded Lobby
	if err := json.Unmarshal(e.Data, &decoded); err != nil {
		return Lobby{}, false
	}

	if decoded.LobbyCode == "" {
		decoded.LobbyCode = e.LobbyCode
	}
	if decoded.LobbyCode == "" {
		return Lobby{}, false
	}

	return decoded, true
}

// decodeMembers decodes the wholesale member list carried by the
// authoritative count-sync event.
func (e Event) decodeMembers() ([]Member, bool) {
	if len(e.Data) == 0 {
		return nil, false
	}

	var payload struct {
		Members []Member `json:"members"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, false
	}

	if payload.Members == nil {
		return nil, false
	}

	return payload.Members, true
}

// decodeStatus decodes the status transition carried by EVENT_STATUS.
func (e Event) decodeStatus() (Status, bool) {
	if len(e.Data) == 0 {
		return "", false
	}

	var payload struct {
		Status Status `json:"status"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return "", false
	}

	if payload.Status == "" {
		return "", false
	}

	return payload.Status, true
}

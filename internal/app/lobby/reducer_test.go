package lobby

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"lobbysync/internal/app/user"
)

var me = user.User{ID: "u2", Name: "Ramona", Avatar: "https://cdn.example/u2.png"}

func newTestReducer() *Reducer {
	return NewReducer(me)
}

// evt builds a remote EventAction from a raw JSON payload string.
func evt(eventType EventType, lobbyCode, data string) EventAction {
	e := Event{Type: eventType, LobbyCode: lobbyCode}
	if data != "" {
		e.Data = json.RawMessage(data)
	}
	return EventAction{Origin: OriginRemote, Event: e}
}

// seedLobby returns a state holding one lobby hosted by u1 with u2 (the local
// user) as a member.
func seedLobby(code string) State {
	s := NewState()
	s.Lobbies = []Lobby{{
		LobbyCode: code,
		LobbyName: "Hangman Night",
		LobbyType: TypeNormal,
		CreatedBy: "u1",
		Status:    StatusActive,
		Members: []Member{
			{ID: "u1", Name: "Hazel", IsHost: true},
			{ID: "u2", Name: "Ramona"},
		},
	}}
	return s.normalized()
}

// requireIndexConsistent checks the derived member index matches the lobby
// list exactly, in both directions.
func requireIndexConsistent(t *testing.T, s State) {
	t.Helper()

	require.Len(t, s.MembersByLobby, len(s.Lobbies))
	for _, l := range s.Lobbies {
		indexed, ok := s.MembersByLobby[l.LobbyCode]
		require.True(t, ok, "lobby %s missing from member index", l.LobbyCode)
		require.Equal(t, l.Members, indexed)
	}
}

func TestReduceJoinIsIdempotent(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	join := evt(EventUserJoined, "AB12", `{"userId":"u3","name":"Theo"}`)

	s, effects := r.Reduce(s, join)
	require.Empty(t, effects)
	require.Len(t, s.Lobbies[0].Members, 3)

	// Duplicate delivery of the same join changes nothing.
	s, effects = r.Reduce(s, join)
	require.Empty(t, effects)
	require.Len(t, s.Lobbies[0].Members, 3)

	requireIndexConsistent(t, s)
}

func TestReduceLeaveForUnknownLobbyIsNoOp(t *testing.T) {
	r := newTestReducer()
	s := NewState()

	next, effects := r.Reduce(s, evt(EventUserLeft, "ZZZZ", `{"userId":"u3"}`))
	require.Empty(t, effects)
	require.Empty(t, next.Lobbies)
}

func TestReduceLeaveOfAbsentMemberIsNoOp(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventUserLeft, "AB12", `{"userId":"ghost"}`))
	require.Empty(t, effects)
	require.Len(t, next.Lobbies[0].Members, 2)
}

func TestReduceOtherUserLeaveEmitsNoticeWhenParticipating(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventUserLeft, "AB12", `{"userId":"u1","name":"Hazel"}`))

	require.Len(t, next.Lobbies[0].Members, 1)
	require.Len(t, effects, 1)
	notice, ok := effects[0].(ShowUserNotice)
	require.True(t, ok)
	require.Equal(t, "Hazel", notice.Notice.Name)
	require.Equal(t, ReasonLeft, notice.Notice.Reason)
}

func TestReduceOtherUserLeaveSilentWhenOnlyBrowsing(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s.Lobbies = []Lobby{{
		LobbyCode: "CD34",
		CreatedBy: "u1",
		Status:    StatusActive,
		Members: []Member{
			{ID: "u1", Name: "Hazel", IsHost: true},
			{ID: "u3", Name: "Theo"},
		},
	}}
	s = s.normalized()

	next, effects := r.Reduce(s, evt(EventUserLeft, "CD34", `{"userId":"u3","name":"Theo"}`))
	require.Empty(t, effects)
	require.Len(t, next.Lobbies[0].Members, 1)
}

func TestReduceLocalCreateThenRemoteEchoCollapses(t *testing.T) {
	r := newTestReducer()
	s := NewState()

	mine := Lobby{LobbyCode: "EF56", LobbyName: "My Lobby", CreatedBy: "u2", MaxMembers: 6}

	s, effects := r.Reduce(s, LobbyCreatedLocally{Lobby: mine, LobbyLink: "https://play.example/join/EF56"})
	require.Len(t, s.Lobbies, 1)
	require.NotNil(t, s.MyLobby)
	require.Equal(t, "https://play.example/join/EF56", s.MyLobby.LobbyLink)

	var saved bool
	for _, e := range effects {
		if _, ok := e.(SaveMyLobby); ok {
			saved = true
		}
	}
	require.True(t, saved, "local create must persist the session")

	// The stream echoes the creation back; the lobby must not duplicate and
	// the link must survive.
	s, effects = r.Reduce(s, evt(EventLobbyCreated, "EF56",
		`{"lobbyCode":"EF56","lobbyName":"My Lobby","createdBy":"u2","maxMembers":6}`))
	require.Empty(t, effects)
	require.Len(t, s.Lobbies, 1)
	require.Equal(t, "https://play.example/join/EF56", s.MyLobby.LobbyLink)

	requireIndexConsistent(t, s)
}

func TestReduceRemoteEchoBeforeLocalResultKeepsLink(t *testing.T) {
	r := newTestReducer()
	s := NewState()

	// Echo outruns the command result.
	s, _ = r.Reduce(s, evt(EventLobbyCreated, "EF56",
		`{"lobbyCode":"EF56","lobbyName":"My Lobby","createdBy":"u2"}`))
	require.Len(t, s.Lobbies, 1)

	s, _ = r.Reduce(s, LobbyCreatedLocally{
		Lobby:     Lobby{LobbyCode: "EF56", LobbyName: "My Lobby", CreatedBy: "u2"},
		LobbyLink: "https://play.example/join/EF56",
	})
	require.Len(t, s.Lobbies, 1)
	require.Equal(t, "https://play.example/join/EF56", s.Lobbies[0].LobbyLink)
}

func TestReduceCreateSeedsCreatorAsHost(t *testing.T) {
	r := newTestReducer()
	s := NewState()

	s, _ = r.Reduce(s, evt(EventLobbyCreated, "GH78",
		`{"lobbyCode":"GH78","lobbyName":"Bingo Hall","createdBy":"u9"}`))

	require.Len(t, s.Lobbies[0].Members, 1)
	require.Equal(t, "u9", s.Lobbies[0].Members[0].ID)
	require.True(t, s.Lobbies[0].Members[0].IsHost)
	require.Nil(t, s.MyLobby)
}

func TestReduceKickOfLocalUserEmitsBlockingSignal(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventPlayerKicked, "AB12", `{"kickedUserId":"u2"}`))

	require.False(t, next.Lobbies[0].HasMember("u2"))

	require.Len(t, effects, 1)
	deleted, ok := effects[0].(ShowDeletedLobby)
	require.True(t, ok)
	require.Equal(t, "AB12", deleted.Info.LobbyCode)
	require.Equal(t, ReasonKicked, deleted.Info.Reason)
	require.True(t, deleted.Info.IsKicked)
}

func TestReduceKickOfOtherUserEmitsTransientNotice(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")
	s, _ = r.Reduce(s, evt(EventUserJoined, "AB12", `{"userId":"u3","name":"Theo"}`))

	next, effects := r.Reduce(s, evt(EventPlayerKicked, "AB12", `{"kickedUserId":"u3","name":"Theo"}`))

	require.False(t, next.Lobbies[0].HasMember("u3"))
	require.Len(t, effects, 1)
	notice, ok := effects[0].(ShowUserNotice)
	require.True(t, ok)
	require.Equal(t, "Theo", notice.Notice.Name)
	require.Equal(t, ReasonKicked, notice.Notice.Reason)
}

func TestReduceDuplicateKickDeliveryStaysConsistent(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	kick := evt(EventPlayerKicked, "AB12", `{"kickedUserId":"u2"}`)

	s, _ = r.Reduce(s, kick)
	membersAfterFirst := len(s.Lobbies[0].Members)

	// USER_KICKED arrives as well; membership must not change again.
	dup := evt(EventUserKicked, "AB12", `{"kickedUserId":"u2"}`)
	s, effects := r.Reduce(s, dup)
	require.Len(t, s.Lobbies[0].Members, membersAfterFirst)

	// The blocking signal is emitted again but carries identical content, so
	// the consumer sees one coherent terminal condition.
	require.Len(t, effects, 1)
	_, ok := effects[0].(ShowDeletedLobby)
	require.True(t, ok)
}

func TestReduceCountSyncReplacesMembersWholesale(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventMemberCountUpdated, "AB12",
		`{"members":[{"id":"u1","name":"Hazel","isHost":true},{"id":"u2","name":"Ramona"},{"id":"u4","name":"Iris"}]}`))

	require.Empty(t, effects)
	require.Len(t, next.Lobbies[0].Members, 3)
	require.True(t, next.Lobbies[0].HasMember("u4"))
	requireIndexConsistent(t, next)
}

func TestReduceSingleHostInvariantPrefersCreator(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	// Drifted events produce two hosts; the creator keeps the flag.
	next, _ := r.Reduce(s, evt(EventMemberCountUpdated, "AB12",
		`{"members":[{"id":"u1","name":"Hazel","isHost":true},{"id":"u2","name":"Ramona","isHost":true}]}`))

	hosts := 0
	for _, m := range next.Lobbies[0].Members {
		if m.IsHost {
			hosts++
			require.Equal(t, "u1", m.ID)
		}
	}
	require.Equal(t, 1, hosts)
}

func TestReduceLocalDeleteSkipsBlockingSignal(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s, _ = r.Reduce(s, LobbyCreatedLocally{
		Lobby:     Lobby{LobbyCode: "EF56", CreatedBy: "u2"},
		LobbyLink: "https://play.example/join/EF56",
	})

	next, effects := r.Reduce(s, LobbyDeletedLocally{LobbyCode: "EF56"})

	require.Empty(t, next.Lobbies)
	require.Nil(t, next.MyLobby)

	require.Len(t, effects, 1)
	_, ok := effects[0].(ClearMyLobby)
	require.True(t, ok, "self-initiated deletion must only clear the cache")
}

func TestReduceRemoteDeleteOfMyLobbyEmitsBlockingSignal(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s, _ = r.Reduce(s, LobbyCreatedLocally{Lobby: Lobby{LobbyCode: "EF56", CreatedBy: "u2"}})

	next, effects := r.Reduce(s, evt(EventLobbyExpired, "EF56", ""))

	require.Empty(t, next.Lobbies)
	require.Nil(t, next.MyLobby)
	require.Len(t, effects, 2)

	_, ok := effects[0].(ClearMyLobby)
	require.True(t, ok)
	deleted, ok := effects[1].(ShowDeletedLobby)
	require.True(t, ok)
	require.Equal(t, ReasonExpired, deleted.Info.Reason)
}

func TestReduceRemoteDeleteWhileBrowsingIsSilent(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s.Lobbies = []Lobby{{LobbyCode: "CD34", CreatedBy: "u1", Status: StatusActive,
		Members: []Member{{ID: "u1", IsHost: true}}}}
	s = s.normalized()

	next, effects := r.Reduce(s, evt(EventLobbyDeleted, "CD34", ""))

	require.Empty(t, next.Lobbies)
	require.Empty(t, effects, "a browsed lobby vanishing must not block the user")
}

func TestReduceSelfLeaveFromAnotherDeviceClearsMyLobbyQuietly(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s, _ = r.Reduce(s, LobbyCreatedLocally{Lobby: Lobby{LobbyCode: "EF56", CreatedBy: "u2"}})

	next, effects := r.Reduce(s, evt(EventUserLeft, "EF56", `{"userId":"u2"}`))

	require.Nil(t, next.MyLobby)
	require.Len(t, effects, 1)
	_, ok := effects[0].(ClearMyLobby)
	require.True(t, ok)
}

func TestReduceUpdateMergesMetadataKeepsMembers(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventLobbyUpdated, "AB12",
		`{"lobbyCode":"AB12","lobbyName":"Hangman Night II","maxMembers":8}`))

	require.Empty(t, effects)
	require.Equal(t, "Hangman Night II", next.Lobbies[0].LobbyName)
	require.Equal(t, 8, next.Lobbies[0].MaxMembers)
	require.Len(t, next.Lobbies[0].Members, 2, "update without members keeps the converged list")
	require.Equal(t, "u1", next.Lobbies[0].CreatedBy)
}

func TestReduceUpdateForUnknownLobbyInsertsIt(t *testing.T) {
	r := newTestReducer()
	s := NewState()

	next, _ := r.Reduce(s, evt(EventLobbyUpdated, "IJ90",
		`{"lobbyCode":"IJ90","lobbyName":"Trivia","createdBy":"u7"}`))

	require.Len(t, next.Lobbies, 1)
	require.Equal(t, "IJ90", next.Lobbies[0].LobbyCode)
}

func TestReduceEventStatusProgression(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s.Lobbies = []Lobby{{LobbyCode: "EV01", LobbyType: TypeEvent, CreatedBy: "u1",
		Status: StatusUpcoming, Members: []Member{{ID: "u1", IsHost: true}}}}
	s = s.normalized()

	next, effects := r.Reduce(s, evt(EventStatusChanged, "EV01", `{"status":"ongoing"}`))
	require.Empty(t, effects)
	require.Equal(t, StatusOngoing, next.Lobbies[0].Status)

	// The local user only browses this event, so "ended" is a passive status
	// flip rather than a teardown.
	next, effects = r.Reduce(next, evt(EventStatusChanged, "EV01", `{"status":"ended"}`))
	require.Empty(t, effects)
	require.Equal(t, StatusEnded, next.Lobbies[0].Status)
}

func TestReduceEventEndedTearsDownForParticipants(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s.Lobbies = []Lobby{{LobbyCode: "EV02", LobbyType: TypeEvent, CreatedBy: "u1",
		Status: StatusOngoing, Members: []Member{
			{ID: "u1", IsHost: true},
			{ID: "u2"},
		}}}
	s = s.normalized()

	next, effects := r.Reduce(s, evt(EventStatusChanged, "EV02", `{"status":"ended"}`))

	require.Empty(t, next.Lobbies)
	require.Len(t, effects, 1)
	deleted, ok := effects[0].(ShowDeletedLobby)
	require.True(t, ok)
	require.Equal(t, ReasonEventEnded, deleted.Info.Reason)
}

func TestReduceHostLeaveTimeoutForParticipant(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventHostLeaveTimeout, "AB12", ""))

	require.Empty(t, next.Lobbies)
	require.Len(t, effects, 1)
	deleted, ok := effects[0].(ShowDeletedLobby)
	require.True(t, ok)
	require.Equal(t, ReasonHostLeft, deleted.Info.Reason)
}

func TestReduceHostLeaveTimeoutForBrowserFlipsStatus(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s.Lobbies = []Lobby{{LobbyCode: "CD34", CreatedBy: "u1", Status: StatusActive,
		Members: []Member{{ID: "u1", IsHost: true}}}}
	s = s.normalized()

	next, effects := r.Reduce(s, evt(EventHostLeaveTimeout, "CD34", ""))

	require.Empty(t, effects)
	require.Equal(t, StatusHostLeft, next.Lobbies[0].Status)
}

func TestReduceHostReturnedReassignsSingleHost(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s.Lobbies = []Lobby{{LobbyCode: "CD34", CreatedBy: "u1", Status: StatusHostLeft,
		Members: []Member{
			{ID: "u2", Name: "Ramona", IsHost: true},
			{ID: "u3", Name: "Theo"},
		}}}
	s = s.normalized()

	next, effects := r.Reduce(s, evt(EventHostReturned, "CD34", `{"userId":"u1","name":"Hazel"}`))

	require.Empty(t, effects)
	require.Equal(t, StatusActive, next.Lobbies[0].Status)
	require.True(t, next.Lobbies[0].HasMember("u1"), "missing host is re-inserted")

	hosts := 0
	for _, m := range next.Lobbies[0].Members {
		if m.IsHost {
			hosts++
			require.Equal(t, "u1", m.ID)
		}
	}
	require.Equal(t, 1, hosts)
}

func TestReduceTurnChangeForLocalUser(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt("HANGMAN_TURN_CHANGE", "AB12", `{"userId":"u2"}`))

	require.Equal(t, s.Lobbies, next.Lobbies, "turn events never touch lobby state")
	require.Len(t, effects, 1)
	turn, ok := effects[0].(ShowTurnNotice)
	require.True(t, ok)
	require.Equal(t, "AB12", turn.Notice.LobbyCode)
	require.Equal(t, "It's your turn!", turn.Notice.Message)
}

func TestReduceTurnChangeForOtherUserIgnored(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	_, effects := r.Reduce(s, evt("BINGO_TURN_CHANGE", "AB12", `{"userId":"u1"}`))
	require.Empty(t, effects)
}

func TestReduceSnapshotReplacesStateAndDerivesMyLobby(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	snapshot := []Lobby{
		{LobbyCode: "KL12", CreatedBy: "u2", LobbyName: "Mine",
			LobbyLink: "https://play.example/join/KL12",
			Members:   []Member{{ID: "u2", IsHost: true}}},
		{LobbyCode: "MN34", CreatedBy: "u8", LobbyName: "Theirs",
			Members: []Member{{ID: "u8", IsHost: true}}},
	}

	next, effects := r.Reduce(s, SnapshotLoaded{Lobbies: snapshot})

	require.Len(t, next.Lobbies, 2)
	require.Nil(t, nextFind(next, "AB12"), "snapshot wholesale-replaces prior state")
	require.NotNil(t, next.MyLobby)
	require.Equal(t, "KL12", next.MyLobby.LobbyCode)

	require.Len(t, effects, 1)
	saved, ok := effects[0].(SaveMyLobby)
	require.True(t, ok)
	require.Equal(t, "KL12", saved.Lobby.LobbyCode)

	requireIndexConsistent(t, next)
}

func TestReduceSnapshotWithoutMyLobbyClearsCache(t *testing.T) {
	r := newTestReducer()
	s := NewState()
	s, _ = r.Reduce(s, LobbyCreatedLocally{Lobby: Lobby{LobbyCode: "EF56", CreatedBy: "u2"}})

	next, effects := r.Reduce(s, SnapshotLoaded{Lobbies: []Lobby{
		{LobbyCode: "MN34", CreatedBy: "u8", Members: []Member{{ID: "u8", IsHost: true}}},
	}})

	require.Nil(t, next.MyLobby)
	require.Len(t, effects, 1)
	_, ok := effects[0].(ClearMyLobby)
	require.True(t, ok, "an unconfirmed cached session must be cleared")
}

func TestReduceUnknownEventTypeIsNoOp(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt("SOME_FUTURE_EVENT", "AB12", `{"anything":true}`))
	require.Empty(t, effects)
	require.Equal(t, s.Lobbies, next.Lobbies)
}

func TestReduceMalformedPayloadIsNoOp(t *testing.T) {
	r := newTestReducer()
	s := seedLobby("AB12")

	next, effects := r.Reduce(s, evt(EventUserJoined, "AB12", `{"userId":12}`))
	require.Empty(t, effects)
	require.Equal(t, s.Lobbies, next.Lobbies)
}

// nextFind returns the lobby with the given code or nil.
func nextFind(s State, code string) *Lobby {
	for i := range s.Lobbies {
		if s.Lobbies[i].LobbyCode == code {
			return &s.Lobbies[i]
		}
	}
	return nil
}

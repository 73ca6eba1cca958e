/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the reconciliation reducer: a pure function from the
current state and one action (remote event or local command result) to the
next state plus derived effects. All precedence and idempotence rules live
here; the event stream gives no ordering or at-most-once guarantees, so every
rule is written to tolerate duplicates and reordering.
*/
package lobby

import "lobbysync/internal/app/user"

// Reducer encapsulates the reconciliation rules. It carries the local user
// identity so membership events can be classified as self or other; given
// that identity, Reduce is a pure function.
type Reducer struct {
	me user.User
}

// NewReducer returns a reducer bound to the local user identity.
func NewReducer(me user.User) *Reducer {
	return &Reducer{me: me}
}

// Reduce is the single entry point for all mutations. Unknown or malformed
// actions return the state unchanged with no effects; the reducer never
// panics on foreign input.
func (r *Reducer) Reduce(s State, a Action) (State, []Effect) {
	switch action := a.(type) {
	case SnapshotLoaded:
		return r.applySnapshot(s, action.Lobbies)

	case LobbyCreatedLocally:
		return r.applyCreate(s, action.Lobby, action.LobbyLink)

	case LobbyDeletedLocally:
		return r.applyTerminal(s, action.LobbyCode, ReasonDeleted, false)

	case LobbyLeftLocally:
		return r.applyLeave(s, action.LobbyCode, Member{ID: action.UserID}, false)

	case EventAction:
		return r.applyEvent(s, action.Event)

	default:
		return s, nil
	}
}

// applyEvent dispatches one parsed server-pushed event.
func (r *Reducer) applyEvent(s State, e Event) (State, []Effect) {
	if e.IsTurnChange() {
		return r.applyTurnChange(s, e)
	}

	switch e.Type {
	case EventLobbyCreated:
		created, ok := e.decodeLobby()
		if !ok {
			return s, nil
		}
		return r.applyCreate(s, created, "")

	case EventUserJoined:
		return r.applyJoin(s, e)

	case EventUserLeft:
		member, _, ok := e.decodeMember()
		if !ok {
			return s, nil
		}
		return r.applyLeave(s, e.LobbyCode, member, true)

	case EventPlayerKicked, EventUserKicked:
		return r.applyKick(s, e)

	case EventMemberCountUpdated:
		return r.applyCountSync(s, e)

	case EventLobbyDeleted:
		return r.applyTerminal(s, e.LobbyCode, ReasonDeleted, true)

	case EventLobbyExpired:
		return r.applyTerminal(s, e.LobbyCode, ReasonExpired, true)

	case EventLobbyRemoved:
		return r.applyTerminal(s, e.LobbyCode, ReasonRemoved, true)

	case EventLobbyUpdated:
		return r.applyUpdate(s, e)

	case EventStatusChanged:
		return r.applyEventStatus(s, e)

	case EventHostReturned:
		return r.applyHostReturned(s, e)

	case EventHostLeaveTimeout:
		return r.applyHostLeaveTimeout(s, e)

	default:
		// Unknown event types are tolerated for forward compatibility.
		return s, nil
	}
}

// applySnapshot replaces all known lobbies with the authoritative server
// snapshot and re-derives MyLobby from it. Any durable cache entry that the
// snapshot does not confirm is cleared: the snapshot is the sole source of
// truth at recovery time.
func (r *Reducer) applySnapshot(s State, lobbies []Lobby) (State, []Effect) {
	next := NewState()
	next.Lobbies = make([]Lobby, len(lobbies))
	copy(next.Lobbies, lobbies)
	for i := range next.Lobbies {
		members := make([]Member, len(next.Lobbies[i].Members))
		copy(members, next.Lobbies[i].Members)
		next.Lobbies[i].Members = members
		if next.Lobbies[i].Status == "" {
			next.Lobbies[i].Status = StatusActive
		}
	}

	var effects []Effect
	for i := range next.Lobbies {
		if next.Lobbies[i].CreatedBy == r.me.ID {
			mine := next.Lobbies[i]
			next.MyLobby = &mine
			effects = append(effects, SaveMyLobby{Lobby: mine, LobbyLink: mine.LobbyLink})
			break
		}
	}
	if next.MyLobby == nil {
		effects = append(effects, ClearMyLobby{})
	}

	return next.normalized(), effects
}

// applyCreate adds a lobby if its code is not already present, making
// duplicate LOBBY_CREATED delivery and the local-create-then-remote-echo
// sequence both collapse to a single entry. A creation with an empty member
// list seeds the creator as the host member.
func (r *Reducer) applyCreate(s State, created Lobby, lobbyLink string) (State, []Effect) {
	var effects []Effect

	if created.Status == "" {
		created.Status = StatusActive
	}
	if created.LobbyType == "" {
		created.LobbyType = TypeNormal
	}
	if lobbyLink != "" {
		created.LobbyLink = lobbyLink
	}

	if len(created.Members) == 0 && created.CreatedBy != "" {
		creator := Member{ID: created.CreatedBy, Name: created.CreatedBy, IsHost: true}
		if r.me.Is(created.CreatedBy) {
			creator.Name = r.me.Name
			creator.Avatar = r.me.Avatar
		}
		created.Members = []Member{creator}
	}

	if i, exists := s.find(created.LobbyCode); exists {
		// The remote echo can outrun the local command result; record the
		// share link on the already-known lobby instead of duplicating it.
		if lobbyLink != "" && s.Lobbies[i].LobbyLink == "" {
			s.Lobbies = s.cloneLobbies()
			s.Lobbies[i].LobbyLink = lobbyLink

			// The echo-time cache write had no link; refresh it.
			if s.MyLobby != nil && s.MyLobby.LobbyCode == created.LobbyCode {
				effects = append(effects, SaveMyLobby{Lobby: s.Lobbies[i], LobbyLink: lobbyLink})
			}
		}
	} else {
		s.Lobbies = append(s.cloneLobbies(), created)
	}

	if r.me.Is(created.CreatedBy) && s.MyLobby == nil {
		mine := created
		s.MyLobby = &mine
		effects = append(effects, SaveMyLobby{Lobby: mine, LobbyLink: mine.LobbyLink})
	}

	return s.normalized(), effects
}

// applyJoin appends the joining member unless the id is already present
// (duplicate-delivery safe). Joins for unknown lobbies are dropped; the
// authoritative count sync or a later LOBBY_UPDATED repairs the gap.
func (r *Reducer) applyJoin(s State, e Event) (State, []Effect) {
	member, _, ok := e.decodeMember()
	if !ok {
		return s, nil
	}

	i, found := s.find(e.LobbyCode)
	if !found {
		return s, nil
	}
	if s.Lobbies[i].HasMember(member.ID) {
		return s, nil
	}

	s.Lobbies = s.cloneLobbies()
	s.Lobbies[i].Members = append(s.Lobbies[i].Members, member)

	return s.normalized(), nil
}

// applyLeave removes a member by id from the lobby. Removing an absent
// member is a no-op. When notify is set and another user actually left,
// a transient notice is emitted for lobbies the local user participates in;
// when the local user left remotely (another device), MyLobby is cleared
// without the blocking terminal signal.
func (r *Reducer) applyLeave(s State, lobbyCode string, member Member, notify bool) (State, []Effect) {
	var effects []Effect

	i, found := s.find(lobbyCode)
	if !found {
		return s, nil
	}

	wasPresent := s.Lobbies[i].HasMember(member.ID)
	if wasPresent {
		s.Lobbies = s.cloneLobbies()
		s.Lobbies[i].Members = withoutMember(s.Lobbies[i].Members, member.ID)
	}

	if r.me.Is(member.ID) {
		if s.MyLobby != nil && s.MyLobby.LobbyCode == lobbyCode {
			s.MyLobby = nil
			effects = append(effects, ClearMyLobby{})
		}
	} else if notify && wasPresent && r.participates(s, lobbyCode) {
		name := member.Name
		if name == "" {
			name = member.ID
		}
		effects = append(effects, ShowUserNotice{Notice: TransientUserNotice{
			LobbyCode: lobbyCode,
			Name:      name,
			Reason:    ReasonLeft,
		}})
	}

	return s.normalized(), effects
}

// applyKick removes the kicked member. A kick of the local user surfaces the
// blocking DeletedLobbyInfo; a kick of another user surfaces a transient
// notice in lobbies the local user participates in.
func (r *Reducer) applyKick(s State, e Event) (State, []Effect) {
	member, _, ok := e.decodeMember()
	if !ok {
		return s, nil
	}

	var effects []Effect

	i, found := s.find(e.LobbyCode)
	wasPresent := found && s.Lobbies[i].HasMember(member.ID)
	participated := r.participates(s, e.LobbyCode)

	if wasPresent {
		s.Lobbies = s.cloneLobbies()
		s.Lobbies[i].Members = withoutMember(s.Lobbies[i].Members, member.ID)
	}

	if r.me.Is(member.ID) {
		if s.MyLobby != nil && s.MyLobby.LobbyCode == e.LobbyCode {
			s.MyLobby = nil
			effects = append(effects, ClearMyLobby{})
		}
		effects = append(effects, ShowDeletedLobby{Info: DeletedLobbyInfo{
			LobbyCode: e.LobbyCode,
			Reason:    ReasonKicked,
			IsKicked:  true,
		}})
	} else if wasPresent && participated {
		name := member.Name
		if name == "" {
			name = member.ID
		}
		effects = append(effects, ShowUserNotice{Notice: TransientUserNotice{
			LobbyCode: e.LobbyCode,
			Name:      name,
			Reason:    ReasonKicked,
		}})
	}

	return s.normalized(), effects
}

// applyCountSync replaces the member list wholesale. This is the
// higher-trust correction event: it always wins over the incremental
// join/leave history accumulated for the lobby.
func (r *Reducer) applyCountSync(s State, e Event) (State, []Effect) {
	members, ok := e.decodeMembers()
	if !ok {
		return s, nil
	}

	i, found := s.find(e.LobbyCode)
	if !found {
		return s, nil
	}

	s.Lobbies = s.cloneLobbies()
	replacement := make([]Member, len(members))
	copy(replacement, members)
	s.Lobbies[i].Members = replacement

	return s.normalized(), nil
}

// applyTerminal removes the lobby and its member index entirely. When the
// lobby was the local user's own, or the local user was a member and the
// removal came from a remote actor, the blocking DeletedLobbyInfo is emitted
// and the durable cache entry cleared in the same pass. Deleting an
// already-absent lobby is a no-op apart from MyLobby consistency.
func (r *Reducer) applyTerminal(s State, lobbyCode string, reason string, remote bool) (State, []Effect) {
	var effects []Effect

	wasMine := s.MyLobby != nil && s.MyLobby.LobbyCode == lobbyCode
	participated := r.participates(s, lobbyCode)

	if i, found := s.find(lobbyCode); found {
		lobbies := s.cloneLobbies()
		s.Lobbies = append(lobbies[:i], lobbies[i+1:]...)
	}

	if wasMine {
		s.MyLobby = nil
		effects = append(effects, ClearMyLobby{})
	}

	if remote && (wasMine || participated) {
		effects = append(effects, ShowDeletedLobby{Info: DeletedLobbyInfo{
			LobbyCode: lobbyCode,
			Reason:    reason,
		}})
	}

	return s.normalized(), effects
}

// applyUpdate merges the updated lobby metadata. Updates for unknown lobbies
// insert the lobby (tolerates an update echo outrunning its creation event).
// A payload without members keeps the converged member list.
func (r *Reducer) applyUpdate(s State, e Event) (State, []Effect) {
	updated, ok := e.decodeLobby()
	if !ok {
		return s, nil
	}

	i, found := s.find(updated.LobbyCode)
	if !found {
		return r.applyCreate(s, updated, "")
	}

	s.Lobbies = s.cloneLobbies()
	existing := s.Lobbies[i]

	if updated.Members == nil {
		updated.Members = existing.Members
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}
	if updated.LobbyType == "" {
		updated.LobbyType = existing.LobbyType
	}
	if updated.CreatedBy == "" {
		updated.CreatedBy = existing.CreatedBy
	}
	if updated.LobbyLink == "" {
		updated.LobbyLink = existing.LobbyLink
	}
	s.Lobbies[i] = updated

	return s.normalized(), nil
}

// applyEventStatus advances a scheduled event lobby through
// upcoming -> ongoing -> ended. Reaching ended is treated identically to
// deletion, but only when the local user is a member or the creator;
// otherwise it is a passive status update on a lobby being browsed.
func (r *Reducer) applyEventStatus(s State, e Event) (State, []Effect) {
	status, ok := e.decodeStatus()
	if !ok {
		return s, nil
	}

	i, found := s.find(e.LobbyCode)
	if !found {
		return s, nil
	}

	if status == StatusEnded {
		involved := r.participates(s, e.LobbyCode) ||
			r.me.Is(s.Lobbies[i].CreatedBy) ||
			(s.MyLobby != nil && s.MyLobby.LobbyCode == e.LobbyCode)
		if involved {
			return r.applyTerminal(s, e.LobbyCode, ReasonEventEnded, true)
		}
	}

	s.Lobbies = s.cloneLobbies()
	s.Lobbies[i].Status = status

	return s.normalized(), nil
}

// applyHostReturned reassigns the host flag so exactly one member holds it.
// A returning host who is not currently a member is inserted, tolerating a
// host-rejoin event arriving before the corresponding membership event.
func (r *Reducer) applyHostReturned(s State, e Event) (State, []Effect) {
	host, _, ok := e.decodeMember()
	if !ok {
		return s, nil
	}

	i, found := s.find(e.LobbyCode)
	if !found {
		return s, nil
	}

	s.Lobbies = s.cloneLobbies()
	target := &s.Lobbies[i]

	if !target.HasMember(host.ID) {
		host.IsHost = true
		target.Members = append(target.Members, host)
	}

	for m := range target.Members {
		target.Members[m].IsHost = target.Members[m].ID == host.ID
	}
	if target.Status == StatusHostLeft {
		target.Status = StatusActive
	}

	return s.normalized(), nil
}

// applyHostLeaveTimeout handles the host failing to return in time. For
// participants the lobby is unusable, so it is torn down like a deletion
// with a host-left reason; browsers of the lobby just see the status flip.
func (r *Reducer) applyHostLeaveTimeout(s State, e Event) (State, []Effect) {
	wasMine := s.MyLobby != nil && s.MyLobby.LobbyCode == e.LobbyCode
	if wasMine || r.participates(s, e.LobbyCode) {
		return r.applyTerminal(s, e.LobbyCode, ReasonHostLeft, true)
	}

	i, found := s.find(e.LobbyCode)
	if !found {
		return s, nil
	}

	s.Lobbies = s.cloneLobbies()
	s.Lobbies[i].Status = StatusHostLeft

	return s.normalized(), nil
}

// applyTurnChange emits a turn notice when the event names the local user.
// This pathway never touches lobby or membership state.
func (r *Reducer) applyTurnChange(s State, e Event) (State, []Effect) {
	member, message, ok := e.decodeMember()
	if !ok || !r.me.Is(member.ID) {
		return s, nil
	}

	if message == "" {
		message = "It's your turn!"
	}

	return s, []Effect{ShowTurnNotice{Notice: TurnNotice{
		LobbyCode: e.LobbyCode,
		Message:   message,
	}}}
}

// participates reports whether the local user is currently in the given
// lobby's member list.
func (r *Reducer) participates(s State, lobbyCode string) bool {
	i, found := s.find(lobbyCode)
	if !found {
		return false
	}
	return s.Lobbies[i].HasMember(r.me.ID)
}

/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the converged State value and its invariant maintenance.
The reducer treats State as immutable: every transition works on copies and
finishes by rebuilding the member index from the lobby list, so the two
structures cannot diverge (they are one logical value stored twice).
*/
package lobby

// State is the full converged client-side model of lobby existence and
// membership.
type State struct {
	// Lobbies is the list of all known lobbies, identity-keyed by LobbyCode.
	Lobbies []Lobby

	// MembersByLobby is the derived index lobbyCode -> members, rebuilt from
	// Lobbies after every transition.
	MembersByLobby map[string][]Member

	// MyLobby is the lobby the local user created, or nil. At most one per
	// authenticated user.
	MyLobby *Lobby
}

// NewState returns an empty converged state.
func NewState() State {
	return State{
		Lobbies:        []Lobby{},
		MembersByLobby: make(map[string][]Member),
	}
}

// find returns the index of the lobby with the given code.
func (s State) find(code string) (int, bool) {
	for i := range s.Lobbies {
		if s.Lobbies[i].LobbyCode == code {
			return i, true
		}
	}
	return 0, false
}

// cloneLobbies deep-copies the lobby list including member slices, so a
// transition never aliases the previous state's storage.
func (s State) cloneLobbies() []Lobby {
	lobbies := make([]Lobby, len(s.Lobbies))
	copy(lobbies, s.Lobbies)
	for i := range lobbies {
		members := make([]Member, len(lobbies[i].Members))
		copy(members, lobbies[i].Members)
		lobbies[i].Members = members
	}
	return lobbies
}

// normalized finishes a transition: it repairs the single-host invariant on
// every lobby, rebuilds the member index from the lobby list, and refreshes
// the MyLobby reference to the lobby's current value when it still exists.
func (s State) normalized() State {
	for i := range s.Lobbies {
		s.Lobbies[i].Members = repairHost(s.Lobbies[i])
	}

	index := make(map[string][]Member, len(s.Lobbies))
	for i := range s.Lobbies {
		index[s.Lobbies[i].LobbyCode] = s.Lobbies[i].Members
	}
	s.MembersByLobby = index

	if s.MyLobby != nil {
		if i, ok := s.find(s.MyLobby.LobbyCode); ok {
			refreshed := s.Lobbies[i]
			if refreshed.LobbyLink == "" {
				refreshed.LobbyLink = s.MyLobby.LobbyLink
			}
			s.MyLobby = &refreshed
		}
	}

	return s
}

// repairHost enforces "at most one host per lobby". When duplicate hosts
// slip in through drifted events, the creator wins, otherwise the first host
// in list order; zero hosts is a legal state (no host event seen yet).
func repairHost(l Lobby) []Member {
	hostCount := 0
	for _, m := range l.Members {
		if m.IsHost {
			hostCount++
		}
	}
	if hostCount <= 1 {
		return l.Members
	}

	keeper := -1
	for i, m := range l.Members {
		if m.IsHost && m.ID == l.CreatedBy {
			keeper = i
			break
		}
	}
	if keeper == -1 {
		for i, m := range l.Members {
			if m.IsHost {
				keeper = i
				break
			}
		}
	}

	for i := range l.Members {
		l.Members[i].IsHost = i == keeper
	}
	return l.Members
}

// withoutMember returns members minus the given user id; removing an absent
// member returns the slice unchanged.
func withoutMember(members []Member, userID string) []Member {
	for i, m := range members {
		if m.ID == userID {
			result := make([]Member, 0, len(members)-1)
			result = append(result, members[:i]...)
			result = append(result, members[i+1:]...)
			return result
		}
	}
	return members
}

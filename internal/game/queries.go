package game

import "slices"

// Read-only projections of State. These are what the query endpoints
// serve; none of them mutate anything.

func Names(s State) []string {
	names := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		names = append(names, p.Name)
	}
	return names
}

func Active(s State) bool {
	return s.Phase == PhaseInProgress
}

type RoleView struct {
	Role  string         `json:"role"`
	Knows []string       `json:"knows"`
	Table KnowledgeTable `json:"knowledgeTable"`
}

// RoleInfo recomputes the same reveal a player was pushed at game start,
// for clients that reconnect and ask again.
func RoleInfo(s State, name string) (RoleView, error) {
	if s.Phase != PhaseInProgress {
		return RoleView{}, ErrNotInProgress
	}
	i := indexOf(s.Players, name)
	if i < 0 {
		return RoleView{}, ErrNotJoined
	}
	p := s.Players[i]
	return RoleView{
		Role:  p.Role,
		Knows: knownNames(s.Players, s.Knowledge[p.Role]),
		Table: s.Knowledge,
	}, nil
}

type VoteView struct {
	Results []MissionResult `json:"voteResults"`
	Voters  []string        `json:"voters"`
	Round   int             `json:"round"`
}

// CurrentVote reports resolved history plus the active voter list, empty
// when no mission is open.
func CurrentVote(s State) VoteView {
	v := VoteView{
		Results: slices.Clone(s.History),
		Voters:  []string{},
		Round:   s.Round,
	}
	if s.Current != nil {
		v.Voters = slices.Clone(s.Current.Voters)
	}
	return v
}

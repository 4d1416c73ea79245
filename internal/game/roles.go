package game

import (
	"maps"
	"math/rand/v2"
	"slices"
)

// startGame validates the requested roles, deals them out, and moves the
// session to in-progress. Role secrecy rides on the shuffle being
// unbiased, so this goes through rand.Shuffle (Fisher-Yates) rather than
// any sort-by-random trick.
func startGame(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseLobby {
		return nil, s, ErrGameInProgress
	}
	if len(cmd.Roles) != len(s.Players) {
		return nil, s, ErrRoleCountMismatch
	}
	for _, role := range cmd.Roles {
		if _, ok := cmd.Table[role]; !ok {
			return nil, s, ErrUnknownRole
		}
	}

	dealt := shuffleRoles(cmd.Roles)
	players := slices.Clone(s.Players)
	for i := range players {
		players[i].Role = dealt[i]
	}

	ns := s
	ns.Phase = PhaseInProgress
	ns.Players = players
	ns.Knowledge = maps.Clone(cmd.Table)
	ns.Round = 0
	ns.Current = nil
	ns.History = []MissionResult{}

	events := make([]Event, 0, len(players))
	for _, p := range players {
		events = append(events, Event{
			Type:  EvtRoleRevealed,
			To:    p.Name,
			Name:  p.Name,
			Role:  p.Role,
			Knows: knownNames(players, ns.Knowledge[p.Role]),
		})
	}
	return events, ns, nil
}

// package var so tests can pin the permutation
var shuffleRoles = func(roles []string) []string {
	out := slices.Clone(roles)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// knownNames resolves the visible roles to player names. Assignment is a
// bijection, so each visible role matches at most one player.
func knownNames(players []Player, visible []string) []string {
	knows := []string{}
	for _, role := range visible {
		for _, p := range players {
			if p.Role == role {
				knows = append(knows, p.Name)
			}
		}
	}
	return knows
}

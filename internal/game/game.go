package game

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var ErrDuplicateName = errors.New("name already taken")
var ErrGameInProgress = errors.New("game already in progress")
var ErrNotJoined = errors.New("player not in the game")
var ErrNotInProgress = errors.New("game not in progress")
var ErrRoleCountMismatch = errors.New("role count does not match player count")
var ErrUnknownRole = errors.New("role missing from knowledge table")
var ErrVoteInProgress = errors.New("vote already in progress")
var ErrEmptyVoterList = errors.New("voter list is empty")
var ErrNotEligible = errors.New("not eligible to vote this round")
var ErrDuplicateBallot = errors.New("already voted this round")
var ErrInvalidVote = errors.New("good-aligned roles can only vote good")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseInProgress Phase = "in_progress"
)

// KnowledgeTable maps a role name to the role names it is allowed to
// identify. Roles that appear only as values are legal; every role
// requested at game start must exist as a key.
type KnowledgeTable map[string][]string

type Player struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Mission is a single voting round. It resolves the instant every voter
// has cast exactly one ballot; after that it only exists as a
// MissionResult in the history.
type Mission struct {
	Round         int
	Voters        []string
	Ballots       map[string]bool
	FailsRequired int
	Fails         int
}

type MissionResult struct {
	Voters        []string `json:"players"`
	FailsRequired int      `json:"failsRequired"`
	NumFails      int      `json:"numFails"`
}

// State is the whole session. Apply never mutates its input; shared
// slices and maps are cloned before any write, so an old State value
// stays valid after the new one replaces it.
type State struct {
	Phase      Phase
	Players    []Player // join order
	Knowledge  KnowledgeTable
	EvilMarker string
	Current    *Mission
	History    []MissionResult
	Round      int
}

// NewState returns an empty lobby. Roles whose name contains evilMarker
// belong to the antagonist faction and are the only ones allowed to
// cast a "bad" ballot; an empty marker disables the restriction.
func NewState(evilMarker string) State {
	return State{
		Phase:      PhaseLobby,
		Players:    []Player{},
		EvilMarker: evilMarker,
		History:    []MissionResult{},
	}
}

// Clone returns a deep copy of s; mutating the copy never aliases the
// original.
func (s State) Clone() State {
	out := s
	out.Players = slices.Clone(s.Players)
	out.Knowledge = maps.Clone(s.Knowledge)
	out.History = slices.Clone(s.History)
	if s.Current != nil {
		m := *s.Current
		m.Voters = slices.Clone(s.Current.Voters)
		m.Ballots = maps.Clone(s.Current.Ballots)
		out.Current = &m
	}
	return out
}

type CommandType string

const (
	CmdJoin      CommandType = "Join"
	CmdQuit      CommandType = "Quit"
	CmdStartGame CommandType = "StartGame"
	CmdEndGame   CommandType = "EndGame"
	CmdStartVote CommandType = "StartVote"
	CmdCastVote  CommandType = "CastVote"
)

type Command struct {
	Type          CommandType
	Name          string
	Vote          bool
	Table         KnowledgeTable
	Roles         []string
	Voters        []string
	FailsRequired int
}

type EventType string

const (
	EvtPlayerJoined EventType = "playerJoined"
	EvtPlayerQuit   EventType = "playerQuit"
	EvtRoleRevealed EventType = "role"
	EvtGameEnded    EventType = "gameEnded"
	EvtVoteStarted  EventType = "voteStarted"
	EvtBallotCast   EventType = "voted"
	EvtVoteEnded    EventType = "voteEnded"
)

// Event is a state-change notification. To selects a single recipient
// by player name; empty means broadcast to everyone.
type Event struct {
	Type          EventType
	To            string
	Name          string
	Role          string
	Knows         []string
	Voters        []string
	FailsRequired int
	Round         int
	NumFails      int
}

// Apply runs one command against s and returns the events to deliver,
// the next state, and an error. It is all-or-nothing: on error the
// returned state is s unchanged.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdJoin:
		if s.Phase != PhaseLobby {
			return nil, s, ErrGameInProgress
		}
		if indexOf(s.Players, cmd.Name) >= 0 {
			return nil, s, ErrDuplicateName
		}
		ns := s
		ns.Players = append(slices.Clone(s.Players), Player{Name: cmd.Name})
		return []Event{{Type: EvtPlayerJoined, Name: cmd.Name}}, ns, nil

	case CmdQuit:
		if s.Phase != PhaseLobby {
			return nil, s, ErrGameInProgress
		}
		i := indexOf(s.Players, cmd.Name)
		if i < 0 {
			return nil, s, ErrNotJoined
		}
		ns := s
		ns.Players = slices.Delete(slices.Clone(s.Players), i, i+1)
		return []Event{{Type: EvtPlayerQuit, Name: cmd.Name}}, ns, nil

	case CmdStartGame:
		return startGame(s, cmd)

	case CmdEndGame:
		return []Event{{Type: EvtGameEnded}}, NewState(s.EvilMarker), nil

	case CmdStartVote:
		if s.Current != nil {
			return nil, s, ErrVoteInProgress
		}
		if len(cmd.Voters) == 0 {
			return nil, s, ErrEmptyVoterList
		}
		ns := s
		ns.Round = s.Round + 1
		ns.Current = &Mission{
			Round:         ns.Round,
			Voters:        slices.Clone(cmd.Voters),
			Ballots:       map[string]bool{},
			FailsRequired: cmd.FailsRequired,
		}
		ev := Event{
			Type:          EvtVoteStarted,
			Voters:        slices.Clone(cmd.Voters),
			FailsRequired: cmd.FailsRequired,
			Round:         ns.Round,
		}
		return []Event{ev}, ns, nil

	case CmdCastVote:
		return castVote(s, cmd)

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func castVote(s State, cmd Command) ([]Event, State, error) {
	m := s.Current
	if m == nil || !slices.Contains(m.Voters, cmd.Name) {
		return nil, s, ErrNotEligible
	}
	if _, ok := m.Ballots[cmd.Name]; ok {
		return nil, s, ErrDuplicateBallot
	}
	if !cmd.Vote && !strings.Contains(roleOf(s.Players, cmd.Name), s.EvilMarker) {
		return nil, s, ErrInvalidVote
	}

	ns := s
	nm := *m
	nm.Ballots = maps.Clone(m.Ballots)
	nm.Ballots[cmd.Name] = cmd.Vote
	if !cmd.Vote {
		nm.Fails++
	}

	events := []Event{{Type: EvtBallotCast, Name: cmd.Name}}
	if len(nm.Ballots) == len(nm.Voters) {
		ns.History = append(slices.Clone(s.History), MissionResult{
			Voters:        nm.Voters,
			FailsRequired: nm.FailsRequired,
			NumFails:      nm.Fails,
		})
		ns.Current = nil
		events = append(events, Event{Type: EvtVoteEnded, Round: nm.Round, NumFails: nm.Fails})
	} else {
		ns.Current = &nm
	}
	return events, ns, nil
}

func indexOf(players []Player, name string) int {
	return slices.IndexFunc(players, func(p Player) bool { return p.Name == name })
}

func roleOf(players []Player, name string) string {
	if i := indexOf(players, name); i >= 0 {
		return players[i].Role
	}
	return ""
}

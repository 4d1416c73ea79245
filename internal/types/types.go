package types

import "github.com/jtaylor-dev/avalon-backend/internal/game"

// ServerMessage is the envelope pushed to websocket clients. Type is
// one of: "playerJoined" | "playerQuit" | "role" | "gameEnded" |
// "voteStarted" | "voted" | "voteEnded". Delivery is at-least-once;
// clients must tolerate duplicates.
type ServerMessage struct {
	Type          string   `json:"type"`
	Name          string   `json:"name,omitempty"`
	Role          string   `json:"role,omitempty"`
	Knows         []string `json:"knows,omitempty"`
	Voters        []string `json:"voters,omitempty"`
	FailsRequired int      `json:"failsRequired"`
	Round         int      `json:"round"`
	NumFails      int      `json:"numFails"`
}

func FromEvent(ev game.Event) ServerMessage {
	return ServerMessage{
		Type:          string(ev.Type),
		Name:          ev.Name,
		Role:          ev.Role,
		Knows:         ev.Knows,
		Voters:        ev.Voters,
		FailsRequired: ev.FailsRequired,
		Round:         ev.Round,
		NumFails:      ev.NumFails,
	}
}

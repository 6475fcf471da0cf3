package usecase

import (
	"github.com/rocketscienceinc/tictactoe-peer/internal/entity"
	"github.com/rocketscienceinc/tictactoe-peer/internal/tictactoe"
)

const (
	PhaseIdle      = "idle"
	PhaseLobby     = "lobby"
	PhasePlaying   = "playing"
	PhaseRoundOver = "round_over"
)

// Snapshot - read-only view of a peer, rendered by the UI.
type Snapshot struct {
	Phase     string            `json:"phase"`
	RoomID    string            `json:"room_id,omitempty"`
	Piece     string            `json:"piece,omitempty"`
	Initiator bool              `json:"is_initiator"`
	Board     entity.Board      `json:"board"`
	Turn      string            `json:"turn,omitempty"`
	MyTurn    bool              `json:"my_turn"`
	Scores    entity.Scoreboard `json:"scores"`
	Winner    string            `json:"winner,omitempty"`
	Title     string            `json:"title,omitempty"`
	Prompt    string            `json:"prompt,omitempty"`
	Alert     string            `json:"alert,omitempty"`
}

func (that *Peer) snapshot() Snapshot {
	snap := Snapshot{
		Phase: PhaseIdle,
		Alert: that.alert,
	}

	if that.session == nil {
		return snap
	}

	snap.RoomID = that.session.RoomID
	snap.Piece = that.session.Piece
	snap.Initiator = that.session.IsInitiator

	if !that.playing {
		snap.Phase = PhaseLobby
		return snap
	}

	round := that.state.Round

	snap.Phase = PhasePlaying
	snap.Board = round.Board
	snap.Turn = round.Turn
	snap.MyTurn = that.state.MyTurn()
	snap.Scores = that.state.Scores

	if that.state.Phase() == tictactoe.PhaseRoundOver {
		snap.Phase = PhaseRoundOver
		snap.Turn = ""
		snap.Winner = round.Winner
		snap.Title = tictactoe.RoundTitle(round.Winner)
		snap.Prompt = that.prompt
	}

	return snap
}

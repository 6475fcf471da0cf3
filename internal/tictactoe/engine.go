// Package tictactoe holds the round state machine of one peer. Transition is pure:
// it never publishes or blocks, it only returns the effects the caller has to carry out.
package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-peer/internal/entity"
)

const (
	PhaseAwaitingMove = "awaiting_move"
	PhaseRoundOver    = "round_over"

	PromptContinue = "continue"
	PromptWaiting  = "waiting"
)

// State - what one peer knows about the current round and the session score.
type State struct {
	Piece     string
	Initiator bool
	Round     entity.Round
	Scores    entity.Scoreboard
}

func NewState(piece string, initiator bool) State {
	return State{
		Piece:     piece,
		Initiator: initiator,
		Round:     entity.NewRound(),
	}
}

func (that State) Phase() string {
	if that.Round.Over {
		return PhaseRoundOver
	}
	return PhaseAwaitingMove
}

func (that State) MyTurn() bool {
	return that.Phase() == PhaseAwaitingMove && that.Round.Turn == that.Piece
}

type Event interface{ isEvent() }

// LocalMove - the local player clicked a cell.
type LocalMove struct{ Cell int }

// RemoteMove - a move message arrived on the game channel.
type RemoteMove struct{ Message entity.GameMessage }

// Continue - the initiator wants another round.
type Continue struct{}

// Decline - the initiator wants to stop playing.
type Decline struct{}

// ResetReceived - a reset message arrived on the game channel.
type ResetReceived struct{}

// EndReceived - an end message arrived on the game channel.
type EndReceived struct{}

func (LocalMove) isEvent()     {}
func (RemoteMove) isEvent()    {}
func (Continue) isEvent()      {}
func (Decline) isEvent()       {}
func (ResetReceived) isEvent() {}
func (EndReceived) isEvent()   {}

type Effect interface{ isEffect() }

// Publish - send the message on the game channel.
type Publish struct{ Message entity.GameMessage }

// RoundOver - the round finished; Winner is a mark or entity.PlayerTie.
type RoundOver struct {
	Winner string
	Prompt string
}

// EndSession - tear down the session.
type EndSession struct{}

func (Publish) isEffect()    {}
func (RoundOver) isEffect()  {}
func (EndSession) isEffect() {}

// Transition - applies event to state. A rejected event returns the unchanged state, no effects and the reason.
func Transition(state State, event Event) (State, []Effect, error) {
	switch ev := event.(type) {
	case LocalMove:
		return localMove(state, ev.Cell)
	case RemoteMove:
		return remoteMove(state, ev.Message)
	case Continue:
		return decide(state, entity.GameMessage{Reset: true})
	case Decline:
		return decide(state, entity.GameMessage{EndGame: true})
	case ResetReceived:
		state.Round = entity.NewRound()
		return state, nil, nil
	case EndReceived:
		return state, []Effect{EndSession{}}, nil
	default:
		return state, nil, fmt.Errorf("unsupported event %T", event)
	}
}

func localMove(state State, cell int) (State, []Effect, error) {
	next := state
	if err := next.Round.Place(state.Piece, cell); err != nil {
		return state, nil, fmt.Errorf("invalid turn: %w", err)
	}

	next = finishRound(next)

	effects := []Effect{
		Publish{Message: entity.NewMoveMessage(cell, state.Piece, next.Round.Turn)},
	}

	return next, append(effects, roundOverEffects(next)...), nil
}

func remoteMove(state State, msg entity.GameMessage) (State, []Effect, error) {
	// own echoes and messages for somebody else carry the other turn
	if msg.Turn != state.Piece || msg.Index == nil {
		return state, nil, nil
	}

	next := state
	if err := next.Round.Place(msg.Piece, *msg.Index); err != nil {
		return state, nil, fmt.Errorf("invalid remote turn: %w", err)
	}

	next = finishRound(next)

	return next, roundOverEffects(next), nil
}

func decide(state State, msg entity.GameMessage) (State, []Effect, error) {
	if !state.Initiator {
		return state, nil, apperror.ErrNotInitiator
	}

	if !state.Round.Over {
		return state, nil, apperror.ErrRoundOngoing
	}

	return state, []Effect{Publish{Message: msg}}, nil
}

// finishRound - records the winner on the scoreboard once the round is over.
func finishRound(state State) State {
	if state.Round.Over {
		state.Scores.Record(state.Round.Winner)
	}
	return state
}

func roundOverEffects(state State) []Effect {
	if !state.Round.Over {
		return nil
	}

	prompt := PromptWaiting
	if state.Initiator {
		prompt = PromptContinue
	}

	return []Effect{RoundOver{Winner: state.Round.Winner, Prompt: prompt}}
}

// RoundTitle - text shown to both players when the round is over.
func RoundTitle(winner string) string {
	if winner == entity.PlayerTie {
		return "Tie game!"
	}
	return fmt.Sprintf("Player %s won!", winner)
}

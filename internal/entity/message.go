package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
)

// LobbyMessage - the joiner's announcement, or the end of the session from a peer
// that leaves before both sides listen on the game channel.
type LobbyMessage struct {
	NotRoomCreator bool `json:"notRoomCreator,omitempty"`
	EndGame        bool `json:"endGame,omitempty"`
}

// GameMessage - everything relayed on the game channel: a move, a round reset or the end of the session.
type GameMessage struct {
	Index   *int   `json:"index,omitempty"`
	Piece   string `json:"piece,omitempty"`
	Turn    string `json:"turn,omitempty"`
	Reset   bool   `json:"reset,omitempty"`
	EndGame bool   `json:"endGame,omitempty"`
}

type GameMessageKind int

const (
	KindUnknown GameMessageKind = iota
	KindMove
	KindReset
	KindEndGame
)

func NewMoveMessage(cell int, piece, nextTurn string) GameMessage {
	return GameMessage{Index: &cell, Piece: piece, Turn: nextTurn}
}

func (that GameMessage) Kind() GameMessageKind {
	switch {
	case that.Index != nil && IsPiece(that.Piece) && IsPiece(that.Turn):
		return KindMove
	case that.Reset:
		return KindReset
	case that.EndGame:
		return KindEndGame
	default:
		return KindUnknown
	}
}

func DecodeGameMessage(payload []byte) (GameMessage, error) {
	var msg GameMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return GameMessage{}, fmt.Errorf("failed to unmarshal game message: %w", err)
	}

	if msg.Kind() == KindUnknown {
		return GameMessage{}, fmt.Errorf("%w: %s", apperror.ErrUnknownMessage, payload)
	}

	return msg, nil
}

func DecodeLobbyMessage(payload []byte) (LobbyMessage, error) {
	var msg LobbyMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return LobbyMessage{}, fmt.Errorf("failed to unmarshal lobby message: %w", err)
	}

	return msg, nil
}

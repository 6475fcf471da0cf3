package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-peer/internal/usecase"
)

const (
	actionRoomCreate    = "room:create"
	actionRoomJoin      = "room:join"
	actionGameTurn      = "game:turn"
	actionRoundContinue = "round:continue"
	actionRoundEnd      = "round:end"
	actionRoomLeave     = "room:leave"

	actionState       = "state"
	actionError       = "error"
	actionRoomCreated = "room:created"
	actionRoomJoined  = "room:joined"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload - body of every action except state, which carries a usecase.Snapshot.
type Payload struct {
	RoomID string `json:"room_id,omitempty"`
	Cell   *int   `json:"cell,omitempty"`
	Piece  string `json:"piece,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newMessage(action string, payload any) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: body}, nil
}

func stateMessage(snap usecase.Snapshot) (Message, error) {
	return newMessage(actionState, snap)
}

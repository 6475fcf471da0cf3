package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
)

func (that *Server) handleCreateRoom(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleCreateRoom")

	roomID, err := that.peer.CreateRoom(ctx)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendErrorResponse(conn, msg.Action, errorText(err))
	}

	return that.sendMessage(conn, actionRoomCreated, Payload{RoomID: roomID})
}

func (that *Server) handleJoinRoom(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleJoinRoom")

	var payloadReq Payload
	if err := unmarshalPayload(msg, &payloadReq); err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if payloadReq.RoomID == "" {
		log.Error("room_id is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "room_id is required")
	}

	piece, err := that.peer.JoinRoom(ctx, payloadReq.RoomID)
	if err != nil {
		log.Error("failed to join room", "roomID", payloadReq.RoomID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, errorText(err))
	}

	return that.sendMessage(conn, actionRoomJoined, Payload{RoomID: payloadReq.RoomID, Piece: piece})
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload
	if err := unmarshalPayload(msg, &payloadReq); err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if payloadReq.Cell == nil {
		log.Error("cell is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	if err := that.peer.Move(ctx, *payloadReq.Cell); err != nil {
		return that.sendErrorResponse(conn, msg.Action, errorText(err))
	}

	return nil
}

func (that *Server) handleRoundContinue(ctx context.Context, msg *Message, conn *connection) error {
	if err := that.peer.Continue(ctx); err != nil {
		return that.sendErrorResponse(conn, msg.Action, errorText(err))
	}

	return nil
}

func (that *Server) handleRoundEnd(ctx context.Context, msg *Message, conn *connection) error {
	if err := that.peer.Decline(ctx); err != nil {
		return that.sendErrorResponse(conn, msg.Action, errorText(err))
	}

	return nil
}

func (that *Server) handleRoomLeave(ctx context.Context, msg *Message, conn *connection) error {
	if err := that.peer.Leave(ctx); err != nil {
		return that.sendErrorResponse(conn, msg.Action, errorText(err))
	}

	return nil
}

func unmarshalPayload(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

// errorText - what the UI shows. Room full has a fixed wording, transport details stay in the log.
func errorText(err error) string {
	for _, known := range []error{
		apperror.ErrRoomFull,
		apperror.ErrInvalidRoomID,
		apperror.ErrSessionActive,
		apperror.ErrNoSession,
		apperror.ErrNotInitiator,
		apperror.ErrRoundOngoing,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "something went wrong, try again"
}

package apperror

import "errors"

var (
	ErrRoundOver      = errors.New("round is already over")
	ErrRoundOngoing   = errors.New("round is still going")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrRoomFull       = errors.New("game in progress. try another room")
	ErrInvalidRoomID  = errors.New("invalid room id")
	ErrSessionActive  = errors.New("session is already active")
	ErrNoSession      = errors.New("no active session")
	ErrNotInitiator   = errors.New("only the room creator can decide")
	ErrUnknownMessage = errors.New("unknown message")
)

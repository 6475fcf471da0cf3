package entity

// Session - lives from room creation/join until the game is ended by either peer.
type Session struct {
	RoomID       string
	LobbyChannel string
	GameChannel  string
	Piece        string
	IsInitiator  bool
}

func NewSession(roomID, lobbyPrefix, gamePrefix string, initiator bool) *Session {
	piece := PlayerO
	if initiator {
		piece = PlayerX
	}

	return &Session{
		RoomID:       roomID,
		LobbyChannel: lobbyPrefix + roomID,
		GameChannel:  gamePrefix + roomID,
		Piece:        piece,
		IsInitiator:  initiator,
	}
}

// Scoreboard - wins per mark, kept across rounds of one session.
type Scoreboard struct {
	X int `json:"x"`
	O int `json:"o"`
}

func (that *Scoreboard) Record(winner string) {
	switch winner {
	case PlayerX:
		that.X++
	case PlayerO:
		that.O++
	}
}

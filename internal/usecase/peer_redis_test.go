package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-peer/internal/entity"
	"github.com/rocketscienceinc/tictactoe-peer/testing/suite"
)

func TestPeer_OverRedis(t *testing.T) {
	ctx, st := suite.New(t)

	// Given: two peers, each with its own connection to the messaging service
	peerA, peerB := pairOn(t, st.Broker, st.NewBroker())

	// When: a third peer tries the same room
	peerC := startPeer(t, st.NewBroker(), "ccccc")
	_, err := peerC.JoinRoom(ctx, "abcde")

	// Then: occupancy from the service rejects it
	require.ErrorIs(t, err, apperror.ErrRoomFull)

	// When: X and O play one move each
	play(t, peerA, peerB, 4)
	play(t, peerB, peerA, 0)

	// Then: both boards agree and it's X's turn
	expected := entity.Board{entity.PlayerO, "", "", "", entity.PlayerX, "", "", "", ""}
	waitUntil(t, peerA, func(s Snapshot) bool { return s.MyTurn }, "turn did not come back to X")
	assert.Equal(t, expected, snapshotOf(t, peerA).Board)
	assert.Equal(t, expected, snapshotOf(t, peerB).Board)

	// When: the initiator leaves
	require.NoError(t, peerA.Leave(ctx))

	// Then: the other peer ends its session as well
	waitUntil(t, peerB, func(s Snapshot) bool { return s.Phase == PhaseIdle }, "joiner kept the session")
}

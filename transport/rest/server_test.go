package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-peer/internal/pubsub"
	"github.com/rocketscienceinc/tictactoe-peer/internal/usecase"
)

func newTestRouter(t *testing.T) (*gin.Engine, *usecase.Peer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	peer := usecase.NewPeer(logger, pubsub.NewMemoryBroker(), usecase.WithRoomIDGenerator(func() string { return "abcde" }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = peer.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return NewRouter(logger, peer, nil), peer
}

func TestRouter_Ping(t *testing.T) {
	// Given: a router
	router, _ := newTestRouter(t)

	// When: /ping is requested
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// Then: pong
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouter_State(t *testing.T) {
	t.Run("Idle peer", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var snap usecase.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, usecase.PhaseIdle, snap.Phase)
	})

	t.Run("Peer waiting in the lobby", func(t *testing.T) {
		// Given: a peer that created a room
		router, peer := newTestRouter(t)
		_, err := peer.CreateRoom(context.Background())
		require.NoError(t, err)

		// When: the state is requested
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

		// Then: the lobby snapshot is returned
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"phase": "lobby",
			"room_id": "abcde",
			"piece": "X",
			"is_initiator": true,
			"board": ["", "", "", "", "", "", "", "", ""],
			"my_turn": false,
			"scores": {"x": 0, "o": 0}
		}`, rec.Body.String())
	})

	t.Run("Stopped peer", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		peer := usecase.NewPeer(logger, pubsub.NewMemoryBroker())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, peer.Run(ctx))

		rec := httptest.NewRecorder()
		NewRouter(logger, peer, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_NoSocketWithoutHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

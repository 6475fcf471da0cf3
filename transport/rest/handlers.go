package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-peer/internal/usecase"
)

type statePeer interface {
	Snapshot(ctx context.Context) (usecase.Snapshot, error)
}

type handlers struct {
	logger *slog.Logger
	peer   statePeer
}

// stateHandler - current snapshot of the local peer, for UIs that poll instead of holding a socket.
func (that *handlers) stateHandler(ctx *gin.Context) {
	snap, err := that.peer.Snapshot(ctx.Request.Context())
	if err != nil {
		that.logger.Error("failed to get snapshot", "method", "stateHandler", "error", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "peer is not running"})
		return
	}

	ctx.JSON(http.StatusOK, snap)
}

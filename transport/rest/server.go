package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - /ping, /api/state and, when ws is not nil, the UI socket at /ws.
func NewRouter(logger *slog.Logger, peer statePeer, ws gin.HandlerFunc) *gin.Engine {
	logger = logger.With("component", "rest")

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	h := &handlers{logger: logger, peer: peer}

	router.GET("/ping", pingHandler)

	api := router.Group("/api")
	api.GET("/state", h.stateHandler)

	if ws != nil {
		router.GET("/ws", ws)
	}

	return router
}

// Start - serves handler on port until ctx is done, then shuts down gracefully.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		logger.Debug("request served",
			"httpMethod", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

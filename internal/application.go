package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-peer/internal/config"
	"github.com/rocketscienceinc/tictactoe-peer/internal/repository/storage"
	redisbroker "github.com/rocketscienceinc/tictactoe-peer/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-peer/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-peer/transport/rest"
	"github.com/rocketscienceinc/tictactoe-peer/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	redisClient, err := storage.NewRedis(ctx, conf.Redis)
	if err != nil {
		return fmt.Errorf("could not connect to redis: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis client", "error", err)
		}
	}()

	broker := redisbroker.New(logger, redisClient)
	peer := usecase.NewPeer(logger, broker,
		usecase.WithChannelPrefixes(conf.Channels.LobbyPrefix, conf.Channels.GamePrefix),
	)

	wsServer := websocket.New(logger, peer)
	router := rest.NewRouter(logger, peer, wsServer.Handle)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	// run peer
	wg.Add(1)
	go func() {
		defer wg.Done()
		if peerErr := peer.Run(ctx); peerErr != nil {
			errCh <- fmt.Errorf("peer error: %w", peerErr)
		}
	}()

	// run HTTP server, the UI socket included
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", httpErr)
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		log.Error("component failed, shutting down", "error", runErr)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	cancel()
	wg.Wait()

	if errors.Is(runErr, context.Canceled) {
		return nil
	}

	return runErr
}

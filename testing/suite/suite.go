package suite

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-peer/internal/config"
	"github.com/rocketscienceinc/tictactoe-peer/internal/repository/storage"
	redisbroker "github.com/rocketscienceinc/tictactoe-peer/internal/transport/redis"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite - a throwaway Redis container and a broker on top of it.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Conf   config.Redis
	Redis  *redis.Client
	Broker *redisbroker.Client
}

// NewBroker - a second connection to the same container, as another peer would have.
func (that *Suite) NewBroker() *redisbroker.Client {
	client, err := storage.NewRedis(context.Background(), that.Conf)
	if err != nil {
		that.Fatalf("could not open another connection: %v", err)
	}

	that.Cleanup(func() {
		_ = client.Close()
	})

	return redisbroker.New(that.Logger, client)
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
		Env:        []string{},
	}, func(hostConfig *docker.HostConfig) {
		hostConfig.AutoRemove = true
		hostConfig.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	_ = resource.Expire(expireDuration)

	host, port, err := net.SplitHostPort(resource.GetHostPort(redisPort))
	if err != nil {
		t.Fatalf("unexpected container address: %v", err)
	}

	conf := config.Redis{Host: host, Port: port}

	// the server in the container may need a moment before it accepts connections
	pool.MaxWait = maxWaitDuration

	var redisClient *redis.Client
	if err = pool.Retry(func() error {
		var connErr error
		redisClient, connErr = storage.NewRedis(ctx, conf)
		return connErr
	}); err != nil {
		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}

		t.Fatalf("could not connect to redis: %v", err)
	}

	if err = redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()

		_ = redisClient.Close()

		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}
	})

	return ctx, &Suite{
		T:      t,
		Logger: logger,
		Conf:   conf,
		Redis:  redisClient,
		Broker: redisbroker.New(logger, redisClient),
	}
}

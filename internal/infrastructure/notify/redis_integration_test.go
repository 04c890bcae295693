//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/notify"
	"github.com/jhoicas/conteo-inventario/pkg/config"
)

func TestRedisNotifier_PublicaEnElCanal(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	cfg := config.RedisConfig{Addr: addr, Channel: "conteos:test"}
	sub := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = sub.Close() })
	ps := sub.Subscribe(ctx, cfg.Channel)
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	n, err := notify.NewRedisNotifier(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })

	require.NoError(t, n.Notify(ctx, transicion()))

	select {
	case msg := <-ps.Channel():
		var got conteo.Transition
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "s-1", got.SessionID)
		assert.Equal(t, transicion().To, got.To)
	case <-time.After(5 * time.Second):
		t.Fatal("no llegó la transición")
	}
}

func TestRedisNotifier_SinServidor(t *testing.T) {
	_, err := notify.NewRedisNotifier(config.RedisConfig{Addr: "127.0.0.1:1", Channel: "x"}, nil)
	assert.Error(t, err)
}

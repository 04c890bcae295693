package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/pkg/config"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

var _ conteo.Notifier = (*RedisNotifier)(nil)

const (
	pingTimeout    = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// RedisNotifier publica cada transición como JSON en un canal Pub/Sub de Redis.
type RedisNotifier struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	log        *logger.Logger
}

// NewRedisNotifier crea el cliente y verifica la conexión.
func NewRedisNotifier(cfg config.RedisConfig, log *logger.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis %s: %w", cfg.Addr, err)
	}

	n := NewRedisNotifierWithClient(client, cfg.Channel, log)
	n.ownsClient = true
	return n, nil
}

// NewRedisNotifierWithClient usa un cliente existente; el llamador conserva su propiedad.
func NewRedisNotifierWithClient(client *redis.Client, channel string, log *logger.Logger) *RedisNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisNotifier{client: client, channel: channel, log: log.Component("notify.redis")}
}

func (n *RedisNotifier) Notify(ctx context.Context, t conteo.Transition) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("serializar transición: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("publicar en %s: %w", n.channel, err)
	}
	n.log.Debug().Str("channel", n.channel).Str("session_id", t.SessionID).Str("to", string(t.To)).Msg("transición publicada")
	return nil
}

// Close cierra el cliente solo si lo creó NewRedisNotifier.
func (n *RedisNotifier) Close() error {
	if !n.ownsClient {
		return nil
	}
	return n.client.Close()
}

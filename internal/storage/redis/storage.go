package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a new Redis storage instance
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redis-storage")),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, sender string) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(sender)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return decodePlayer(data, s.warnPayload)
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, bool, error) {
	data, err := encodePlayer(player)
	if err != nil {
		return nil, false, err
	}

	key := playerKey(player.Sender)
	created, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, false, err
	}

	// SADD is idempotent, so the index is repaired even for existing players
	if err := s.client.SAdd(ctx, playersIndexKey(), key).Err(); err != nil {
		return nil, false, err
	}

	if created {
		return player.Clone(), true, nil
	}
	existing, err := s.GetPlayer(ctx, player.Sender)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, sender string, fn storage.MutateFunc) (*model.Player, error) {
	key := playerKey(sender)

	var updated *model.Player
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		player, err := decodePlayer(data, s.warnPayload)
		if err != nil {
			return err
		}
		if err := fn(player); err != nil {
			return err
		}
		player.Sender = sender

		out, err := encodePlayer(player)
		if err != nil {
			return err
		}

		// Commits only if the key was not modified since WATCH
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = player
		return nil
	}

	for range s.cfg.MaxTxRetries {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	s.logger.Warn("player update gave up after retries",
		slog.String("sender", sender),
		slog.Int("retries", s.cfg.MaxTxRetries))
	return nil, model.ErrConflict
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	keys, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Key missing
		}
		player, err := decodePlayer([]byte(raw), s.warnPayload)
		if err != nil {
			s.logger.Warn("skipping unreadable player record",
				slog.String("key", keys[i]),
				slog.String("error", err.Error()))
			continue
		}
		players = append(players, player)
	}

	return players, nil
}

// Log operations

func (s *Storage) AppendLog(ctx context.Context, entry *model.LogEntry) error {
	rec := logRecord{
		ID:        entry.ID,
		Sender:    entry.Sender,
		Event:     string(entry.Event),
		CreatedAt: entry.CreatedAt.UnixMilli(),
	}
	if len(entry.Payload) > 0 {
		rec.Payload = json.RawMessage(entry.Payload)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, logsKey(), data)
	if s.cfg.LogMaxLen > 0 {
		pipe.LTrim(ctx, logsKey(), -s.cfg.LogMaxLen, -1)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) warnPayload(sender string, err error) {
	s.logger.Warn("malformed player payload, using empty payload",
		slog.String("sender", sender),
		slog.String("error", err.Error()))
}

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"

	"nestmind/apps/gateway/internal/domain"
)

const DefaultStream = "nestmind:events"

// RedisSink appends events to a Redis stream, one entry per event.
type RedisSink struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

func NewRedisSink(ctx context.Context, redisURL, stream string) (*RedisSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisSinkWithClient(rdb, stream), nil
}

func NewRedisSinkWithClient(rdb *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{rdb: rdb, stream: stream, maxLen: 10000}
}

func (s *RedisSink) Track(ctx context.Context, evt domain.Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		log.WithError(err).Warn("failed to encode telemetry event")
		return
	}
	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"name":  evt.Name,
			"event": string(body),
		},
	}).Err(); err != nil {
		log.WithError(err).WithField("stream", s.stream).Warn("failed to publish telemetry event")
	}
}

func (s *RedisSink) Close() error {
	return s.rdb.Close()
}

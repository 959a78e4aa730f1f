package publisher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventsStream carries one entry per committed scoring write or clock tick
const EventsStream = "faceoff.events"

// Kinds of change announced on EventsStream besides event kinds
const (
	KindClock  = "clock"
	KindImport = "import"
)

// Notice announces that a game's derived views changed
type Notice struct {
	GameID    string
	Kind      string
	PlayID    string
	Timestamp time.Time
}

// Values renders n as stream entry fields
func (n Notice) Values() map[string]interface{} {
	return map[string]interface{}{
		"game_id":   n.GameID,
		"kind":      n.Kind,
		"play_id":   n.PlayID,
		"timestamp": n.Timestamp.Unix(),
	}
}

// ParseNotice reads a stream entry written by Values
func ParseNotice(values map[string]interface{}) (Notice, error) {
	var n Notice

	gameID, ok := values["game_id"].(string)
	if !ok || gameID == "" {
		return n, fmt.Errorf("stream entry missing game_id")
	}
	n.GameID = gameID
	n.Kind, _ = values["kind"].(string)
	n.PlayID, _ = values["play_id"].(string)

	if ts, ok := values["timestamp"].(string); ok {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return n, fmt.Errorf("stream entry timestamp %q: %w", ts, err)
		}
		n.Timestamp = time.Unix(sec, 0)
	}

	return n, nil
}

// RedisPublisher appends notices to the events stream
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStreamPublisher(client), nil
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		maxLen: 10000,
	}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// Publish appends n to the events stream
func (rp *RedisPublisher) Publish(ctx context.Context, n Notice) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	err := rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: EventsStream,
		MaxLen: rp.maxLen,
		Approx: true,
		Values: n.Values(),
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing %s notice for %s: %w", n.Kind, n.GameID, err)
	}
	return nil
}

// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the journal pushes records onto.
const DefaultQueueName = "themcards_events"

// Record is one journaled room event, consumed by out-of-process tooling.
// The journal is an append-only audit stream; it never feeds state back into
// the server.
type Record struct {
	RoomID    string                 `json:"room_id"`
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Journal publishes room events to a Redis queue. A nil *Journal is valid
// and silently discards everything, so callers never branch on whether
// journaling is configured.
type Journal struct {
	client *redis.Client
	queue  string
	logger *logrus.Logger
}

// Connect dials Redis and verifies the connection. queue falls back to
// DefaultQueueName when empty.
func Connect(addr, queue string, logger *logrus.Logger) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Journal{client: client, queue: queue, logger: logger}, nil
}

// Publish serializes the record and pushes it onto the queue.
func (j *Journal) Publish(ctx context.Context, record Record) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}
	if err := j.client.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push onto journal queue %q: %w", j.queue, err)
	}
	return nil
}

// Record publishes asynchronously, after the caller's state mutation has
// already committed; failures are logged and never affect gameplay.
func (j *Journal) Record(roomID, event string, payload map[string]interface{}) {
	if j == nil {
		return
	}
	record := Record{
		RoomID:    roomID,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := j.Publish(ctx, record); err != nil {
			j.logger.Warnf("journal: dropped %s record for room %s: %v", event, roomID, err)
		}
	}()
}

// Close releases the Redis connection.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.client.Close()
}

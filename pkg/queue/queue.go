package queue

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryQueue hands notification IDs to an external delivery worker.
// Enqueue is fire-and-forget from the engine's point of view: the
// caller logs and drops any error instead of failing the triggering
// write.
type DeliveryQueue interface {
	Enqueue(ctx context.Context, notificationID uint64) error
}

const notificationKey = "notifications:pending"

type redisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a DeliveryQueue backed by a Redis list
func NewRedisQueue(client *redis.Client) DeliveryQueue {
	return &redisQueue{client: client}
}

func (q *redisQueue) Enqueue(ctx context.Context, notificationID uint64) error {
	return q.client.LPush(ctx, notificationKey, strconv.FormatUint(notificationID, 10)).Err()
}

// Dequeue pops the oldest pending notification ID, blocking up to
// timeout. Exposed for the delivery worker side of the queue.
func Dequeue(ctx context.Context, client *redis.Client, timeout time.Duration) (uint64, error) {
	res, err := client.BRPop(ctx, timeout, notificationKey).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(res[1], 10, 64)
}

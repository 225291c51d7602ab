// Package notifications delivers notification events to connected clients.
// Redis pub/sub fans events out across instances; each instance forwards to
// its local WebSocket hub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"atelier/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// UserChannel names the pub/sub channel carrying one user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// Notifier publishes notification events through Redis. A nil Redis client
// turns publishing into a no-op, which keeps tests and cache-less deploys
// working.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload any) {
	if n.rdb == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal notification payload",
			"user_id", userID, "error", err)
		return
	}
	if err := n.rdb.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"user_id", userID, "error", err)
	}
}

// StartPatternSubscriber forwards events for every user channel to the hub.
// It blocks until ctx is cancelled, so run it in its own goroutine.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, hub *Hub) {
	if n.rdb == nil {
		return
	}
	pubsub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			idStr := strings.TrimPrefix(msg.Channel, userChannelPrefix)
			userID, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil {
				middleware.Logger.Warn("unparseable notification channel", "channel", msg.Channel)
				continue
			}
			hub.SendToUser(uint(userID), []byte(msg.Payload))
		}
	}
}

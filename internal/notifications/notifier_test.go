package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserChannelFormat(t *testing.T) {
	assert.Equal(t, "notifications:user:42", UserChannel(42))
}

func TestPublishUserWithoutRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	n.PublishUser(context.Background(), 1, map[string]string{"type": "follow"})
}

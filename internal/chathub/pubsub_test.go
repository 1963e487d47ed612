package chathub_test

import (
	"cinesocial/backend/internal/chathub"
	"cinesocial/backend/internal/models"
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRelay_DeliversAfterStart(t *testing.T) {
	relay := chathub.NewLocalRelay()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Error(t, relay.Publish(ctx, models.ChatMessage{ID: 1}), "publish before start")

	var got []uint
	require.NoError(t, relay.Start(ctx, func(m models.ChatMessage) { got = append(got, m.ID) }))
	require.NoError(t, relay.Publish(ctx, models.ChatMessage{ID: 2}))
	assert.Equal(t, []uint{2}, got)
}

func TestHub_FallsBackToLocalDeliveryWhenRelayFails(t *testing.T) {
	// Not started: every publish fails and the hub must deliver in-process.
	hub := chathub.NewManagerService(newMemStore())
	receiver := newMockClient(2)
	hub.Connect(receiver)

	_, err := hub.SendMessage(context.Background(), 1, 2, "still here")
	require.NoError(t, err)

	assert.Len(t, framesOf(receiver.DrainMessages(), models.EventReceiveMessage), 1)
}

// TestRedisRelay_TwoInstances needs a Redis at CINESOCIAL_TEST_REDIS.
func TestRedisRelay_TwoInstances(t *testing.T) {
	addr := os.Getenv("CINESOCIAL_TEST_REDIS")
	if addr == "" {
		t.Skip("CINESOCIAL_TEST_REDIS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	store := newMemStore()
	origin := chathub.NewManagerService(store, chathub.WithRelay(chathub.NewRedisRelay(rdb)))
	remote := chathub.NewManagerService(store, chathub.WithRelay(chathub.NewRedisRelay(rdb)))
	require.NoError(t, origin.Start(t.Context()))
	require.NoError(t, remote.Start(t.Context()))

	receiver := newMockClient(2)
	remote.Connect(receiver)

	_, err := origin.SendMessage(context.Background(), 1, 2, "across instances")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(receiver.send) > 0
	}, 2*time.Second, 20*time.Millisecond)
	frames := framesOf(receiver.DrainMessages(), models.EventReceiveMessage)
	require.Len(t, frames, 1)
	assert.Equal(t, "across instances", frames[0].Data.(models.ChatMessage).Text)
}

package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.ConnectionCount())
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.ConnectionCount())
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientB)
	assert.Equal(t, 0, hub.ConnectionCount())
	assert.False(t, hub.IsOnline(10))

	// Unregistering twice must not corrupt the count.
	hub.UnregisterClient(clientB)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	// Another user is unaffected.
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	mine, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "hello")

	select {
	case msg := <-mine.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("target user received nothing")
	}

	select {
	case <-other.Send:
		t.Fatal("broadcast leaked to another user")
	default:
	}
}

func TestHub_BroadcastAllIncludesAnonymous(t *testing.T) {
	hub := NewHub()

	user, err := hub.Register(1, nil)
	require.NoError(t, err)
	anon, err := hub.Register(0, nil)
	require.NoError(t, err)

	hub.BroadcastAll("new post")

	for _, c := range []*Client{user, anon} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "new post", string(msg))
		default:
			t.Fatal("client missed the broadcast")
		}
	}
}

func TestHub_StartWiringForwardsFeedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	watcher, err := hub.Register(0, nil)
	require.NoError(t, err)
	target, err := hub.Register(9, nil)
	require.NoError(t, err)

	// Subscriptions are established asynchronously.
	assert.Eventually(t, func() bool {
		require.NoError(t, notifier.PublishFeedEvent(context.Background(), "feed payload"))
		select {
		case msg := <-watcher.Send:
			return string(msg) == "feed payload"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		require.NoError(t, notifier.PublishUser(context.Background(), 9, "just for you"))
		select {
		case msg := <-target.Send:
			return string(msg) == "just for you"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

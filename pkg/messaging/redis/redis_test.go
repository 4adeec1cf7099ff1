package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) *RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)

	broker, err := NewRedisBroker("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { broker.Close() })
	return broker.(*RedisBroker)
}

func TestNewRedisBrokerBadURL(t *testing.T) {
	_, err := NewRedisBroker("not a url")
	assert.Error(t, err)
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	broker := newTestBroker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := broker.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	type event struct {
		Title string `json:"title"`
	}
	require.NoError(t, broker.Publish(ctx, "notifications", event{Title: "new advice request"}))

	select {
	case raw := <-msgs:
		var got event
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "new advice request", got.Title)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	broker := newTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := broker.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-msgs:
		assert.False(t, open, "channel should close after cancel")
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after context cancel")
	}
}

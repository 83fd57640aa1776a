//go:build integration

package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/testutil/containers"
)

func TestRedisBusRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := Dial(ctx, rc.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	bus := NewRedisBus(client, zaptest.NewLogger(t))

	ch, cancel, err := bus.Subscribe(ctx, "u-1")
	require.NoError(t, err)
	defer cancel()

	other, cancelOther, err := bus.Subscribe(ctx, "u-2")
	require.NoError(t, err)
	defer cancelOther()

	require.NoError(t, bus.Publish(ctx, models.Notification{
		ID:              "n-1",
		RecipientUserID: "u-1",
		Title:           "Approval Queue",
		Message:         QueueMessage(2),
	}))

	select {
	case n := <-ch:
		assert.Equal(t, "n-1", n.ID)
		assert.Equal(t, QueueMessage(2), n.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}

	select {
	case n := <-other:
		t.Fatalf("unexpected delivery %+v", n)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRedisBusCancelClosesChannel(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	bus := NewRedisBus(rc.Client, zaptest.NewLogger(t))

	ch, cancel, err := bus.Subscribe(context.Background(), "u-1")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestDialRejectsBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "not a url")
	assert.Error(t, err)
}

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/danielolaviobr/ubio/internal/config"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEmbeddedNATS(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{Port: -1})
	require.NoError(t, err)

	go ns.Start()
	require.True(t, ns.ReadyForConnections(10*time.Second))
	t.Cleanup(ns.Shutdown)

	return ns
}

func TestNATSPublisher_Publish(t *testing.T) {
	ns := startEmbeddedNATS(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe("heartbeat.*", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := NewNATSPublisher(&config.NATSConfig{
		URL:           ns.ClientURL(),
		Name:          "ubio-test",
		SubjectPrefix: "heartbeat",
		MaxReconnects: 1,
		ReconnectWait: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	defer pub.Close()

	at := time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Publish(context.Background(), &Event{
		Type:   EventRefreshed,
		Group:  "g1",
		ID:     "a",
		Status: "ACTIVE",
		At:     at,
	}))
	require.NoError(t, pub.conn.Flush())

	select {
	case msg := <-msgs:
		assert.Equal(t, "heartbeat.refreshed", msg.Subject)

		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, EventRefreshed, got.Type)
		assert.Equal(t, "g1", got.Group)
		assert.Equal(t, "a", got.ID)
		assert.True(t, at.Equal(got.At))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNATSPublisher_CanceledContext(t *testing.T) {
	ns := startEmbeddedNATS(t)

	conn, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	pub := NewNATSPublisherWithConn(conn, "")
	defer pub.Close()

	assert.Equal(t, "heartbeat.swept", pub.Subject(EventSwept))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, &Event{Type: EventSwept}), context.Canceled)
	assert.NoError(t, pub.Publish(context.Background(), nil))
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher(&config.NATSConfig{URL: "nats://127.0.0.1:1", Name: "ubio-test"})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), &Event{Type: EventDeleted}))
	p.Close()
}

package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/wapi/internal/notify"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		event  wapi.ChangeEvent
		want   string
	}{
		{
			name:   "record type",
			prefix: "wapi.changes",
			event:  wapi.ChangeEvent{Type: "record:host", Action: wapi.ActionUpdated},
			want:   "wapi.changes.record_host.updated",
		},
		{
			name:  "default prefix",
			event: wapi.ChangeEvent{Type: "network", Action: wapi.ActionCreated},
			want:  "wapi.changes.network.created",
		},
		{
			name:   "wildcards stripped",
			prefix: "grid",
			event:  wapi.ChangeEvent{Type: "a.b*>", Action: wapi.ActionDeleted},
			want:   "grid.a_b__.deleted",
		},
		{
			name:   "empty type",
			prefix: "grid",
			event:  wapi.ChangeEvent{Action: wapi.ActionDeleted},
			want:   "grid.unknown.deleted",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, notify.Subject(tt.prefix, tt.event))
		})
	}
}

func TestPayload(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := wapi.ChangeEvent{
		Action: wapi.ActionDeleted,
		Type:   "record:host",
		Ref:    "record:host/ZG5z:app1.example.com/default",
		Time:   when,
	}

	data, err := notify.Payload(event)
	require.NoError(t, err)

	var decoded map[string]interface{}

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "deleted", decoded["action"])
	assert.Equal(t, "record:host", decoded["type"])
	assert.Equal(t, event.Ref, decoded["ref"])
	assert.Equal(t, "2024-05-01T12:00:00Z", decoded["time"])
}

func TestNewPublisher_Errors(t *testing.T) {
	t.Parallel()

	_, err := notify.NewPublisher(nil, "")
	require.ErrorIs(t, err, notify.ErrNilConn)

	_, err = notify.Connect("", "")
	require.ErrorIs(t, err, notify.ErrURLRequired)
}

type message struct {
	subject string
	data    []byte
}

type recordingConn struct {
	mu         sync.Mutex
	messages   []message
	publishErr error
	drained    bool
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publishErr != nil {
		return c.publishErr
	}

	c.messages = append(c.messages, message{subject: subject, data: data})

	return nil
}

func (c *recordingConn) Drain() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drained = true

	return nil
}

func TestPublisher_ObjectChanged(t *testing.T) {
	t.Parallel()

	conn := &recordingConn{}

	publisher, err := notify.NewPublisher(conn, "grid.events")
	require.NoError(t, err)

	event := wapi.ChangeEvent{
		Action: wapi.ActionCreated,
		Type:   "record:host",
		Ref:    "record:host/ZG5z:db1.example.com/default",
	}

	require.NoError(t, publisher.ObjectChanged(context.Background(), event))
	require.Len(t, conn.messages, 1)
	assert.Equal(t, "grid.events.record_host.created", conn.messages[0].subject)

	var decoded map[string]interface{}

	require.NoError(t, json.Unmarshal(conn.messages[0].data, &decoded))
	assert.Equal(t, "created", decoded["action"])
	assert.Equal(t, event.Ref, decoded["ref"])

	// A borrowed connection stays open.
	require.NoError(t, publisher.Close())
	assert.False(t, conn.drained)
}

func TestPublisher_ObjectChangedErrors(t *testing.T) {
	t.Parallel()

	event := wapi.ChangeEvent{Action: wapi.ActionDeleted, Type: "network"}

	conn := &recordingConn{publishErr: errors.New("nats: connection closed")}
	publisher, err := notify.NewPublisher(conn, "")
	require.NoError(t, err)

	err = publisher.ObjectChanged(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing to wapi.changes.network.deleted")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	quiet := &recordingConn{}
	publisher, err = notify.NewPublisher(quiet, "")
	require.NoError(t, err)

	require.ErrorIs(t, publisher.ObjectChanged(ctx, event), context.Canceled)
	assert.Empty(t, quiet.messages)
}

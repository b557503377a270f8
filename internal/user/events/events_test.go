package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgarchitects/internal/user"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestEventMarshal(t *testing.T) {
	u := &user.User{ID: 3, FirstName: "Ann", LastName: "Lee", Email: "a@x.com", IsManager: true}
	e := New(TypeUpdated, u.ID, u)

	data, err := e.Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "users.updated", decoded["type"])
	assert.EqualValues(t, 3, decoded["userId"])
	assert.Equal(t, e.ID.String(), decoded["id"])
	assert.Equal(t, true, decoded["user"].(map[string]any)["isManager"])
}

func TestDeletedEventOmitsUser(t *testing.T) {
	data, err := New(TypeDeleted, 9, nil).Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"user"`)
}

func TestKafkaPublisherKeysByUserID(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	e := New(TypeCreated, 12, &user.User{ID: 12})
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "type", Value: []byte("users.created")})
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_id", Value: []byte(e.ID.String())})

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}}

	err := p.Publish(context.Background(), New(TypeDeleted, 1, nil))
	assert.ErrorIs(t, err, boom)
}

func TestNATSPublisherWithoutConnection(t *testing.T) {
	p := &NATSPublisher{}
	assert.Error(t, p.Publish(context.Background(), New(TypeCreated, 1, nil)))
	assert.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), New(TypeCreated, 1, nil)))
	assert.NoError(t, p.Close())
}

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_PublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: "a", Body: []byte("1")}))
	require.NoError(t, q.Publish(ctx, Message{Type: "b", Body: []byte("2")}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	assert.Equal(t, Message{Type: "a", Body: []byte("1")}, <-msgs)
	assert.Equal(t, Message{Type: "b", Body: []byte("2")}, <-msgs)

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestInMemory_PublishHonoursContext(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: "b"}), context.DeadlineExceeded)
}

func TestRedisQueue_Publish(t *testing.T) {
	client, mock := redismock.NewClientMock()
	q := NewRedisQueue(client, "")

	mock.ExpectLPush(DefaultKey, "attendance.marked|{}").SetVal(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: TypeAttendanceMarked, Body: []byte("{}")}))

	mock.ExpectLPush(DefaultKey, "x|y").SetErr(errors.New("connection refused"))
	assert.Error(t, q.Publish(context.Background(), Message{Type: "x", Body: []byte("y")}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecode(t *testing.T) {
	assert.Equal(t, Message{Type: "t", Body: []byte("a|b")}, decode("t|a|b"))
	assert.Equal(t, Message{Body: []byte("raw")}, decode("raw"))
	assert.Equal(t, "t|body", encode(Message{Type: "t", Body: []byte("body")}))
}

func TestMarkedEvent_RoundTrip(t *testing.T) {
	evt := MarkedEvent{LogID: "l1", UserID: "u1", Username: "alice", Date: "2024-01-01", Time: "09:30:00"}
	msg, err := NewMarkedMessage(evt)
	require.NoError(t, err)
	assert.Equal(t, TypeAttendanceMarked, msg.Type)

	got, err := DecodeMarked(decode(encode(msg)))
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "09:30:00", got.Time)

	_, err = DecodeMarked(Message{Type: "other"})
	assert.Error(t, err)
}

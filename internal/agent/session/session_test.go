package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	data map[string]string
}

func (m *memBackend) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memBackend) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memBackend) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func newTestStore() (*Store, *memBackend) {
	backend := &memBackend{data: map[string]string{}}
	return NewStore(backend, time.Hour), backend
}

func TestStore_History_MissingKey(t *testing.T) {
	store, _ := newTestStore()

	history, err := store.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_AppendAndHistory(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	err := store.Append(ctx, "u1",
		Message{Role: "user", Content: "is cotton good for summer?"},
		Message{Role: "assistant", Content: "Cotton breathes better in summer."},
	)
	require.NoError(t, err)

	history, err := store.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, Message{Role: "user", Content: "is cotton good for summer?"}, history[0])
	assert.Equal(t, Message{Role: "assistant", Content: "Cotton breathes better in summer."}, history[1])
}

func TestStore_IsolatesIdentities(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Message{Role: "user", Content: "hello from u1"}))
	require.NoError(t, store.Append(ctx, "u2", Message{Role: "user", Content: "hello from u2"}))

	h1, err := store.History(ctx, "u1")
	require.NoError(t, err)
	h2, err := store.History(ctx, "u2")
	require.NoError(t, err)

	require.Len(t, h1, 1)
	require.Len(t, h2, 1)
	assert.Equal(t, "hello from u1", h1[0].Content)
	assert.Equal(t, "hello from u2", h2[0].Content)
}

func TestStore_CapsHistory(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for i := 0; i < maxHistory; i++ {
		err := store.Append(ctx, "u1",
			Message{Role: "user", Content: fmt.Sprintf("question %d", i)},
			Message{Role: "assistant", Content: fmt.Sprintf("answer %d", i)},
		)
		require.NoError(t, err)
	}

	history, err := store.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, maxHistory)

	// 只保留最近的消息，最早的对话被丢弃
	assert.Equal(t, fmt.Sprintf("question %d", maxHistory/2), history[0].Content)
	assert.Equal(t, fmt.Sprintf("answer %d", maxHistory-1), history[maxHistory-1].Content)
}

func TestStore_CorruptPayloadDegradesToEmpty(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	backend.data[sessionKey("u1")] = "{not json"

	history, err := store.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// 损坏的会话可以被覆盖写入
	require.NoError(t, store.Append(ctx, "u1", Message{Role: "user", Content: "fresh start"}))
	history, err = store.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fresh start", history[0].Content)
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Message{Role: "user", Content: "hello"}))
	require.NoError(t, store.Clear(ctx, "u1"))

	history, err := store.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

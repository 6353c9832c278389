package driver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/router"
	"github.com/closetmind/closetmind-backend/internal/agent/session"
	"github.com/closetmind/closetmind-backend/internal/agent/tool"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// scriptedGeneral 按脚本发出事件的问答处理器
type scriptedGeneral struct {
	events  []types.Event
	panics  bool
	history []session.Message
}

func (s *scriptedGeneral) Handle(ctx context.Context, message string, history []session.Message, events chan<- types.Event) {
	if s.panics {
		panic("handler exploded")
	}
	s.history = history
	for _, ev := range s.events {
		events <- ev
	}
}

type noopPipeline struct{}

func (noopPipeline) Run(ctx context.Context, input tool.SearchInput, events chan<- types.Event) *types.PipelineState {
	return types.NewPipelineState()
}

type noopOutfit struct{}

func (noopOutfit) Handle(ctx context.Context, userID, message string, events chan<- types.Event) {}

// newTestDriver 构造一个所有消息都落到 general 处理器的驱动器
func newTestDriver(general router.GeneralHandler) *Driver {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "general", nil
	})

	log := newTestLogger()
	r := router.New(router.NewClassifier(gen, log), noopPipeline{}, noopOutfit{}, general, log)

	return New(r, nil, 5*time.Second, log)
}

func TestDriver_Handle_ReturnsLastFinalEvent(t *testing.T) {
	d := newTestDriver(&scriptedGeneral{
		events: []types.Event{
			{Type: types.EventIntermediate, Content: "thinking"},
			{Type: types.EventFinal, Content: "first answer"},
			{Type: types.EventFinal, Content: "second answer"},
		},
	})

	result := d.Handle(context.Background(), "u1", "tell me a joke", "")
	assert.Equal(t, "second answer", result.Answer)
	assert.Equal(t, types.IntentGeneral, result.Intent)
}

func TestDriver_Handle_FallsBackToLastEvent(t *testing.T) {
	d := newTestDriver(&scriptedGeneral{
		events: []types.Event{
			{Type: types.EventIntermediate, Content: "partial progress"},
		},
	})

	result := d.Handle(context.Background(), "u1", "tell me a joke", "")
	assert.Equal(t, "partial progress", result.Answer)
}

func TestDriver_Handle_ApologizesWhenNoEvents(t *testing.T) {
	d := newTestDriver(&scriptedGeneral{})

	result := d.Handle(context.Background(), "u1", "tell me a joke", "")
	assert.Equal(t, ApologyMessage, result.Answer)
}

func TestDriver_Handle_RecoversFromHandlerPanic(t *testing.T) {
	d := newTestDriver(&scriptedGeneral{panics: true})

	result := d.Handle(context.Background(), "u1", "tell me a joke", "")
	assert.Equal(t, ApologyMessage, result.Answer)
	assert.Empty(t, result.Intent)
}

func TestDriver_Handle_IgnoresEmptyEventContent(t *testing.T) {
	d := newTestDriver(&scriptedGeneral{
		events: []types.Event{
			{Type: types.EventFinal, Content: "real answer"},
			{Type: types.EventFinal, Content: ""},
		},
	})

	result := d.Handle(context.Background(), "u1", "tell me a joke", "")
	assert.Equal(t, "real answer", result.Answer)
}

// memBackend 内存版会话后端
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

func TestDriver_Handle_ThreadsSessionHistory(t *testing.T) {
	general := &scriptedGeneral{
		events: []types.Event{{Type: types.EventFinal, Content: "Cotton breathes better."}},
	}

	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "general", nil
	})
	log := newTestLogger()
	r := router.New(router.NewClassifier(gen, log), noopPipeline{}, noopOutfit{}, general, log)
	store := session.NewStore(&memBackend{data: map[string]string{}}, time.Hour)
	d := New(r, store, 5*time.Second, log)

	result := d.Handle(context.Background(), "u1", "is cotton good for summer?", "")
	assert.Equal(t, "Cotton breathes better.", result.Answer)
	assert.Empty(t, general.history)

	// 第二条消息应带上第一轮的 user/assistant 消息对
	d.Handle(context.Background(), "u1", "and compared to linen?", "")
	require.Len(t, general.history, 2)
	assert.Equal(t, session.Message{Role: "user", Content: "is cotton good for summer?"}, general.history[0])
	assert.Equal(t, session.Message{Role: "assistant", Content: "Cotton breathes better."}, general.history[1])

	// 不同身份之间不共享历史
	d.Handle(context.Background(), "u2", "hello", "")
	assert.Empty(t, general.history)
}

func TestPickAnswer(t *testing.T) {
	tests := []struct {
		name      string
		lastFinal string
		last      string
		want      string
	}{
		{name: "final wins", lastFinal: "final", last: "other", want: "final"},
		{name: "last when no final", lastFinal: "", last: "other", want: "other"},
		{name: "apology when nothing", lastFinal: "", last: "", want: ApologyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickAnswer(tt.lastFinal, tt.last))
		})
	}
}

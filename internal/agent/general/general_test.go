package general

import (
	"context"
	"errors"
	"testing"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/session"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestHandler_Handle_EmitsSingleFinalEvent(t *testing.T) {
	var gotPrompt string
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "Cotton breathes better in summer.", nil
	})

	h := NewHandler(gen, newTestLogger())

	events := make(chan types.Event, 1)
	h.Handle(context.Background(), "is cotton good for summer?", nil, events)

	ev := <-events
	assert.Equal(t, types.EventFinal, ev.Type)
	assert.Equal(t, "Cotton breathes better in summer.", ev.Content)
	assert.Contains(t, gotPrompt, "is cotton good for summer?")
	assert.NotContains(t, gotPrompt, "Conversation so far:")
	assert.Empty(t, events)
}

func TestHandler_Handle_IncludesHistoryInPrompt(t *testing.T) {
	var gotPrompt string
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "Linen wrinkles more than cotton.", nil
	})

	h := NewHandler(gen, newTestLogger())

	history := []session.Message{
		{Role: "user", Content: "is cotton good for summer?"},
		{Role: "assistant", Content: "Cotton breathes better in summer."},
	}

	events := make(chan types.Event, 1)
	h.Handle(context.Background(), "and compared to linen?", history, events)

	ev := <-events
	assert.Equal(t, types.EventFinal, ev.Type)
	assert.Contains(t, gotPrompt, "Conversation so far:")
	assert.Contains(t, gotPrompt, "user: is cotton good for summer?")
	assert.Contains(t, gotPrompt, "assistant: Cotton breathes better in summer.")
	assert.Contains(t, gotPrompt, "and compared to linen?")
}

func TestHandler_Handle_ModelFailure(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model down")
	})

	h := NewHandler(gen, newTestLogger())

	events := make(chan types.Event, 1)
	h.Handle(context.Background(), "hello", nil, events)

	ev := <-events
	assert.Equal(t, types.EventFinal, ev.Type)
	assert.Contains(t, ev.Content, "trouble answering")
}

func TestHandler_Handle_NilEventsChannel(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	})

	h := NewHandler(gen, newTestLogger())

	// 不 panic 即可
	h.Handle(context.Background(), "hello", nil, nil)
}

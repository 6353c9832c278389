package router

import (
	"context"
	"errors"
	"testing"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestClassifier_Classify_RulePrescreen(t *testing.T) {
	var modelCalls int
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		modelCalls++
		return "general", nil
	})
	c := NewClassifier(gen, newTestLogger())

	tests := []struct {
		name    string
		message string
		want    types.Intent
	}{
		{name: "find keyword", message: "find me a red summer dress", want: types.IntentSearch},
		{name: "buy keyword", message: "where can I buy white sneakers", want: types.IntentSearch},
		{name: "chinese search", message: "这条裙子多少钱", want: types.IntentSearch},
		{name: "wear question", message: "what should I wear to the party", want: types.IntentOutfit},
		{name: "outfit keyword", message: "suggest an outfit for a rainy day", want: types.IntentOutfit},
		{name: "chinese outfit", message: "帮我搭配一下", want: types.IntentOutfit},
		{name: "empty message", message: "   ", want: types.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(context.Background(), tt.message))
		})
	}

	// 规则命中时不调用模型
	assert.Equal(t, 0, modelCalls)
}

func TestClassifier_Classify_OutfitWinsOverSearch(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "general", nil
	})
	c := NewClassifier(gen, newTestLogger())

	// 同时命中两类规则时按穿搭处理
	got := c.Classify(context.Background(), "find an outfit from my wardrobe")
	assert.Equal(t, types.IntentOutfit, got)
}

func TestClassifier_Classify_ModelPath(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  types.Intent
	}{
		{name: "model says search", reply: "Search.", want: types.IntentSearch},
		{name: "model says outfit", reply: "the intent is outfit", want: types.IntentOutfit},
		{name: "model says general", reply: "general", want: types.IntentGeneral},
		{name: "unrecognized reply", reply: "banana", want: types.IntentGeneral},
		{name: "model error", err: errors.New("model down"), want: types.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				return tt.reply, tt.err
			})
			c := NewClassifier(gen, newTestLogger())

			got := c.Classify(context.Background(), "tell me something interesting")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		reply string
		want  types.Intent
	}{
		{reply: "search", want: types.IntentSearch},
		{reply: "  SEARCH  ", want: types.IntentSearch},
		{reply: "I think this is an outfit request", want: types.IntentOutfit},
		{reply: "general", want: types.IntentGeneral},
		{reply: "no idea", want: ""},
		{reply: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseIntent(tt.reply), "reply: %q", tt.reply)
	}
}

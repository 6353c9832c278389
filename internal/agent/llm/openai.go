package llm

import (
	"context"
	"fmt"

	"github.com/closetmind/closetmind-backend/internal/conf"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIGenerator 基于 OpenAI Chat Completion 的 Generator 实现
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *logger.Logger
}

// NewOpenAIGenerator 创建 OpenAI Generator
func NewOpenAIGenerator(cfg *conf.LLMConfig, lgr *logger.Logger) (*OpenAIGenerator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	log := lgr
	if log == nil {
		log = logger.L()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log,
	}, nil
}

// Generate 单轮生成
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.logger.Error("chat completion failed", zap.Error(err), zap.String("model", g.model))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

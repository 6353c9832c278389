package llm

import (
	"context"
	"errors"
)

var (
	ErrEmptyPrompt   = errors.New("empty prompt")
	ErrEmptyResponse = errors.New("empty model response")
)

// Generator 生成模型能力接口
// (prompt) -> text，便于测试时替换为 mock
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

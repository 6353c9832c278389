package general

import (
	"context"
	"fmt"
	"strings"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/session"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const answerPromptTemplate = `You are ClosetMind, a friendly personal fashion assistant.
Answer the user's message helpfully and concisely.

%sMessage: %s`

// Handler 直接问答处理器
type Handler struct {
	generator llm.Generator
	logger    *logger.Logger
}

// NewHandler 创建问答处理器
func NewHandler(g llm.Generator, log *logger.Logger) *Handler {
	return &Handler{generator: g, logger: log}
}

// Handle 单轮回答，结果以 final 事件发出
// history 为该用户最近的会话消息，用于多轮上下文
func (h *Handler) Handle(ctx context.Context, message string, history []session.Message, events chan<- types.Event) {
	prompt := fmt.Sprintf(answerPromptTemplate, renderHistory(history), message)

	reply, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		h.logger.Warn("general answer failed", zap.Error(err))
		reply = "Sorry, I'm having trouble answering right now. Please try again."
	}

	if events != nil {
		events <- types.Event{Type: types.EventFinal, Content: reply}
	}
}

// renderHistory 把会话历史渲染为提示词前缀
func renderHistory(history []session.Message) string {
	if len(history) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, m := range history {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

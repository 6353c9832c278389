package outfit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// EmptyWardrobeMessage 衣橱为空时的固定回答
// 不编造任何单品
const EmptyWardrobeMessage = "Your wardrobe is empty, so I can't put together an outfit yet. Add some clothing items first and I'll be happy to help!"

const recommendPromptTemplate = `You are a personal stylist. The user asked:
%s

Their wardrobe contains these items (JSON):
%s

Compose an outfit using only these items. Respond with a short description
of the outfit, which items it uses (reference them by name and image_url),
and a one-sentence rationale. If no sensible outfit can be formed from the
available items, say so explicitly instead of inventing items.`

// WardrobeReader 衣橱查询接口，由 wardrobe 模块实现
type WardrobeReader interface {
	ListByUser(ctx context.Context, userID string) ([]types.WardrobeItem, error)
}

// Handler 穿搭推荐处理器
type Handler struct {
	wardrobe  WardrobeReader
	generator llm.Generator
	logger    *logger.Logger
}

// NewHandler 创建穿搭推荐处理器
func NewHandler(w WardrobeReader, g llm.Generator, log *logger.Logger) *Handler {
	return &Handler{wardrobe: w, generator: g, logger: log}
}

// Handle 基于用户衣橱生成穿搭建议，结果以 final 事件发出
// 衣橱为空时明确说明，不编造结果
func (h *Handler) Handle(ctx context.Context, userID, message string, events chan<- types.Event) {
	reply := h.recommend(ctx, userID, message)
	if events != nil {
		events <- types.Event{Type: types.EventFinal, Content: reply}
	}
}

func (h *Handler) recommend(ctx context.Context, userID, message string) string {
	items, err := h.wardrobe.ListByUser(ctx, userID)
	if err != nil {
		h.logger.Error("failed to load wardrobe", zap.String("user_id", userID), zap.Error(err))
		return "I couldn't access your wardrobe right now. Please try again in a moment."
	}

	if len(items) == 0 {
		return EmptyWardrobeMessage
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		h.logger.Error("failed to encode wardrobe items", zap.Error(err))
		return "I couldn't access your wardrobe right now. Please try again in a moment."
	}

	reply, err := h.generator.Generate(ctx, fmt.Sprintf(recommendPromptTemplate, message, itemsJSON))
	if err != nil {
		h.logger.Warn("outfit recommendation failed", zap.Error(err))
		return "Sorry, I couldn't put together an outfit right now. Please try again."
	}

	return reply
}

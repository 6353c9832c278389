package router

import (
	"context"
	"regexp"
	"strings"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const classifyPromptTemplate = `Classify the user message into exactly one of these intents:
- search: the user wants to find, buy or compare products on the web
- outfit: the user asks for an outfit recommendation from their own wardrobe
- general: anything else (questions, chit-chat, advice)

Reply with only the intent word.

Message: %s`

// Classifier 意图分类器
// 先用规则预筛，规则命中不了再调用模型；模型输出无法识别
// 时回退到 general
type Classifier struct {
	generator llm.Generator
	logger    *logger.Logger

	searchPatterns []*regexp.Regexp
	outfitPatterns []*regexp.Regexp
}

// NewClassifier 创建意图分类器
func NewClassifier(g llm.Generator, log *logger.Logger) *Classifier {
	return &Classifier{
		generator: g,
		logger:    log,
		searchPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(find|search|buy|shop for|look for|where can i (get|buy)|price of)`),
			regexp.MustCompile(`(?i)(找|搜索|购买|哪里买|多少钱)`),
		},
		outfitPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(outfit|what (should|can) i wear|dress me|style me|from my (wardrobe|closet))`),
			regexp.MustCompile(`(?i)(穿什么|搭配|穿搭|衣橱)`),
		},
	}
}

// Classify 将消息归入三个互斥意图之一
func (c *Classifier) Classify(ctx context.Context, message string) types.Intent {
	message = strings.TrimSpace(message)
	if message == "" {
		return types.IntentGeneral
	}

	// 规则预筛
	if c.matchAny(c.outfitPatterns, message) {
		return types.IntentOutfit
	}
	if c.matchAny(c.searchPatterns, message) {
		return types.IntentSearch
	}

	// 模型分类
	reply, err := c.generator.Generate(ctx, classifyPrompt(message))
	if err != nil {
		c.logger.Warn("intent classification failed, falling back to general", zap.Error(err))
		return types.IntentGeneral
	}

	switch parseIntent(reply) {
	case types.IntentSearch:
		return types.IntentSearch
	case types.IntentOutfit:
		return types.IntentOutfit
	default:
		// 含糊不清时按 general 处理
		return types.IntentGeneral
	}
}

func (c *Classifier) matchAny(patterns []*regexp.Regexp, message string) bool {
	for _, p := range patterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

func classifyPrompt(message string) string {
	return strings.Replace(classifyPromptTemplate, "%s", message, 1)
}

// parseIntent 宽松解析模型回复中的意图词
func parseIntent(reply string) types.Intent {
	reply = strings.ToLower(strings.TrimSpace(reply))

	switch {
	case strings.Contains(reply, "search"):
		return types.IntentSearch
	case strings.Contains(reply, "outfit"):
		return types.IntentOutfit
	case strings.Contains(reply, "general"):
		return types.IntentGeneral
	default:
		return ""
	}
}

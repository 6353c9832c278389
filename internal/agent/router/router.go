package router

import (
	"context"

	"github.com/closetmind/closetmind-backend/internal/agent/session"
	"github.com/closetmind/closetmind-backend/internal/agent/tool"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Request 一次路由请求
type Request struct {
	UserID   string
	Message  string
	ImageURL string // 非空时搜索走以图搜图
	History  []session.Message
}

// PipelineRunner 搜索流水线入口
type PipelineRunner interface {
	Run(ctx context.Context, input tool.SearchInput, events chan<- types.Event) *types.PipelineState
}

// OutfitHandler 穿搭推荐入口
type OutfitHandler interface {
	Handle(ctx context.Context, userID, message string, events chan<- types.Event)
}

// GeneralHandler 直接问答入口
type GeneralHandler interface {
	Handle(ctx context.Context, message string, history []session.Message, events chan<- types.Event)
}

// Router 意图路由
// 每条消息恰好派发给一个处理器
type Router struct {
	classifier *Classifier
	pipeline   PipelineRunner
	outfit     OutfitHandler
	general    GeneralHandler
	logger     *logger.Logger
}

// New 创建路由器
func New(
	classifier *Classifier,
	pipeline PipelineRunner,
	outfit OutfitHandler,
	general GeneralHandler,
	log *logger.Logger,
) *Router {
	return &Router{
		classifier: classifier,
		pipeline:   pipeline,
		outfit:     outfit,
		general:    general,
		logger:     log,
	}
}

// Route 分类并派发消息
// 处理器通过 events 发出中间/最终事件
func (r *Router) Route(ctx context.Context, req Request, events chan<- types.Event) types.Intent {
	intent := r.classifier.Classify(ctx, req.Message)

	r.logger.Info("routing message",
		zap.String("user_id", req.UserID),
		zap.String("intent", string(intent)))

	switch intent {
	case types.IntentSearch:
		input := tool.SearchInput{Query: req.Message}
		if req.ImageURL != "" {
			input = tool.SearchInput{ImageURL: req.ImageURL}
		}
		r.pipeline.Run(ctx, input, events)
	case types.IntentOutfit:
		r.outfit.Handle(ctx, req.UserID, req.Message, events)
	default:
		r.general.Handle(ctx, req.Message, req.History, events)
	}

	return intent
}

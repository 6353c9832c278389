package driver

import (
	"context"
	"time"

	"github.com/closetmind/closetmind-backend/internal/agent/router"
	"github.com/closetmind/closetmind-backend/internal/agent/session"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// ApologyMessage 没有任何可用信号时返回的固定回答
const ApologyMessage = "I apologize, but I couldn't process your request at this time."

// Result 一次请求的处理结果
type Result struct {
	Answer string
	Intent types.Intent
}

// Driver 请求驱动器
// 持有会话绑定，把消息交给路由器，消费事件流并返回最后
// 一个 final 事件的内容；任何内部故障都在这一层被捕获并
// 转换为用户可读的文本，不向外泄露原始错误
type Driver struct {
	router         *router.Router
	sessions       *session.Store
	requestTimeout time.Duration
	logger         *logger.Logger
}

// New 创建请求驱动器
func New(r *router.Router, sessions *session.Store, requestTimeout time.Duration, log *logger.Logger) *Driver {
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}
	return &Driver{
		router:         r,
		sessions:       sessions,
		requestTimeout: requestTimeout,
		logger:         log,
	}
}

// Handle 处理一条用户消息
// 事件流耗尽后返回最后一个 final 事件内容；从未出现 final
// 标记时返回最后收到的文本；完全没有文本时返回固定道歉语
func (d *Driver) Handle(ctx context.Context, userID, message, imageURL string) Result {
	ctx, cancel := context.WithTimeout(ctx, d.requestTimeout)
	defer cancel()

	history := d.loadHistory(ctx, userID)

	events := make(chan types.Event, 16)
	intentCh := make(chan types.Intent, 1)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic in agent dispatch",
					zap.Any("panic", r),
					zap.String("user_id", userID))
			}
		}()

		intent := d.router.Route(ctx, router.Request{
			UserID:   userID,
			Message:  message,
			ImageURL: imageURL,
			History:  history,
		}, events)
		intentCh <- intent
	}()

	answer := d.drain(ctx, events)

	var intent types.Intent
	select {
	case intent = <-intentCh:
	default:
		// 派发协程 panic 或超时，没有意图可取
	}

	d.recordSession(userID, message, answer)

	return Result{Answer: answer, Intent: intent}
}

// drain 消费事件直到流结束或上下文取消
func (d *Driver) drain(ctx context.Context, events <-chan types.Event) string {
	var lastFinal, last string

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return pickAnswer(lastFinal, last)
			}
			if ev.Content != "" {
				last = ev.Content
				if ev.Type == types.EventFinal {
					lastFinal = ev.Content
				}
			}
		case <-ctx.Done():
			d.logger.Warn("agent request timed out", zap.Error(ctx.Err()))
			return pickAnswer(lastFinal, last)
		}
	}
}

func pickAnswer(lastFinal, last string) string {
	if lastFinal != "" {
		return lastFinal
	}
	if last != "" {
		return last
	}
	return ApologyMessage
}

// loadHistory 读取用户的会话历史，失败按空历史处理
func (d *Driver) loadHistory(ctx context.Context, userID string) []session.Message {
	if d.sessions == nil {
		return nil
	}

	history, err := d.sessions.History(ctx, userID)
	if err != nil {
		d.logger.Warn("failed to load session", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return history
}

// recordSession 把消息对写入会话历史，失败只记录日志
func (d *Driver) recordSession(userID, message, answer string) {
	if d.sessions == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := d.sessions.Append(ctx, userID,
		session.Message{Role: "user", Content: message},
		session.Message{Role: "assistant", Content: answer},
	)
	if err != nil {
		d.logger.Warn("failed to record session", zap.String("user_id", userID), zap.Error(err))
	}
}

package service

import (
	"github.com/closetmind/closetmind-backend/internal/agent/driver"
	"github.com/closetmind/closetmind-backend/internal/auth/middleware"
	chatbiz "github.com/closetmind/closetmind-backend/internal/chat/biz"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentService 智能体入口服务
type AgentService struct {
	driver *driver.Driver
	chatUC *chatbiz.ChatUseCase
	logger *logger.Logger
}

// NewAgentService 创建智能体服务
func NewAgentService(d *driver.Driver, chatUC *chatbiz.ChatUseCase, log *logger.Logger) *AgentService {
	return &AgentService{
		driver: d,
		chatUC: chatUC,
		logger: log,
	}
}

// ChatRequest 消息请求
// ImageURL 非空时搜索意图走以图搜图
type ChatRequest struct {
	Message  string `json:"message" binding:"required,min=1,max=4000"`
	ChatID   string `json:"chat_id"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

// Chat 处理一条用户消息
// @Summary 发送消息给智能体
// @Tags agent
// @Accept json
// @Produce json
// @Param request body ChatRequest true "用户消息"
// @Router /agent/chat [post]
func (s *AgentService) Chat(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "未认证")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result := s.driver.Handle(c.Request.Context(), userID, req.Message, req.ImageURL)

	// 持久化消息对，失败不影响返回
	chatID := req.ChatID
	if s.chatUC != nil {
		chat, err := s.chatUC.AppendExchange(c.Request.Context(), userID, req.ChatID, req.Message, result.Answer)
		if err != nil {
			s.logger.Warn("failed to persist chat exchange",
				zap.Error(err),
				zap.String("user_id", userID))
		} else {
			chatID = chat.ID
		}
	}

	response.Success(c, gin.H{
		"answer":  result.Answer,
		"intent":  result.Intent,
		"chat_id": chatID,
	})
}

// RegisterRoutes 注册路由（需要认证中间件）
func (s *AgentService) RegisterRoutes(r *gin.RouterGroup, rateLimiter gin.HandlerFunc) {
	agent := r.Group("/agent")
	{
		if rateLimiter != nil {
			agent.POST("/chat", rateLimiter, s.Chat)
		} else {
			agent.POST("/chat", s.Chat)
		}
	}
}

package service

import (
	"net/http"
	"time"

	"github.com/closetmind/closetmind-backend/internal/auth/middleware"
	"github.com/closetmind/closetmind-backend/internal/chat/biz"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatService 对话历史服务
type ChatService struct {
	chatUC *biz.ChatUseCase
	logger *logger.Logger
}

// NewChatService 创建对话服务
func NewChatService(uc *biz.ChatUseCase, log *logger.Logger) *ChatService {
	return &ChatService{
		chatUC: uc,
		logger: log,
	}
}

// ChatView 对外暴露的对话信息
type ChatView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageView 对外暴露的消息信息
type MessageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ListChats 列出当前用户的对话
func (s *ChatService) ListChats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	chats, err := s.chatUC.ListChats(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list chats", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "获取对话列表失败")
		return
	}

	views := make([]ChatView, 0, len(chats))
	for _, chat := range chats {
		views = append(views, ChatView{
			ID:        chat.ID,
			Title:     chat.Title,
			UpdatedAt: chat.UpdatedAt,
		})
	}

	response.Success(c, gin.H{"chats": views})
}

// CreateChatRequest 创建对话请求
type CreateChatRequest struct {
	Title string `json:"title" binding:"max=255"`
}

// CreateChat 创建对话
func (s *ChatService) CreateChat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	chat, err := s.chatUC.CreateChat(c.Request.Context(), userID, req.Title)
	if err != nil {
		s.logger.Error("failed to create chat", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "创建对话失败")
		return
	}

	response.Created(c, ChatView{
		ID:        chat.ID,
		Title:     chat.Title,
		UpdatedAt: chat.UpdatedAt,
	})
}

// ListMessages 列出对话消息
func (s *ChatService) ListMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	chatID := c.Param("id")

	msgs, err := s.chatUC.ListMessages(c.Request.Context(), userID, chatID)
	if err != nil {
		s.handleChatError(c, err, userID, chatID)
		return
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	response.Success(c, gin.H{"messages": views})
}

// DeleteChat 删除对话
func (s *ChatService) DeleteChat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	chatID := c.Param("id")

	if err := s.chatUC.DeleteChat(c.Request.Context(), userID, chatID); err != nil {
		s.handleChatError(c, err, userID, chatID)
		return
	}

	response.Success(c, gin.H{"id": chatID})
}

func (s *ChatService) handleChatError(c *gin.Context, err error, userID, chatID string) {
	switch err {
	case biz.ErrChatNotFound:
		response.NotFound(c, "对话不存在")
	case biz.ErrNotChatOwner:
		response.Error(c, http.StatusForbidden, "无权访问该对话")
	default:
		s.logger.Error("chat operation failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("chat_id", chatID))
		response.InternalError(c, "操作失败")
	}
}

// RegisterRoutes 注册路由（需要认证中间件）
func (s *ChatService) RegisterRoutes(r *gin.RouterGroup) {
	chats := r.Group("/chats")
	{
		chats.GET("", s.ListChats)
		chats.POST("", s.CreateChat)
		chats.GET("/:id/messages", s.ListMessages)
		chats.DELETE("/:id", s.DeleteChat)
	}
}

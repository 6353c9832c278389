package biz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrNotChatOwner = errors.New("chat belongs to another user")
)

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat 一个对话
type Chat struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message 对话中的一条消息
type Message struct {
	ID        string
	ChatID    string
	Role      string // user | assistant
	Content   string
	CreatedAt time.Time
}

// ChatRepo 对话仓库接口
type ChatRepo interface {
	CreateChat(ctx context.Context, chat *Chat) error
	GetChat(ctx context.Context, id string) (*Chat, error)
	ListChats(ctx context.Context, userID string) ([]*Chat, error)
	DeleteChat(ctx context.Context, id string) error
	TouchChat(ctx context.Context, id string, at time.Time) error

	CreateMessages(ctx context.Context, msgs []*Message) error
	ListMessages(ctx context.Context, chatID string) ([]*Message, error)
}

// ChatUseCase 对话业务逻辑
type ChatUseCase struct {
	repo ChatRepo
}

func NewChatUseCase(repo ChatRepo) *ChatUseCase {
	return &ChatUseCase{repo: repo}
}

// titleLimit 对话标题从首条消息截取的最大长度
const titleLimit = 60

// CreateChat 创建对话
func (uc *ChatUseCase) CreateChat(ctx context.Context, userID, title string) (*Chat, error) {
	if title == "" {
		title = "New chat"
	}
	if len(title) > titleLimit {
		title = title[:titleLimit]
	}

	now := time.Now()
	chat := &Chat{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChats 列出用户的对话
func (uc *ChatUseCase) ListChats(ctx context.Context, userID string) ([]*Chat, error) {
	return uc.repo.ListChats(ctx, userID)
}

// GetChat 查询对话并校验归属
func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*Chat, error) {
	chat, err := uc.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, ErrNotChatOwner
	}
	return chat, nil
}

// DeleteChat 删除对话
func (uc *ChatUseCase) DeleteChat(ctx context.Context, userID, chatID string) error {
	if _, err := uc.GetChat(ctx, userID, chatID); err != nil {
		return err
	}
	return uc.repo.DeleteChat(ctx, chatID)
}

// ListMessages 列出对话的消息
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, chatID string) ([]*Message, error) {
	if _, err := uc.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return uc.repo.ListMessages(ctx, chatID)
}

// AppendExchange 追加一问一答，不存在对话时先创建
// 返回消息归属的对话
func (uc *ChatUseCase) AppendExchange(ctx context.Context, userID, chatID, userMsg, assistantMsg string) (*Chat, error) {
	var chat *Chat
	var err error

	if chatID == "" {
		chat, err = uc.CreateChat(ctx, userID, userMsg)
	} else {
		chat, err = uc.GetChat(ctx, userID, chatID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msgs := []*Message{
		{
			ID:        uuid.Must(uuid.NewV7()).String(),
			ChatID:    chat.ID,
			Role:      RoleUser,
			Content:   userMsg,
			CreatedAt: now,
		},
		{
			ID:        uuid.Must(uuid.NewV7()).String(),
			ChatID:    chat.ID,
			Role:      RoleAssistant,
			Content:   assistantMsg,
			CreatedAt: now.Add(time.Millisecond),
		},
	}

	if err := uc.repo.CreateMessages(ctx, msgs); err != nil {
		return nil, err
	}

	// 刷新对话的最近活跃时间，列表按此排序
	_ = uc.repo.TouchChat(ctx, chat.ID, now)

	return chat, nil
}

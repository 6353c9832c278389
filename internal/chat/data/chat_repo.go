package data

import (
	"context"
	"time"

	"github.com/closetmind/closetmind-backend/internal/chat/biz"
	"github.com/closetmind/closetmind-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// ChatPO 对话数据模型
type ChatPO struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;index;not null"`
	Title     string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (ChatPO) TableName() string {
	return "chats"
}

// MessagePO 消息数据模型
type MessagePO struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ChatID    string `gorm:"type:uuid;index;not null"`
	Role      string `gorm:"type:varchar(20);not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName 指定表名
func (MessagePO) TableName() string {
	return "messages"
}

// ChatRepo 对话仓库
type ChatRepo struct {
	db *database.DB
}

// NewChatRepo 创建对话仓库
func NewChatRepo(db *database.DB) biz.ChatRepo {
	return &ChatRepo{db: db}
}

// CreateChat 创建对话
func (r *ChatRepo) CreateChat(ctx context.Context, chat *biz.Chat) error {
	return r.db.GetDB().WithContext(ctx).Create(&ChatPO{
		ID:        chat.ID,
		UserID:    chat.UserID,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}).Error
}

// GetChat 根据 ID 查询对话
func (r *ChatRepo) GetChat(ctx context.Context, id string) (*biz.Chat, error) {
	var po ChatPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("id = ?", id).
		First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrChatNotFound
		}
		return nil, err
	}
	return toBizChat(&po), nil
}

// ListChats 按最近活跃排序列出用户的对话
func (r *ChatRepo) ListChats(ctx context.Context, userID string) ([]*biz.Chat, error) {
	var pos []ChatPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(database.OrderBy("updated_at", true)).
		Find(&pos).Error; err != nil {
		return nil, err
	}

	chats := make([]*biz.Chat, 0, len(pos))
	for i := range pos {
		chats = append(chats, toBizChat(&pos[i]))
	}
	return chats, nil
}

// DeleteChat 软删除对话
func (r *ChatRepo) DeleteChat(ctx context.Context, id string) error {
	return r.db.GetDB().WithContext(ctx).
		Where("id = ?", id).
		Delete(&ChatPO{}).Error
}

// TouchChat 刷新对话的更新时间
func (r *ChatRepo) TouchChat(ctx context.Context, id string, at time.Time) error {
	return r.db.GetDB().WithContext(ctx).
		Model(&ChatPO{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

// CreateMessages 批量写入消息
func (r *ChatRepo) CreateMessages(ctx context.Context, msgs []*biz.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	pos := make([]MessagePO, 0, len(msgs))
	for _, m := range msgs {
		pos = append(pos, MessagePO{
			ID:        m.ID,
			ChatID:    m.ChatID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	return r.db.GetDB().WithContext(ctx).Create(&pos).Error
}

// ListMessages 按时间顺序列出对话消息
func (r *ChatRepo) ListMessages(ctx context.Context, chatID string) ([]*biz.Message, error) {
	var pos []MessagePO
	if err := r.db.GetDB().WithContext(ctx).
		Where("chat_id = ?", chatID).
		Scopes(database.OrderBy("created_at", false)).
		Find(&pos).Error; err != nil {
		return nil, err
	}

	msgs := make([]*biz.Message, 0, len(pos))
	for i := range pos {
		po := &pos[i]
		msgs = append(msgs, &biz.Message{
			ID:        po.ID,
			ChatID:    po.ChatID,
			Role:      po.Role,
			Content:   po.Content,
			CreatedAt: po.CreatedAt,
		})
	}
	return msgs, nil
}

func toBizChat(po *ChatPO) *biz.Chat {
	return &biz.Chat{
		ID:        po.ID,
		UserID:    po.UserID,
		Title:     po.Title,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

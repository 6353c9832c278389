package biz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	agenttypes "github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/minio"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound = errors.New("clothing item not found")
	ErrNotOwner     = errors.New("clothing item belongs to another user")
)

// ClothingItem 衣橱单品
type ClothingItem struct {
	ID        string
	UserID    string
	Name      string
	Category  string
	ImageURL  string
	Features  string // JSON 编码的特征描述
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClothingRepo 衣橱仓库接口
type ClothingRepo interface {
	Create(ctx context.Context, item *ClothingItem) error
	GetByID(ctx context.Context, id string) (*ClothingItem, error)
	ListByUser(ctx context.Context, userID string) ([]*ClothingItem, error)
	Update(ctx context.Context, item *ClothingItem) error
	Delete(ctx context.Context, id string) error
}

// WardrobeUseCase 衣橱业务逻辑
type WardrobeUseCase struct {
	repo    ClothingRepo
	storage *minio.Client
	log     *logger.Logger
}

func NewWardrobeUseCase(repo ClothingRepo, storage *minio.Client, log *logger.Logger) *WardrobeUseCase {
	return &WardrobeUseCase{
		repo:    repo,
		storage: storage,
		log:     log,
	}
}

// CreateItem 添加单品
func (uc *WardrobeUseCase) CreateItem(ctx context.Context, item *ClothingItem) error {
	if item.ID == "" {
		item.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	return uc.repo.Create(ctx, item)
}

// ListItems 列出用户的全部单品
func (uc *WardrobeUseCase) ListItems(ctx context.Context, userID string) ([]*ClothingItem, error) {
	return uc.repo.ListByUser(ctx, userID)
}

// GetItem 查询单品，校验归属
func (uc *WardrobeUseCase) GetItem(ctx context.Context, userID, itemID string) (*ClothingItem, error) {
	item, err := uc.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrNotOwner
	}
	return item, nil
}

// UpdateItem 更新单品，校验归属
func (uc *WardrobeUseCase) UpdateItem(ctx context.Context, userID string, item *ClothingItem) error {
	existing, err := uc.GetItem(ctx, userID, item.ID)
	if err != nil {
		return err
	}

	existing.Name = item.Name
	existing.Category = item.Category
	existing.Features = item.Features
	if item.ImageURL != "" {
		existing.ImageURL = item.ImageURL
	}
	existing.UpdatedAt = time.Now()

	return uc.repo.Update(ctx, existing)
}

// DeleteItem 删除单品，校验归属
func (uc *WardrobeUseCase) DeleteItem(ctx context.Context, userID, itemID string) error {
	if _, err := uc.GetItem(ctx, userID, itemID); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, itemID)
}

// UploadImage 上传单品图片到对象存储，返回可访问的 URL
func (uc *WardrobeUseCase) UploadImage(ctx context.Context, userID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if uc.storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	objectName := fmt.Sprintf("wardrobe/%s/%s%s",
		userID, uuid.Must(uuid.NewV7()).String(), path.Ext(filename))

	info, err := uc.storage.PutObject(ctx, objectName, reader, size, contentType)
	if err != nil {
		uc.log.Error("failed to upload wardrobe image",
			zap.String("user_id", userID),
			zap.Error(err))
		return "", err
	}

	return info.URL, nil
}

// AgentReader 把衣橱查询适配成智能体需要的只读视图
type AgentReader struct {
	uc *WardrobeUseCase
}

// NewAgentReader 创建智能体侧的衣橱只读适配器
func NewAgentReader(uc *WardrobeUseCase) *AgentReader {
	return &AgentReader{uc: uc}
}

// ListByUser 按用户列出衣橱条目
func (r *AgentReader) ListByUser(ctx context.Context, userID string) ([]agenttypes.WardrobeItem, error) {
	items, err := r.uc.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]agenttypes.WardrobeItem, 0, len(items))
	for _, item := range items {
		out = append(out, agenttypes.WardrobeItem{
			ID:       item.ID,
			Name:     item.Name,
			ImageURL: item.ImageURL,
			Category: item.Category,
			Features: item.Features,
		})
	}
	return out, nil
}

package biz

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/minio"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound     = errors.New("waitlist item not found")
	ErrNotOwner         = errors.New("waitlist item belongs to another user")
	ErrInvalidImageData = errors.New("invalid base64 image data")
)

// 条目处理状态
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// WaitItem 等待处理的收藏条目
// 浏览器扩展投递的截图或用户直接给出的图片 URL
type WaitItem struct {
	ID        string
	UserID    string
	ImageURL  string
	ObjectKey string // 截图在对象存储里的 key，外部 URL 条目为空
	TryOnURL  string
	Status    string
	CreatedAt time.Time
}

// ItemRepo 等待清单仓库接口
type ItemRepo interface {
	Create(ctx context.Context, item *WaitItem) error
	GetByID(ctx context.Context, id string) (*WaitItem, error)
	ListByUser(ctx context.Context, userID string) ([]*WaitItem, error)
	Delete(ctx context.Context, id string) error
}

// ScreenshotStore 截图对象存储接口，*minio.Client 满足该接口
type ScreenshotStore interface {
	PutObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, objectName string) error
}

// WaitlistUseCase 等待清单业务逻辑
type WaitlistUseCase struct {
	repo    ItemRepo
	storage ScreenshotStore
	log     *logger.Logger
}

func NewWaitlistUseCase(repo ItemRepo, storage ScreenshotStore, log *logger.Logger) *WaitlistUseCase {
	return &WaitlistUseCase{
		repo:    repo,
		storage: storage,
		log:     log,
	}
}

// AddItem 通过图片 URL 添加条目
func (uc *WaitlistUseCase) AddItem(ctx context.Context, userID, imageURL, status string) (*WaitItem, error) {
	if status == "" {
		status = StatusPending
	}

	item := &WaitItem{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		ImageURL:  imageURL,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UploadScreenshot 接收 base64 编码的截图，存入对象存储并登记条目
func (uc *WaitlistUseCase) UploadScreenshot(ctx context.Context, userID, imageBase64 string) (*WaitItem, error) {
	if uc.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	// data URL 前缀之后才是编码内容
	if i := strings.LastIndex(imageBase64, ","); i >= 0 {
		imageBase64 = imageBase64[i+1:]
	}
	img, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil || len(img) == 0 {
		return nil, ErrInvalidImageData
	}

	objectKey := fmt.Sprintf("waitlist/%s/%s.png", userID, uuid.Must(uuid.NewV7()).String())
	info, err := uc.storage.PutObject(ctx, objectKey, bytes.NewReader(img), int64(len(img)), "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to store screenshot: %w", err)
	}

	item := &WaitItem{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		ImageURL:  info.URL,
		ObjectKey: objectKey,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems 按时间倒序列出用户的条目
func (uc *WaitlistUseCase) ListItems(ctx context.Context, userID string) ([]*WaitItem, error) {
	return uc.repo.ListByUser(ctx, userID)
}

// DeleteItem 删除条目，校验归属，并清理存储的截图
func (uc *WaitlistUseCase) DeleteItem(ctx context.Context, userID, itemID string) error {
	item, err := uc.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrNotOwner
	}

	if err := uc.repo.Delete(ctx, itemID); err != nil {
		return err
	}

	// 截图对象是条目私有的，条目删除后一并清理
	if item.ObjectKey != "" && uc.storage != nil {
		if err := uc.storage.RemoveObject(ctx, item.ObjectKey); err != nil {
			uc.log.Warn("failed to remove screenshot object",
				zap.String("object", item.ObjectKey),
				zap.Error(err))
		}
	}

	return nil
}

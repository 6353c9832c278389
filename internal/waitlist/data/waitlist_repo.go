package data

import (
	"context"
	"time"

	"github.com/closetmind/closetmind-backend/internal/pkg/database"
	"github.com/closetmind/closetmind-backend/internal/waitlist/biz"
	"gorm.io/gorm"
)

// WaitListItemPO 等待清单数据模型
type WaitListItemPO struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;index;not null"`
	ImageURL  string `gorm:"type:text;not null"`
	ObjectKey string `gorm:"type:text"`
	TryOnURL  string `gorm:"type:text"`
	Status    string `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (WaitListItemPO) TableName() string {
	return "waitlist_items"
}

// WaitlistRepo 等待清单仓库
type WaitlistRepo struct {
	db *database.DB
}

// NewWaitlistRepo 创建等待清单仓库
func NewWaitlistRepo(db *database.DB) biz.ItemRepo {
	return &WaitlistRepo{db: db}
}

// Create 新增条目
func (r *WaitlistRepo) Create(ctx context.Context, item *biz.WaitItem) error {
	return r.db.GetDB().WithContext(ctx).Create(toPO(item)).Error
}

// GetByID 根据 ID 查询条目
func (r *WaitlistRepo) GetByID(ctx context.Context, id string) (*biz.WaitItem, error) {
	var po WaitListItemPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("id = ?", id).
		First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrItemNotFound
		}
		return nil, err
	}
	return toBiz(&po), nil
}

// ListByUser 按用户列出条目，最新的在前
func (r *WaitlistRepo) ListByUser(ctx context.Context, userID string) ([]*biz.WaitItem, error) {
	var pos []WaitListItemPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(database.OrderBy("created_at", true)).
		Find(&pos).Error; err != nil {
		return nil, err
	}

	items := make([]*biz.WaitItem, 0, len(pos))
	for i := range pos {
		items = append(items, toBiz(&pos[i]))
	}
	return items, nil
}

// Delete 软删除条目
func (r *WaitlistRepo) Delete(ctx context.Context, id string) error {
	return r.db.GetDB().WithContext(ctx).
		Where("id = ?", id).
		Delete(&WaitListItemPO{}).Error
}

func toPO(item *biz.WaitItem) *WaitListItemPO {
	return &WaitListItemPO{
		ID:        item.ID,
		UserID:    item.UserID,
		ImageURL:  item.ImageURL,
		ObjectKey: item.ObjectKey,
		TryOnURL:  item.TryOnURL,
		Status:    item.Status,
		CreatedAt: item.CreatedAt,
	}
}

func toBiz(po *WaitListItemPO) *biz.WaitItem {
	return &biz.WaitItem{
		ID:        po.ID,
		UserID:    po.UserID,
		ImageURL:  po.ImageURL,
		ObjectKey: po.ObjectKey,
		TryOnURL:  po.TryOnURL,
		Status:    po.Status,
		CreatedAt: po.CreatedAt,
	}
}

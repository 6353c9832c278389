package data

import (
	"context"
	"time"

	"github.com/closetmind/closetmind-backend/internal/pkg/database"
	"github.com/closetmind/closetmind-backend/internal/wardrobe/biz"
	"gorm.io/gorm"
)

// ClothingItemPO 衣橱单品数据模型
type ClothingItemPO struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;index;not null"`
	Name      string `gorm:"type:varchar(255);not null"`
	Category  string `gorm:"type:varchar(100);index"`
	ImageURL  string `gorm:"type:text"`
	Features  string `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (ClothingItemPO) TableName() string {
	return "clothing_items"
}

// ClothingRepo 衣橱仓库
type ClothingRepo struct {
	db *database.DB
}

// NewClothingRepo 创建衣橱仓库
func NewClothingRepo(db *database.DB) biz.ClothingRepo {
	return &ClothingRepo{db: db}
}

// Create 创建单品
func (r *ClothingRepo) Create(ctx context.Context, item *biz.ClothingItem) error {
	return r.db.GetDB().WithContext(ctx).Create(toPO(item)).Error
}

// GetByID 根据 ID 查询单品
func (r *ClothingRepo) GetByID(ctx context.Context, id string) (*biz.ClothingItem, error) {
	var po ClothingItemPO
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

// ListByUser 按用户列出单品，按创建时间排序
func (r *ClothingRepo) ListByUser(ctx context.Context, userID string) ([]*biz.ClothingItem, error) {
	var pos []ClothingItemPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(database.OrderBy("created_at", false)).
		Find(&pos).Error; err != nil {
		return nil, err
	}

	items := make([]*biz.ClothingItem, 0, len(pos))
	for i := range pos {
		items = append(items, toBiz(&pos[i]))
	}
	return items, nil
}

// Update 更新单品
func (r *ClothingRepo) Update(ctx context.Context, item *biz.ClothingItem) error {
	return r.db.GetDB().WithContext(ctx).
		Model(&ClothingItemPO{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":       item.Name,
			"category":   item.Category,
			"image_url":  item.ImageURL,
			"features":   item.Features,
			"updated_at": item.UpdatedAt,
		}).Error
}

// Delete 软删除单品
func (r *ClothingRepo) Delete(ctx context.Context, id string) error {
	return r.db.GetDB().WithContext(ctx).
		Where("id = ?", id).
		Delete(&ClothingItemPO{}).Error
}

func toPO(item *biz.ClothingItem) *ClothingItemPO {
	return &ClothingItemPO{
		ID:        item.ID,
		UserID:    item.UserID,
		Name:      item.Name,
		Category:  item.Category,
		ImageURL:  item.ImageURL,
		Features:  item.Features,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toBiz(po *ClothingItemPO) *biz.ClothingItem {
	return &biz.ClothingItem{
		ID:        po.ID,
		UserID:    po.UserID,
		Name:      po.Name,
		Category:  po.Category,
		ImageURL:  po.ImageURL,
		Features:  po.Features,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

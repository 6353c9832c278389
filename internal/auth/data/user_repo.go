package data

import (
	"context"

	"github.com/closetmind/closetmind-backend/internal/auth/biz"
	"github.com/closetmind/closetmind-backend/internal/pkg/database"
	"github.com/closetmind/closetmind-backend/internal/user/data"
)

// AuthUserRepo 认证用户仓库
// 使用 internal/pkg/database 封装
type AuthUserRepo struct {
	db *database.DB
}

// NewAuthUserRepo 创建认证用户仓库
func NewAuthUserRepo(db *database.DB) biz.UserRepo {
	return &AuthUserRepo{db: db}
}

// Create 创建用户
func (r *AuthUserRepo) Create(ctx context.Context, user *biz.User) error {
	po := r.toUserPO(user)
	if err := r.db.GetDB().WithContext(ctx).Create(po).Error; err != nil {
		return err
	}
	user.ID = po.ID
	return nil
}

// GetByID 根据 ID 获取用户
func (r *AuthUserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	var po data.UserPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("id = ?", id).
		First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return r.toBizUser(&po), nil
}

// GetByEmail 根据邮箱获取用户
func (r *AuthUserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	var po data.UserPO
	if err := r.db.GetDB().WithContext(ctx).
		Where("email = ?", email).
		First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return r.toBizUser(&po), nil
}

// toUserPO 业务模型转数据模型
func (r *AuthUserRepo) toUserPO(user *biz.User) *data.UserPO {
	if user == nil {
		return nil
	}

	return &data.UserPO{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		AvatarURL:    user.AvatarURL,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// toBizUser 数据模型转业务模型
func (r *AuthUserRepo) toBizUser(po *data.UserPO) *biz.User {
	if po == nil {
		return nil
	}

	return &biz.User{
		ID:           po.ID,
		Name:         po.Name,
		Email:        po.Email,
		PasswordHash: po.PasswordHash,
		AvatarURL:    po.AvatarURL,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

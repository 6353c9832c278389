package service

import (
	"net/http"

	"github.com/closetmind/closetmind-backend/internal/auth/middleware"
	apperrors "github.com/closetmind/closetmind-backend/internal/pkg/errors"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/response"
	"github.com/closetmind/closetmind-backend/internal/wardrobe/biz"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 单品图片上传大小上限
const maxUploadSize = 10 << 20 // 10MB

// WardrobeService 衣橱服务
type WardrobeService struct {
	wardrobeUC *biz.WardrobeUseCase
	logger     *logger.Logger
}

// NewWardrobeService 创建衣橱服务
func NewWardrobeService(uc *biz.WardrobeUseCase, log *logger.Logger) *WardrobeService {
	return &WardrobeService{
		wardrobeUC: uc,
		logger:     log,
	}
}

// ItemRequest 创建/更新单品请求
type ItemRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Category string `json:"category" binding:"max=100"`
	ImageURL string `json:"image_url"`
	Features string `json:"features"`
}

// ItemView 对外暴露的单品信息
type ItemView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Features string `json:"features,omitempty"`
}

func toItemView(item *biz.ClothingItem) ItemView {
	return ItemView{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		ImageURL: item.ImageURL,
		Features: item.Features,
	}
}

// ListItems 列出当前用户的衣橱
func (s *WardrobeService) ListItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	items, err := s.wardrobeUC.ListItems(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list wardrobe items", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "获取衣橱失败")
		return
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}

	response.Success(c, gin.H{"items": views})
}

// CreateItem 添加单品
func (s *WardrobeService) CreateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item := &biz.ClothingItem{
		UserID:   userID,
		Name:     req.Name,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Features: req.Features,
	}

	if err := s.wardrobeUC.CreateItem(c.Request.Context(), item); err != nil {
		s.logger.Error("failed to create wardrobe item", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "添加单品失败")
		return
	}

	response.Created(c, toItemView(item))
}

// UpdateItem 更新单品
func (s *WardrobeService) UpdateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	itemID := c.Param("id")

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item := &biz.ClothingItem{
		ID:       itemID,
		Name:     req.Name,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Features: req.Features,
	}

	if err := s.wardrobeUC.UpdateItem(c.Request.Context(), userID, item); err != nil {
		s.handleItemError(c, err, userID, itemID)
		return
	}

	response.Success(c, gin.H{"id": itemID})
}

// DeleteItem 删除单品
func (s *WardrobeService) DeleteItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	itemID := c.Param("id")

	if err := s.wardrobeUC.DeleteItem(c.Request.Context(), userID, itemID); err != nil {
		s.handleItemError(c, err, userID, itemID)
		return
	}

	response.Success(c, gin.H{"id": itemID})
}

// UploadImage 上传单品图片
func (s *WardrobeService) UploadImage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		response.BadRequest(c, "image file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, err := s.wardrobeUC.UploadImage(c.Request.Context(), userID, header.Filename, file, header.Size, contentType)
	if err != nil {
		s.logger.Error("failed to upload image", zap.Error(err), zap.String("user_id", userID))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrWardrobeUploadFailed))
		return
	}

	response.Success(c, gin.H{"image_url": url})
}

func (s *WardrobeService) handleItemError(c *gin.Context, err error, userID, itemID string) {
	switch err {
	case biz.ErrItemNotFound:
		response.NotFound(c, "单品不存在")
	case biz.ErrNotOwner:
		response.Error(c, http.StatusForbidden, "无权操作该单品")
	default:
		s.logger.Error("wardrobe operation failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("item_id", itemID))
		response.InternalError(c, "操作失败")
	}
}

// RegisterRoutes 注册路由（需要认证中间件）
func (s *WardrobeService) RegisterRoutes(r *gin.RouterGroup) {
	wardrobe := r.Group("/wardrobe")
	{
		wardrobe.GET("/items", s.ListItems)
		wardrobe.POST("/items", s.CreateItem)
		wardrobe.PUT("/items/:id", s.UpdateItem)
		wardrobe.DELETE("/items/:id", s.DeleteItem)
		wardrobe.POST("/items/upload", s.UploadImage)
	}
}

package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/closetmind/closetmind-backend/internal/auth/middleware"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/response"
	"github.com/closetmind/closetmind-backend/internal/waitlist/biz"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WaitlistService 等待清单服务
type WaitlistService struct {
	waitlistUC *biz.WaitlistUseCase
	logger     *logger.Logger
}

// NewWaitlistService 创建等待清单服务
func NewWaitlistService(uc *biz.WaitlistUseCase, log *logger.Logger) *WaitlistService {
	return &WaitlistService{
		waitlistUC: uc,
		logger:     log,
	}
}

// AddItemRequest 添加条目请求
type AddItemRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
	Status   string `json:"status" binding:"omitempty,oneof=pending processed failed"`
}

// UploadScreenshotRequest 浏览器扩展投递的截图
type UploadScreenshotRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// ItemView 对外暴露的条目信息
type ItemView struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	TryOnURL  string    `json:"try_on_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toItemView(item *biz.WaitItem) ItemView {
	return ItemView{
		ID:        item.ID,
		ImageURL:  item.ImageURL,
		TryOnURL:  item.TryOnURL,
		Status:    item.Status,
		CreatedAt: item.CreatedAt,
	}
}

// AddItem 通过图片 URL 添加条目
func (s *WaitlistService) AddItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := s.waitlistUC.AddItem(c.Request.Context(), userID, req.ImageURL, req.Status)
	if err != nil {
		s.logger.Error("failed to add waitlist item", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "添加条目失败")
		return
	}

	response.Created(c, toItemView(item))
}

// UploadScreenshot 接收 base64 截图并入库
func (s *WaitlistService) UploadScreenshot(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req UploadScreenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := s.waitlistUC.UploadScreenshot(c.Request.Context(), userID, req.ImageBase64)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidImageData) {
			response.BadRequest(c, "invalid base64 image data")
			return
		}

		s.logger.Error("failed to upload screenshot", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "上传截图失败")
		return
	}

	response.Created(c, toItemView(item))
}

// ListItems 列出当前用户的等待清单
func (s *WaitlistService) ListItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	items, err := s.waitlistUC.ListItems(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list waitlist items", zap.Error(err), zap.String("user_id", userID))
		response.InternalError(c, "获取等待清单失败")
		return
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}

	response.Success(c, gin.H{"items": views})
}

// DeleteItem 删除条目
func (s *WaitlistService) DeleteItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	itemID := c.Param("id")

	if err := s.waitlistUC.DeleteItem(c.Request.Context(), userID, itemID); err != nil {
		switch err {
		case biz.ErrItemNotFound:
			response.NotFound(c, "条目不存在")
		case biz.ErrNotOwner:
			response.Error(c, http.StatusForbidden, "无权操作该条目")
		default:
			s.logger.Error("failed to delete waitlist item",
				zap.Error(err),
				zap.String("user_id", userID),
				zap.String("item_id", itemID))
			response.InternalError(c, "操作失败")
		}
		return
	}

	response.Success(c, gin.H{"id": itemID})
}

// RegisterRoutes 注册路由
func (s *WaitlistService) RegisterRoutes(r *gin.RouterGroup) {
	waitlist := r.Group("/waitlist")
	{
		waitlist.GET("/items", s.ListItems)
		waitlist.POST("/items", s.AddItem)
		waitlist.POST("/upload-screenshot", s.UploadScreenshot)
		waitlist.DELETE("/items/:id", s.DeleteItem)
	}
}

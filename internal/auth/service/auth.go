package service

import (
	"net/http"

	"github.com/closetmind/closetmind-backend/internal/auth/biz"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthService 认证服务
type AuthService struct {
	authUC *biz.AuthUseCase
	logger *logger.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(authUC *biz.AuthUseCase, log *logger.Logger) *AuthService {
	return &AuthService{
		authUC: authUC,
		logger: log,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UserView 对外暴露的用户信息
type UserView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func toUserView(u *biz.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// Register 用户注册
// @Summary 用户注册
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} UserView
// @Router /auth/register [post]
func (s *AuthService) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.authUC.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if err == biz.ErrEmailAlreadyExists {
			response.Error(c, http.StatusConflict, "邮箱已被注册")
			return
		}

		s.logger.Error("failed to register user", zap.Error(err), zap.String("email", req.Email))
		response.InternalError(c, "注册失败")
		return
	}

	response.Created(c, gin.H{
		"user":         toUserView(result.User),
		"access_token": result.AccessToken,
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} UserView
// @Router /auth/login [post]
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed",
			zap.Error(err),
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()))

		if err == biz.ErrInvalidCredentials {
			response.Unauthorized(c, "账号或密码错误")
			return
		}

		response.InternalError(c, "登录失败")
		return
	}

	response.Success(c, gin.H{
		"user":         toUserView(result.User),
		"access_token": result.AccessToken,
	})
}

// GoogleLoginRequest Google 登录请求
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLogin Google 登录
// @Summary Google 登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID Token"
// @Success 200 {object} UserView
// @Router /auth/google [post]
func (s *AuthService) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.authUC.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		if err == biz.ErrInvalidGoogleToken {
			response.Unauthorized(c, "Google 凭证无效")
			return
		}

		s.logger.Error("google login failed", zap.Error(err))
		response.InternalError(c, "登录失败")
		return
	}

	response.Success(c, gin.H{
		"user":         toUserView(result.User),
		"access_token": result.AccessToken,
	})
}

// RegisterRoutes 注册路由
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		if loginLimiter != nil {
			auth.POST("/register", loginLimiter, s.Register)
			auth.POST("/login", loginLimiter, s.Login)
			auth.POST("/google", loginLimiter, s.GoogleLogin)
		} else {
			auth.POST("/register", s.Register)
			auth.POST("/login", s.Login)
			auth.POST("/google", s.GoogleLogin)
		}
	}
}

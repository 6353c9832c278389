package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	agentservice "github.com/closetmind/closetmind-backend/internal/agent/service"
	"github.com/closetmind/closetmind-backend/internal/auth"
	"github.com/closetmind/closetmind-backend/internal/auth/middleware"
	authservice "github.com/closetmind/closetmind-backend/internal/auth/service"
	chatservice "github.com/closetmind/closetmind-backend/internal/chat/service"
	"github.com/closetmind/closetmind-backend/internal/conf"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/redis"
	waitlistservice "github.com/closetmind/closetmind-backend/internal/waitlist/service"
	wardrobeservice "github.com/closetmind/closetmind-backend/internal/wardrobe/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	jwtManager *auth.JWTManager,
	redisClient *redis.Client,
	authService *authservice.AuthService,
	wardrobeService *wardrobeservice.WardrobeService,
	waitlistService *waitlistservice.WaitlistService,
	chatService *chatservice.ChatService,
	agentService *agentservice.AgentService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))
	router.Use(middleware.CORS())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API routes
	api := router.Group("/api/v1")

	// 公开端点（登录限流）
	authService.RegisterRoutes(api, middleware.LoginRateLimiter(redisClient, log))

	// 需要认证的端点
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtManager, log))
	protected.Use(middleware.APIRateLimiter(redisClient, log))
	{
		wardrobeService.RegisterRoutes(protected)
		waitlistService.RegisterRoutes(protected)
		chatService.RegisterRoutes(protected)
		agentService.RegisterRoutes(protected, middleware.AgentRateLimiter(redisClient, log))
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

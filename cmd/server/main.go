package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	agentdriver "github.com/closetmind/closetmind-backend/internal/agent/driver"
	"github.com/closetmind/closetmind-backend/internal/agent/general"
	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/outfit"
	"github.com/closetmind/closetmind-backend/internal/agent/pipeline"
	agentrouter "github.com/closetmind/closetmind-backend/internal/agent/router"
	agentservice "github.com/closetmind/closetmind-backend/internal/agent/service"
	"github.com/closetmind/closetmind-backend/internal/agent/session"
	"github.com/closetmind/closetmind-backend/internal/agent/tool"
	"github.com/closetmind/closetmind-backend/internal/auth"
	authbiz "github.com/closetmind/closetmind-backend/internal/auth/biz"
	authdata "github.com/closetmind/closetmind-backend/internal/auth/data"
	authservice "github.com/closetmind/closetmind-backend/internal/auth/service"
	chatbiz "github.com/closetmind/closetmind-backend/internal/chat/biz"
	chatdata "github.com/closetmind/closetmind-backend/internal/chat/data"
	chatservice "github.com/closetmind/closetmind-backend/internal/chat/service"
	"github.com/closetmind/closetmind-backend/internal/conf"
	"github.com/closetmind/closetmind-backend/internal/data"
	"github.com/closetmind/closetmind-backend/internal/email"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/workerpool"
	"github.com/closetmind/closetmind-backend/internal/scraper"
	"github.com/closetmind/closetmind-backend/internal/server"
	waitlistbiz "github.com/closetmind/closetmind-backend/internal/waitlist/biz"
	waitlistdata "github.com/closetmind/closetmind-backend/internal/waitlist/data"
	waitlistservice "github.com/closetmind/closetmind-backend/internal/waitlist/service"
	wardrobebiz "github.com/closetmind/closetmind-backend/internal/wardrobe/biz"
	wardrobedata "github.com/closetmind/closetmind-backend/internal/wardrobe/data"
	wardrobeservice "github.com/closetmind/closetmind-backend/internal/wardrobe/service"
	wsprovider "github.com/closetmind/closetmind-backend/internal/websearch/provider"
	wstypes "github.com/closetmind/closetmind-backend/internal/websearch/types"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize worker pool
	pool, err := workerpool.New(&workerpool.Config{Workers: config.WorkerPool.Workers}, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize worker pool", zap.Error(err))
	}
	defer pool.Release()

	// Initialize auth
	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.TokenTTL)
	googleVerifier := auth.NewGoogleVerifier(config.Auth.GoogleClientID)

	emailService, err := email.NewService(&config.Email)
	if err != nil {
		log.Fatal("failed to initialize email service", zap.Error(err))
	}

	// Initialize repositories
	userRepo := authdata.NewAuthUserRepo(d.DB)
	clothingRepo := wardrobedata.NewClothingRepo(d.DB)
	waitlistRepo := waitlistdata.NewWaitlistRepo(d.DB)
	chatRepo := chatdata.NewChatRepo(d.DB)

	// Initialize use cases
	authUseCase := authbiz.NewAuthUseCase(userRepo, jwtManager, googleVerifier, emailService, pool, log)
	wardrobeUseCase := wardrobebiz.NewWardrobeUseCase(clothingRepo, d.MinIOClient, log)
	var screenshotStore waitlistbiz.ScreenshotStore
	if d.MinIOClient != nil {
		screenshotStore = d.MinIOClient
	}
	waitlistUseCase := waitlistbiz.NewWaitlistUseCase(waitlistRepo, screenshotStore, log)
	chatUseCase := chatbiz.NewChatUseCase(chatRepo)

	// Initialize LLM generator
	generator, err := llm.NewOpenAIGenerator(&config.LLM, log)
	if err != nil {
		log.Fatal("failed to initialize llm generator", zap.Error(err))
	}

	// Initialize search provider
	searchProvider, err := wsprovider.NewFactory().Create(&wstypes.ProviderConfig{
		ID:       wstypes.ProviderSerper,
		Name:     "Serper",
		APIHost:  config.Serper.BaseURL,
		APIKey:   config.Serper.APIKey,
		Location: config.Serper.Location,
		Country:  config.Serper.Country,
		Language: config.Serper.Language,
		Timeout:  int(config.Serper.Timeout / time.Second),
	})
	if err != nil {
		log.Fatal("failed to initialize search provider", zap.Error(err))
	}

	// Initialize agent pipeline
	pageScraper := scraper.New(&scraper.Config{
		Timeout:       config.Scraper.Timeout,
		MaxContentLen: config.Scraper.MaxContentLen,
		UserAgent:     config.Scraper.UserAgent,
	})

	searchTool := tool.NewSearchTool(searchProvider, log)
	scrapeTool := tool.NewScrapeTool(pageScraper, pool, log)
	extractTool := tool.NewExtractTool(generator, log)
	coordinator := pipeline.NewCoordinator(searchTool, scrapeTool, extractTool, generator, log)

	// Initialize agent router and driver
	classifier := agentrouter.NewClassifier(generator, log)
	outfitHandler := outfit.NewHandler(wardrobebiz.NewAgentReader(wardrobeUseCase), generator, log)
	generalHandler := general.NewHandler(generator, log)
	router := agentrouter.New(classifier, coordinator, outfitHandler, generalHandler, log)

	sessions := session.NewStore(d.RedisClient, config.Agent.SessionTTL)
	agentDriver := agentdriver.New(router, sessions, config.Agent.RequestTimeout, log)

	// Initialize services
	authService := authservice.NewAuthService(authUseCase, log)
	wardrobeService := wardrobeservice.NewWardrobeService(wardrobeUseCase, log)
	waitlistService := waitlistservice.NewWaitlistService(waitlistUseCase, log)
	chatService := chatservice.NewChatService(chatUseCase, log)
	agentService := agentservice.NewAgentService(agentDriver, chatUseCase, log)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(
		config,
		log,
		jwtManager,
		d.RedisClient,
		authService,
		wardrobeService,
		waitlistService,
		chatService,
		agentService,
	)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

package data

import (
	"context"
	"fmt"

	chatdata "github.com/closetmind/closetmind-backend/internal/chat/data"
	"github.com/closetmind/closetmind-backend/internal/conf"
	"github.com/closetmind/closetmind-backend/internal/pkg/database"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/minio"
	"github.com/closetmind/closetmind-backend/internal/pkg/redis"
	userdata "github.com/closetmind/closetmind-backend/internal/user/data"
	waitlistdata "github.com/closetmind/closetmind-backend/internal/waitlist/data"
	wardrobedata "github.com/closetmind/closetmind-backend/internal/wardrobe/data"
	"go.uber.org/zap"
)

// Data 聚合所有外部数据资源
type Data struct {
	DB          *database.DB
	RedisClient *redis.Client
	MinIOClient *minio.Client
	Logger      *logger.Logger
}

// NewData 初始化数据层，返回清理函数
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	// Initialize PostgreSQL
	db, err := initDB(config, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize Redis
	redisClient, err := redis.New(&redis.Config{
		Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	// Initialize MinIO（对象存储不可用时降级，不阻止启动）
	var minioClient *minio.Client
	if config.MinIO.Endpoint != "" {
		minioClient, err = initMinIO(config, log)
		if err != nil {
			log.Warn("failed to init minio, image upload disabled", zap.Error(err))
			minioClient = nil
		}
	}

	d := &Data{
		DB:          db,
		RedisClient: redisClient,
		MinIOClient: minioClient,
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}

	return d, cleanup, nil
}

func initDB(config *conf.Config, log *logger.Logger) (*database.DB, error) {
	dbCfg := database.DefaultConfig()
	dbCfg.Host = config.Database.Host
	dbCfg.Port = config.Database.Port
	dbCfg.User = config.Database.User
	dbCfg.Password = config.Database.Password
	dbCfg.DBName = config.Database.DBName
	if config.Database.SSLMode != "" {
		dbCfg.SSLMode = config.Database.SSLMode
	}

	db, err := database.New(dbCfg, log)
	if err != nil {
		return nil, err
	}

	if dbCfg.AutoMigrate {
		err := db.GetDB().AutoMigrate(
			&userdata.UserPO{},
			&wardrobedata.ClothingItemPO{},
			&waitlistdata.WaitListItemPO{},
			&chatdata.ChatPO{},
			&chatdata.MessagePO{},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	return db, nil
}

func initMinIO(config *conf.Config, log *logger.Logger) (*minio.Client, error) {
	client, err := minio.NewClient(&minio.Config{
		Endpoint:        config.MinIO.Endpoint,
		AccessKeyID:     config.MinIO.AccessKey,
		SecretAccessKey: config.MinIO.SecretKey,
		UseSSL:          config.MinIO.UseSSL,
		Bucket:          config.MinIO.Bucket,
		PublicBaseURL:   config.MinIO.PublicBaseURL,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	if err := client.EnsureBucket(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/closetmind/closetmind-backend/internal/auth"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/workerpool"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

// GooglePasswordSentinel Google 登录用户的密码占位值
// 这类账号不允许密码登录
const GooglePasswordSentinel = "google-oauth"

// User 认证相关的用户模型
type User struct {
	ID           string // UUID v7
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepo 用户仓库接口
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// WelcomeSender 注册成功后发送欢迎邮件
type WelcomeSender interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// LoginResult 登录结果
type LoginResult struct {
	User        *User
	AccessToken string
}

// AuthUseCase 认证业务逻辑
type AuthUseCase struct {
	userRepo       UserRepo
	jwtManager     *auth.JWTManager
	googleVerifier *auth.GoogleVerifier
	welcomeSender  WelcomeSender
	pool           *workerpool.Pool
	log            *logger.Logger
}

func NewAuthUseCase(
	userRepo UserRepo,
	jwtManager *auth.JWTManager,
	googleVerifier *auth.GoogleVerifier,
	welcomeSender WelcomeSender,
	pool *workerpool.Pool,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:       userRepo,
		jwtManager:     jwtManager,
		googleVerifier: googleVerifier,
		welcomeSender:  welcomeSender,
		pool:           pool,
		log:            log,
	}
}

// Register 用户注册
func (uc *AuthUseCase) Register(ctx context.Context, name, email, password string) (*LoginResult, error) {
	// 检查邮箱是否已存在
	existingUser, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return nil, ErrEmailAlreadyExists
	}

	// 哈希密码
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 生成 UUID v7 (时间有序)
	userID := uuid.Must(uuid.NewV7()).String()

	now := time.Now()
	user := &User{
		ID:           userID,
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.sendWelcomeAsync(user)

	token, err := uc.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: token}, nil
}

// Login 用户登录
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Google 登录账号不允许密码登录
	if user.PasswordHash == GooglePasswordSentinel {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := uc.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: token}, nil
}

// GoogleLogin Google 登录
// 验证 ID Token，账号不存在时自动创建
func (uc *AuthUseCase) GoogleLogin(ctx context.Context, idToken string) (*LoginResult, error) {
	info, err := uc.googleVerifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		uc.log.Warn("google token verification failed", zap.Error(err))
		return nil, ErrInvalidGoogleToken
	}

	user, err := uc.userRepo.GetByEmail(ctx, info.Email)
	if err != nil || user == nil {
		// 自动创建账号
		now := time.Now()
		user = &User{
			ID:           uuid.Must(uuid.NewV7()).String(),
			Name:         info.Name,
			Email:        info.Email,
			PasswordHash: GooglePasswordSentinel,
			AvatarURL:    info.Picture,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create google user: %w", err)
		}
		uc.sendWelcomeAsync(user)
	}

	token, err := uc.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: token}, nil
}

// GetUser 查询用户
func (uc *AuthUseCase) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// sendWelcomeAsync 异步发送欢迎邮件，失败只记录日志
func (uc *AuthUseCase) sendWelcomeAsync(user *User) {
	if uc.welcomeSender == nil || uc.pool == nil {
		return
	}

	email, name := user.Email, user.Name
	err := uc.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := uc.welcomeSender.SendWelcome(ctx, email, name); err != nil {
			uc.log.Warn("failed to send welcome email",
				zap.String("email", email),
				zap.Error(err))
		}
	})
	if err != nil {
		uc.log.Warn("failed to submit welcome email task", zap.Error(err))
	}
}

package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/closetmind/closetmind-backend/internal/auth"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// fakeUserRepo 内存用户仓库
type fakeUserRepo struct {
	users map[string]*User // key: email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

// fakeWelcomeSender 记录欢迎邮件发送
type fakeWelcomeSender struct {
	sent chan string
}

func (f *fakeWelcomeSender) SendWelcome(ctx context.Context, email, name string) error {
	f.sent <- email
	return nil
}

func newTestUseCase(t *testing.T, repo UserRepo, sender WelcomeSender) *AuthUseCase {
	t.Helper()

	var pool *workerpool.Pool
	if sender != nil {
		var err error
		pool, err = workerpool.New(&workerpool.Config{Workers: 2}, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(pool.Release)
	}

	jwtManager := auth.NewJWTManager("test-secret", "test", time.Hour)
	return NewAuthUseCase(repo, jwtManager, nil, sender, pool, newTestLogger())
}

func TestAuthUseCase_Register(t *testing.T) {
	repo := newFakeUserRepo()
	sender := &fakeWelcomeSender{sent: make(chan string, 1)}
	uc := newTestUseCase(t, repo, sender)

	result, err := uc.Register(context.Background(), "Alice", "alice@example.com", "supersecret")
	require.NoError(t, err)

	assert.NotEmpty(t, result.User.ID)
	assert.Equal(t, "Alice", result.User.Name)
	assert.NotEmpty(t, result.AccessToken)
	// 密码必须哈希存储
	assert.NotEqual(t, "supersecret", result.User.PasswordHash)

	select {
	case email := <-sender.sent:
		assert.Equal(t, "alice@example.com", email)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}
}

func TestAuthUseCase_Register_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUseCase(t, repo, nil)

	_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "supersecret")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "Alice Again", "alice@example.com", "othersecret")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthUseCase_Login(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUseCase(t, repo, nil)

	_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "supersecret")
	require.NoError(t, err)

	result, err := uc.Login(context.Background(), "alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "alice@example.com", result.User.Email)
}

func TestAuthUseCase_Login_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUseCase(t, repo, nil)

	_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "supersecret")
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUseCase_Login_UnknownEmail(t *testing.T) {
	uc := newTestUseCase(t, newFakeUserRepo(), nil)

	_, err := uc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUseCase_Login_GoogleAccountBlocked(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUseCase(t, repo, nil)

	// Google 登录创建的账号密码为占位值
	repo.users["bob@example.com"] = &User{
		ID:           "user-bob",
		Name:         "Bob",
		Email:        "bob@example.com",
		PasswordHash: GooglePasswordSentinel,
	}

	_, err := uc.Login(context.Background(), "bob@example.com", GooglePasswordSentinel)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUseCase_GetUser(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUseCase(t, repo, nil)

	registered, err := uc.Register(context.Background(), "Alice", "alice@example.com", "supersecret")
	require.NoError(t, err)

	user, err := uc.GetUser(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = uc.GetUser(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

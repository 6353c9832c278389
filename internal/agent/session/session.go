package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/closetmind/closetmind-backend/internal/pkg/redis"
)

// maxHistory 会话内保留的最近消息数
const maxHistory = 20

// Message 会话内的一条消息
type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Backend 会话存储后端，*redis.Client 满足该接口
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store 基于 Redis 的会话状态存储
// 按用户身份隔离，不同身份之间不共享任何状态
type Store struct {
	client Backend
	ttl    time.Duration
}

// NewStore 创建会话存储
func NewStore(client Backend, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("agent:session:%s", userID)
}

// History 读取用户的会话历史
// key 不存在时返回空历史
func (s *Store) History(ctx context.Context, userID string) ([]Message, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		// 损坏的会话按空会话处理
		return nil, nil
	}
	return messages, nil
}

// Append 追加一组消息并刷新 TTL
func (s *Store) Append(ctx context.Context, userID string, msgs ...Message) error {
	history, err := s.History(ctx, userID)
	if err != nil {
		return err
	}

	history = append(history, msgs...)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return s.client.Set(ctx, sessionKey(userID), string(raw), s.ttl)
}

// Clear 清空用户会话
func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionKey(userID))
}

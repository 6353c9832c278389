package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
)

// TaskResult 任务结果
type TaskResult struct {
	Data  interface{}
	Error error
}

// Config Worker Pool 配置
type Config struct {
	Workers int `mapstructure:"workers"` // worker 数量
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers: 32,
	}
}

// Statistics 统计信息
type Statistics struct {
	mu sync.RWMutex

	Submitted int64 // 已提交
	Completed int64 // 已完成
	Failed    int64 // 失败
	Running   int64 // 运行中
}

func (s *Statistics) incSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Submitted++
}

func (s *Statistics) incRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Running++
}

func (s *Statistics) decRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Running--
}

func (s *Statistics) incCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completed++
}

func (s *Statistics) Get() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Statistics{
		Submitted: s.Submitted,
		Completed: s.Completed,
		Failed:    s.Failed,
		Running:   s.Running,
	}
}

// Pool 固定大小的 Worker Pool
// 用于并发抓取和后台异步任务
type Pool struct {
	pool   *ants.Pool
	config *Config
	stats  *Statistics

	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}

	antsPool, err := ants.NewPool(config.Workers,
		ants.WithPanicHandler(func(err interface{}) {
			logger.Error("worker panic", zap.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		pool:   antsPool,
		config: config,
		stats:  &Statistics{},
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}, nil
}

// Submit 提交任务
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	default:
	}

	p.stats.incSubmitted()
	return p.pool.Submit(func() {
		p.stats.incRunning()
		defer func() {
			p.stats.decRunning()
			p.stats.incCompleted()
		}()
		task()
	})
}

// SubmitWithResult 提交任务并获取结果
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) <-chan TaskResult {
	resultCh := make(chan TaskResult, 1)

	err := p.Submit(func() {
		result, taskErr := task()
		resultCh <- TaskResult{Data: result, Error: taskErr}
		close(resultCh)
	})
	if err != nil {
		resultCh <- TaskResult{Error: err}
		close(resultCh)
	}

	return resultCh
}

// Stats 获取统计信息
func (p *Pool) Stats() Statistics {
	return p.stats.Get()
}

// Running 当前运行中的 worker 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release 关闭 Worker Pool
func (p *Pool) Release() {
	p.cancel()
	p.pool.Release()

	if p.logger != nil {
		p.logger.Info("worker pool released")
	}
}

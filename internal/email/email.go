package email

import (
	"context"
	"fmt"
	"time"

	"github.com/closetmind/closetmind-backend/internal/conf"
	"github.com/wneessen/go-mail"
)

// Service SMTP 邮件服务
type Service struct {
	config *conf.EmailConfig
}

// NewService 创建邮件服务
func NewService(cfg *conf.EmailConfig) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("email config is required")
	}
	return &Service{config: cfg}, nil
}

// Enabled 是否启用邮件发送
func (s *Service) Enabled() bool {
	return s.config.Enabled && s.config.Host != ""
}

// SendWelcome 发送注册欢迎邮件
func (s *Service) SendWelcome(ctx context.Context, to, name string) error {
	if !s.Enabled() {
		return nil
	}

	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to ClosetMind! Your personal AI stylist is ready.\n\n"+
			"Add a few items to your wardrobe and ask for an outfit, or search the web for pieces you are missing.\n\n"+
			"The ClosetMind Team\n", name)

	return s.send(ctx, to, "Welcome to ClosetMind", body)
}

// send 构建并发送纯文本邮件
func (s *Service) send(ctx context.Context, to, subject, body string) error {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(10 * time.Second),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	defer client.Close()

	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.SetDate()
	msg.SetMessageID()

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

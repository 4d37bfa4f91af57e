package service

import (
	"context"

	"github.com/halit2001/post-platform-backend/internal/pkg"
	redisrepo "github.com/halit2001/post-platform-backend/internal/repository/redis"

	goredis "github.com/redis/go-redis/v9"
)

// EmailService 发验证码邮件，验证码落 Redis 带 TTL
type EmailService struct {
	cfg       pkg.SMTPConfig
	emailRepo *redisrepo.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig, rdb *goredis.Client) *EmailService {
	return &EmailService{
		cfg:       cfg,
		emailRepo: &redisrepo.EmailRepository{RDB: rdb},
	}
}

// SendCode scope 取 register/reset，验证码随机 6 位数字
func (s *EmailService) SendCode(ctx context.Context, scope, email string) error {
	if email == "" {
		return pkg.InvalidArgumentf("email required")
	}
	if scope != ScopeRegister && scope != ScopeReset {
		return pkg.InvalidArgumentf("unknown scope %s", scope)
	}
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err := s.emailRepo.SaveCode(ctx, scope, email, code); err != nil {
		return err
	}
	subject := "您的验证码"
	return pkg.SendEmail(s.cfg, email, subject, pkg.EmailCodeHTML(subject, code, redisrepo.DefaultEmailCodeTTL))
}

package service

import (
	"context"
	"log"
	"time"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"

	"gorm.io/gorm"
)

// AuditSender 把审计记录投出去，投递失败交给下一轮重试
type AuditSender func(ctx context.Context, a *model.ModerationAudit) error

// AuditRelayer 审计投递器：审批事务里落的 moderation_audit 行
// 由它周期性捞出 pending 的批量外发
type AuditRelayer struct {
	repo      *mysql.AuditRepository
	batchSize int
	interval  time.Duration
	sender    AuditSender
}

func NewAuditRelayer(db *gorm.DB, sender AuditSender) *AuditRelayer {
	return &AuditRelayer{
		repo:      &mysql.AuditRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func (r *AuditRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *AuditRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		log.Printf("audit query err: %v", err)
		return
	}
	for i := range rows {
		a := rows[i]
		if err = r.sender(ctx, &a); err != nil {
			_ = r.repo.MarkFailed(ctx, a.ID)
			continue
		}
		_ = r.repo.MarkSent(ctx, a.ID)
	}
}

// KafkaAuditSender 按社区 id 做 key，同一社区的审计事件保序
func KafkaAuditSender(p *pkg.KafkaProducer) AuditSender {
	return func(ctx context.Context, a *model.ModerationAudit) error {
		return p.Send(ctx, pkg.MakeKeyFromID(a.CommunityID), []byte(a.Payload))
	}
}

// LogAuditSender 默认 sender：Kafka 未配置时先打印
func LogAuditSender(ctx context.Context, a *model.ModerationAudit) error {
	log.Printf("AUDIT SEND kind=%s action=%s community=%d target=%d actor=%d", a.Kind, a.Action, a.CommunityID, a.TargetID, a.ActorID)
	return nil
}

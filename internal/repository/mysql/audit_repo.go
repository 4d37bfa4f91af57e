package mysql

import (
	"context"

	"github.com/halit2001/post-platform-backend/internal/model"

	"gorm.io/gorm"
)

type AuditRepository struct {
	DB *gorm.DB
}

// Create 随审批事务一起写入：传入事务句柄时在同一事务内落库
func (r *AuditRepository) Create(a *model.ModerationAudit) error {
	return r.DB.Create(a).Error
}

// ListPending 待投递审计记录，按写入顺序取一批
func (r *AuditRepository) ListPending(ctx context.Context, batchSize int) ([]model.ModerationAudit, error) {
	var list []model.ModerationAudit
	if err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkFailed 投递失败，记一次重试
func (r *AuditRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ModerationAudit{}).Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *AuditRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ModerationAudit{}).Where("id = ?", id).
		Update("status", 1).Error
}

// ListByCommunity 审计追溯查询
func (r *AuditRepository) ListByCommunity(communityID uint64, limit int) ([]model.ModerationAudit, error) {
	var list []model.ModerationAudit
	err := r.DB.Where("community_id = ?", communityID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

package mysql

import (
	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

// FindByID 不过滤状态：软删除的行仍可按 id 取到
func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, id).Error
	return &post, err
}

func (r *PostRepository) ListByCommunity(communityID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.
		Where("community_id = ? AND status = ?", communityID, model.PostActive).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateInPlace 公开社区的编辑：原行改内容，只动 title/content/updated_at
func (r *PostRepository) UpdateInPlace(id uint64, fields map[string]any) error {
	return r.DB.Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// Supersede 写时复制：插入修订行并把旧行置 inactive，同一事务内完成。
// 状态条件没命中说明旧行已被并发编辑替换，回滚修订行，修订链保持单链不分叉。
func (r *PostRepository) Supersede(oldID uint64, revision *model.Post) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(revision).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Post{}).
			Where("id = ? AND status = ?", oldID, model.PostActive).
			Update("status", model.PostInactive)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.Conflictf("post %d is no longer active", oldID)
		}
		return nil
	})
}

// SoftDelete 清空正文并置 deleted，行保留
func (r *PostRepository) SoftDelete(id uint64) error {
	return r.DB.Model(&model.Post{}).Where("id = ?", id).Updates(map[string]any{
		"title":   "",
		"content": "",
		"status":  model.PostDeleted,
	}).Error
}

package mysql

import (
	"context"

	"github.com/halit2001/post-platform-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(c *model.Comment) error {
	return r.DB.Create(c).Error
}

func (r *CommentRepository) FindByID(id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *CommentRepository) ListChildren(parentID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.Where("parent_id = ?", parentID).Order("id ASC").Find(&list).Error
	return list, err
}

// ListParentsByPost sort: new(默认) / old / top
func (r *CommentRepository) ListParentsByPost(postID uint64, sort string) ([]model.Comment, error) {
	q := r.DB.Where("post_id = ? AND parent_id IS NULL", postID)
	switch sort {
	case "old":
		q = q.Order("created_at ASC, id ASC")
	case "top":
		q = q.Order("like_count DESC, id ASC")
	default:
		q = q.Order("created_at DESC, id DESC")
	}
	var list []model.Comment
	err := q.Find(&list).Error
	return list, err
}

// IncrementCounter 锁住目标评论行后读-改-写，事务结束释放，返回新计数。
// column 仅限 like_count / unlike_count。sqlite 写入本身串行，无行锁语法，跳过锁子句。
func (r *CommentRepository) IncrementCounter(ctx context.Context, commentID, postID uint64, column string) (int, error) {
	var n int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ? AND post_id = ?", commentID, postID)
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var c model.Comment
		if err := q.First(&c).Error; err != nil {
			return err
		}
		switch column {
		case "like_count":
			n = c.LikeCount + 1
		case "unlike_count":
			n = c.UnlikeCount + 1
		}
		return tx.Model(&model.Comment{}).
			Where("id = ?", c.ID).
			UpdateColumn(column, n).Error
	})
	return n, err
}

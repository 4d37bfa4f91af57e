package model

import "time"

type CommentStatus string

const (
	CommentActive  CommentStatus = "active"
	CommentDeleted CommentStatus = "deleted"
)

// Comment ParentID 构成自引用的评论树；父子只通过外键关联，建在已有评论之上，
// 因此不会成环。like/unlike 是印象计数，同一用户可重复累加。
type Comment struct {
	ID          uint64        `gorm:"primaryKey"`
	PostID      uint64        `gorm:"not null;index"`
	AuthorID    uint64        `gorm:"not null;index"`
	ParentID    *uint64       `gorm:"index"`
	Content     string        `gorm:"type:text"`
	Status      CommentStatus `gorm:"size:16;not null;default:'active'"`
	LikeCount   int           `gorm:"not null;default:0"`
	UnlikeCount int           `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

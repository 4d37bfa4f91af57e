package model

import "time"

type PostStatus string

const (
	PostActive   PostStatus = "active"
	PostPending  PostStatus = "pending"
	PostInactive PostStatus = "inactive"
	PostDeleted  PostStatus = "deleted"
)

// Post 私有社区的编辑走写时复制：新行的 OriginalPostID 指向被替换的旧行，
// 旧行置为 inactive。链只向前，不回指，不成环。
// deleted 是终态，行保留以保证评论/点赞的引用完整。
type Post struct {
	ID             uint64     `gorm:"primaryKey"`
	CommunityID    uint64     `gorm:"not null;index:idx_comm_created,priority:1"`
	CreatorID      uint64     `gorm:"not null;index"`
	Title          string     `gorm:"size:200"`
	Content        string     `gorm:"type:text"`
	Status         PostStatus `gorm:"size:16;not null;default:'active'"`
	LikeCount      int64      `gorm:"not null;default:0"`
	OriginalPostID *uint64    `gorm:"index"`
	CreatedAt      time.Time  `gorm:"index:idx_comm_created,priority:2,sort:desc"`
	UpdatedAt      time.Time
}

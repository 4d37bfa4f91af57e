package model

import (
	"strings"
	"time"
)

type AccessLevel string

const (
	AccessPublic  AccessLevel = "public"
	AccessPrivate AccessLevel = "private"
)

// ParseAccessLevel 非法输入返回 false，由调用方映射为参数错误
func ParseAccessLevel(s string) (AccessLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return AccessPublic, true
	case "private":
		return AccessPrivate, true
	}
	return "", false
}

type Community struct {
	ID          uint64      `gorm:"primaryKey"`
	Name        string      `gorm:"uniqueIndex;size:64;not null"`
	Description string      `gorm:"type:text"`
	Topics      string      `gorm:"size:255"` // 逗号分隔
	AccessLevel AccessLevel `gorm:"size:16;not null;default:'public'"`
	CreatorID   uint64      `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Community) IsPrivate() bool {
	return c.AccessLevel == AccessPrivate
}

func (c *Community) TopicList() []string {
	if c.Topics == "" {
		return nil
	}
	return strings.Split(c.Topics, ",")
}

// 成员角色
const (
	RoleMember    = 0
	RoleModerator = 1
)

// CommunityMember 唯一索引保证同一用户在同一社区至多出现一次
type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Role        int    `gorm:"not null;default:0"` // 0=member, 1=moderator
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

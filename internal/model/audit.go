package model

import "time"

// 审计动作与对象类型
const (
	AuditApproved = "approved"
	AuditRejected = "rejected"

	AuditKindJoinRequest = "join_request"
	AuditKindPost        = "post"
)

// ModerationAudit 审批记录表，同时充当投递 outbox：
// 记录随审批事务落库，Status 标记异步投递进度，行本身永久保留。
type ModerationAudit struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index"`
	TargetID    uint64 `gorm:"not null"` // 入会申请为目标用户，帖子审批为帖子创建者
	ActorID     uint64 `gorm:"not null"`
	Kind        string `gorm:"size:16;not null"` // join_request / post
	Action      string `gorm:"size:16;not null"` // approved / rejected
	Payload     string `gorm:"type:json;not null"`
	Status      int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ModerationAudit) TableName() string { return "moderation_audit" }

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/halit2001/post-platform-backend/internal/pkg"

	"github.com/redis/go-redis/v9"
)

// 两条队列各占独立的键空间：入会申请按 user_id 寻址，待审帖子按令牌寻址。
// 记录放在 hash 里（field=身份键），HSetNX/HDel 天然原子，
// 同一队列项不会被两个并发审批各消费一次；快照顺序由追加时的 seq 还原。
const (
	JoinReqKeyPrefix = "join:req:community"
	JoinSeqKeyPrefix = "join:seq:community"
	PostReqKeyPrefix = "post:req:community"
	PostSeqKeyPrefix = "post:seq:community"

	pendingPostTokenBytes = 16
)

var (
	ErrJoinRequestExists = errors.New("join request already exists")
)

// JoinRequest 入会申请，队列专属记录，入库前不产生任何持久化痕迹
type JoinRequest struct {
	CommunityID uint64    `json:"community_id"`
	UserID      uint64    `json:"user_id"`
	Username    string    `json:"username"`
	RequestedAt time.Time `json:"requested_at"`
	Seq         int64     `json:"seq"`
}

// PendingPost 待审帖子。Token 是队列内的寻址键，批准入库时才分配帖子 id
type PendingPost struct {
	Token           string    `json:"token"`
	CommunityID     uint64    `json:"community_id"`
	CreatorID       uint64    `json:"creator_id"`
	CreatorUsername string    `json:"creator_username"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	RequestedAt     time.Time `json:"requested_at"`
	Status          string    `json:"status"` // 恒为 pending
	Seq             int64     `json:"seq"`
}

type ModerationQueueRepository struct {
	RDB *redis.Client
}

func (r *ModerationQueueRepository) joinKey(communityID uint64) string {
	return fmt.Sprintf("%s:%d", JoinReqKeyPrefix, communityID)
}

func (r *ModerationQueueRepository) joinSeqKey(communityID uint64) string {
	return fmt.Sprintf("%s:%d", JoinSeqKeyPrefix, communityID)
}

func (r *ModerationQueueRepository) postKey(communityID uint64) string {
	return fmt.Sprintf("%s:%d", PostReqKeyPrefix, communityID)
}

func (r *ModerationQueueRepository) postSeqKey(communityID uint64) string {
	return fmt.Sprintf("%s:%d", PostSeqKeyPrefix, communityID)
}

/*
入会申请队列
*/

// AppendJoinRequest 同一 (community, user) 只允许一条在途申请，
// HSetNX 命中已有 field 时返回 ErrJoinRequestExists
func (r *ModerationQueueRepository) AppendJoinRequest(ctx context.Context, communityID, userID uint64, username string) (*JoinRequest, error) {
	seq, err := r.RDB.Incr(ctx, r.joinSeqKey(communityID)).Result()
	if err != nil {
		return nil, err
	}
	rec := JoinRequest{
		CommunityID: communityID,
		UserID:      userID,
		Username:    username,
		RequestedAt: time.Now(),
		Seq:         seq,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	ok, err := r.RDB.HSetNX(ctx, r.joinKey(communityID), strconv.FormatUint(userID, 10), raw).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrJoinRequestExists
	}
	return &rec, nil
}

// ListJoinRequests 有序快照；队列不存在时返回空序列
func (r *ModerationQueueRepository) ListJoinRequests(ctx context.Context, communityID uint64) ([]JoinRequest, error) {
	raw, err := r.RDB.HGetAll(ctx, r.joinKey(communityID)).Result()
	if err != nil {
		return nil, err
	}
	list := make([]JoinRequest, 0, len(raw))
	for _, v := range raw {
		var rec JoinRequest
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	return list, nil
}

// GetJoinRequest 不存在时返回 (nil, nil)
func (r *ModerationQueueRepository) GetJoinRequest(ctx context.Context, communityID, userID uint64) (*JoinRequest, error) {
	raw, err := r.RDB.HGet(ctx, r.joinKey(communityID), strconv.FormatUint(userID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec JoinRequest
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RemoveJoinRequest 按身份键原子删除，返回 0 或 1；
// 并发审批下只有一个调用方拿到 1，另一方按未找到处理
func (r *ModerationQueueRepository) RemoveJoinRequest(ctx context.Context, communityID, userID uint64) (int64, error) {
	return r.RDB.HDel(ctx, r.joinKey(communityID), strconv.FormatUint(userID, 10)).Result()
}

/*
待审帖子队列
*/

// AppendPendingPost 生成队列令牌并入队
func (r *ModerationQueueRepository) AppendPendingPost(ctx context.Context, communityID, creatorID uint64, creatorUsername, title, content string) (*PendingPost, error) {
	token, err := pkg.RandToken(pendingPostTokenBytes)
	if err != nil {
		return nil, err
	}
	seq, err := r.RDB.Incr(ctx, r.postSeqKey(communityID)).Result()
	if err != nil {
		return nil, err
	}
	rec := PendingPost{
		Token:           token,
		CommunityID:     communityID,
		CreatorID:       creatorID,
		CreatorUsername: creatorUsername,
		Title:           title,
		Content:         content,
		RequestedAt:     time.Now(),
		Status:          "pending",
		Seq:             seq,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := r.RDB.HSet(ctx, r.postKey(communityID), token, raw).Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ModerationQueueRepository) ListPendingPosts(ctx context.Context, communityID uint64) ([]PendingPost, error) {
	raw, err := r.RDB.HGetAll(ctx, r.postKey(communityID)).Result()
	if err != nil {
		return nil, err
	}
	list := make([]PendingPost, 0, len(raw))
	for _, v := range raw {
		var rec PendingPost
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	return list, nil
}

// GetPendingPost 不存在时返回 (nil, nil)
func (r *ModerationQueueRepository) GetPendingPost(ctx context.Context, communityID uint64, token string) (*PendingPost, error) {
	raw, err := r.RDB.HGet(ctx, r.postKey(communityID), token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec PendingPost
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ModerationQueueRepository) RemovePendingPost(ctx context.Context, communityID uint64, token string) (int64, error) {
	return r.RDB.HDel(ctx, r.postKey(communityID), token).Result()
}

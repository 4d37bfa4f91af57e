package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"
	redisrepo "github.com/halit2001/post-platform-backend/internal/repository/redis"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ModerationService 入会申请与帖子审批。
// 批准/驳回的不变式：队列删除放在持久化事务闭包内执行，
// 任一步失败则整个事务回滚，不会出现“成员已加入但申请还挂着”或反过来的半截状态。
// HDel 按身份键删除且原子，同一队列项至多被消费一次。
type ModerationService struct {
	db            *gorm.DB
	userRepo      *mysql.UserRepository
	communityRepo *mysql.CommunityRepository
	memberRepo    *mysql.CommunityMemberRepository
	postRepo      *mysql.PostRepository
	queue         *redisrepo.ModerationQueueRepository
	community     *CommunityService
}

func NewModerationService(db *gorm.DB, rdb *goredis.Client) *ModerationService {
	return &ModerationService{
		db:            db,
		userRepo:      &mysql.UserRepository{DB: db},
		communityRepo: &mysql.CommunityRepository{DB: db},
		memberRepo:    &mysql.CommunityMemberRepository{DB: db},
		postRepo:      &mysql.PostRepository{DB: db},
		queue:         &redisrepo.ModerationQueueRepository{RDB: rdb},
		community:     NewCommunityService(db),
	}
}

// RequestToJoin 公开社区直接入会（绕过队列）；私有社区排队，
// 同一 (community, user) 的重复申请算冲突。
// 返回值：joined=true 表示已直接成为成员，此时 req 为 nil。
func (s *ModerationService) RequestToJoin(ctx context.Context, communityID, userID uint64) (joined bool, req *redisrepo.JoinRequest, err error) {
	community, err := s.findCommunity(communityID)
	if err != nil {
		return false, nil, err
	}
	user, err := s.findUser(userID)
	if err != nil {
		return false, nil, err
	}

	if !community.IsPrivate() {
		added, err := s.memberRepo.Add(&model.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
			Role:        model.RoleMember,
		})
		if err != nil {
			return false, nil, err
		}
		if !added {
			return false, nil, pkg.Conflictf("user %d is already a member of community %d", userID, communityID)
		}
		return true, nil, nil
	}

	isMember, err := s.community.IsMember(community.Name, userID)
	if err != nil {
		return false, nil, err
	}
	if isMember {
		return false, nil, pkg.Conflictf("user %d is already a member of community %d", userID, communityID)
	}

	rec, err := s.queue.AppendJoinRequest(ctx, communityID, userID, user.Username)
	if errors.Is(err, redisrepo.ErrJoinRequestExists) {
		return false, nil, pkg.Conflictf("join request already exists for user %d in community %d", userID, communityID)
	}
	if err != nil {
		return false, nil, err
	}
	return false, rec, nil
}

// ListPendingJoinRequests 创建者或 moderator 才能查看
func (s *ModerationService) ListPendingJoinRequests(ctx context.Context, communityID uint64, username string) ([]redisrepo.JoinRequest, error) {
	if _, err := s.findCommunity(communityID); err != nil {
		return nil, err
	}
	if _, err := s.findUserByName(username); err != nil {
		return nil, err
	}
	if err := s.requireModeration(communityID, username); err != nil {
		return nil, err
	}
	return s.queue.ListJoinRequests(ctx, communityID)
}

// ApproveJoinRequest 批准入会：同一事务内加成员、落审计、删队列项
func (s *ModerationService) ApproveJoinRequest(ctx context.Context, communityID, targetUserID uint64, approverUsername string) (*model.ModerationAudit, error) {
	approver, target, err := s.checkJoinDecision(ctx, communityID, targetUserID, approverUsername)
	if err != nil {
		return nil, err
	}

	audit := s.newAudit(communityID, target.ID, approver.ID, model.AuditKindJoinRequest, model.AuditApproved)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		added, err := (&mysql.CommunityMemberRepository{DB: tx}).Add(&model.CommunityMember{
			CommunityID: communityID,
			UserID:      target.ID,
			Role:        model.RoleMember,
		})
		if err != nil {
			return err
		}
		if !added {
			return pkg.Conflictf("user %d is already a member of community %d", target.ID, communityID)
		}
		if err := (&mysql.AuditRepository{DB: tx}).Create(audit); err != nil {
			return err
		}
		removed, err := s.queue.RemoveJoinRequest(ctx, communityID, target.ID)
		if err != nil {
			return err
		}
		if removed == 0 {
			// 并发审批已消费该申请，回滚本次成员写入
			return pkg.NotFoundf("join request for user %d in community %d", target.ID, communityID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

// RejectJoinRequest 驳回入会：只删队列项并落审计，不动成员表
func (s *ModerationService) RejectJoinRequest(ctx context.Context, communityID, targetUserID uint64, rejecterUsername string) (*model.ModerationAudit, error) {
	rejecter, target, err := s.checkJoinDecision(ctx, communityID, targetUserID, rejecterUsername)
	if err != nil {
		return nil, err
	}

	audit := s.newAudit(communityID, target.ID, rejecter.ID, model.AuditKindJoinRequest, model.AuditRejected)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := (&mysql.AuditRepository{DB: tx}).Create(audit); err != nil {
			return err
		}
		removed, err := s.queue.RemoveJoinRequest(ctx, communityID, target.ID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return pkg.NotFoundf("join request for user %d in community %d", target.ID, communityID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

// SubmitPost 发帖路由：公开社区或创建者/moderator 直接建 active 帖子；
// 私有社区的普通成员进待审队列；毫无关系者拒绝。
func (s *ModerationService) SubmitPost(ctx context.Context, communityID uint64, username, title, content string) (*model.Post, *redisrepo.PendingPost, error) {
	if title == "" {
		return nil, nil, pkg.InvalidArgumentf("title required")
	}
	community, err := s.findCommunity(communityID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.findUserByName(username)
	if err != nil {
		return nil, nil, err
	}

	direct := !community.IsPrivate()
	if !direct {
		isCreator, err := s.community.IsCreator(communityID, username)
		if err != nil {
			return nil, nil, err
		}
		isModerator, err := s.community.IsModerator(communityID, username)
		if err != nil {
			return nil, nil, err
		}
		direct = isCreator || isModerator
	}

	if direct {
		post := &model.Post{
			CommunityID: communityID,
			CreatorID:   user.ID,
			Title:       title,
			Content:     content,
			Status:      model.PostActive,
		}
		if err := s.postRepo.Create(post); err != nil {
			return nil, nil, err
		}
		return post, nil, nil
	}

	isMember, err := s.community.IsMember(community.Name, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if !isMember {
		return nil, nil, pkg.Unauthorizedf("user %s may not post in community %d", username, communityID)
	}

	pending, err := s.queue.AppendPendingPost(ctx, communityID, user.ID, user.Username, title, content)
	if err != nil {
		return nil, nil, err
	}
	return nil, pending, nil
}

// ListPendingPosts 创建者或 moderator 才能查看
func (s *ModerationService) ListPendingPosts(ctx context.Context, communityID uint64, username string) ([]redisrepo.PendingPost, error) {
	if _, err := s.findCommunity(communityID); err != nil {
		return nil, err
	}
	if _, err := s.findUserByName(username); err != nil {
		return nil, err
	}
	if err := s.requireModeration(communityID, username); err != nil {
		return nil, err
	}
	return s.queue.ListPendingPosts(ctx, communityID)
}

// ApprovePostRequest 批准发帖：入库为 active 帖子（CreatedAt 取排队时间，
// id 此刻才分配），随事务落审计并删队列项。
func (s *ModerationService) ApprovePostRequest(ctx context.Context, communityID uint64, token, approverUsername string) (*model.Post, error) {
	approver, rec, err := s.checkPostDecision(ctx, communityID, token, approverUsername)
	if err != nil {
		return nil, err
	}
	creator, err := s.findUser(rec.CreatorID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		CommunityID: communityID,
		CreatorID:   creator.ID,
		Title:       rec.Title,
		Content:     rec.Content,
		Status:      model.PostActive,
		CreatedAt:   rec.RequestedAt,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := (&mysql.PostRepository{DB: tx}).Create(post); err != nil {
			return err
		}
		audit := s.newAudit(communityID, creator.ID, approver.ID, model.AuditKindPost, model.AuditApproved)
		if err := (&mysql.AuditRepository{DB: tx}).Create(audit); err != nil {
			return err
		}
		removed, err := s.queue.RemovePendingPost(ctx, communityID, token)
		if err != nil {
			return err
		}
		if removed == 0 {
			return pkg.NotFoundf("pending post %s in community %d", token, communityID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// RejectPostRequest 驳回发帖：删队列项并落审计，不产生任何持久化帖子
func (s *ModerationService) RejectPostRequest(ctx context.Context, communityID uint64, token, rejecterUsername string) error {
	rejecter, rec, err := s.checkPostDecision(ctx, communityID, token, rejecterUsername)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		audit := s.newAudit(communityID, rec.CreatorID, rejecter.ID, model.AuditKindPost, model.AuditRejected)
		if err := (&mysql.AuditRepository{DB: tx}).Create(audit); err != nil {
			return err
		}
		removed, err := s.queue.RemovePendingPost(ctx, communityID, token)
		if err != nil {
			return err
		}
		if removed == 0 {
			return pkg.NotFoundf("pending post %s in community %d", token, communityID)
		}
		return nil
	})
}

// checkJoinDecision 审批前置检查：实体存在、权限、目标未入会、申请在队
func (s *ModerationService) checkJoinDecision(ctx context.Context, communityID, targetUserID uint64, actorUsername string) (actor, target *model.User, err error) {
	if actor, err = s.findUserByName(actorUsername); err != nil {
		return nil, nil, err
	}
	if target, err = s.findUser(targetUserID); err != nil {
		return nil, nil, err
	}
	if _, err = s.findCommunity(communityID); err != nil {
		return nil, nil, err
	}
	if err = s.requireModeration(communityID, actorUsername); err != nil {
		return nil, nil, err
	}
	isMember, err := s.memberRepo.IsMember(communityID, targetUserID)
	if err != nil {
		return nil, nil, err
	}
	if isMember {
		return nil, nil, pkg.Conflictf("user %d is already a member of community %d", targetUserID, communityID)
	}
	rec, err := s.queue.GetJoinRequest(ctx, communityID, targetUserID)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, pkg.NotFoundf("join request for user %d in community %d", targetUserID, communityID)
	}
	return actor, target, nil
}

// checkPostDecision 帖子审批前置检查
func (s *ModerationService) checkPostDecision(ctx context.Context, communityID uint64, token, actorUsername string) (*model.User, *redisrepo.PendingPost, error) {
	if _, err := s.findCommunity(communityID); err != nil {
		return nil, nil, err
	}
	actor, err := s.findUserByName(actorUsername)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requireModeration(communityID, actorUsername); err != nil {
		return nil, nil, err
	}
	rec, err := s.queue.GetPendingPost(ctx, communityID, token)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, pkg.NotFoundf("pending post %s in community %d", token, communityID)
	}
	return actor, rec, nil
}

func (s *ModerationService) requireModeration(communityID uint64, username string) error {
	return s.community.requireModeration(communityID, username)
}

func (s *ModerationService) newAudit(communityID, targetID, actorID uint64, kind, action string) *model.ModerationAudit {
	payload, _ := json.Marshal(map[string]any{
		"user_id":      targetID,
		"community_id": communityID,
		"approver_id":  actorID,
		"action":       action,
		"timestamp":    time.Now().UTC().Format(time.RFC3339Nano),
	})
	return &model.ModerationAudit{
		CommunityID: communityID,
		TargetID:    targetID,
		ActorID:     actorID,
		Kind:        kind,
		Action:      action,
		Payload:     string(payload),
	}
}

func (s *ModerationService) findCommunity(id uint64) (*model.Community, error) {
	c, err := s.communityRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %d", id)
	}
	return c, err
}

func (s *ModerationService) findUser(id uint64) (*model.User, error) {
	u, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %d", id)
	}
	return u, err
}

func (s *ModerationService) findUserByName(username string) (*model.User, error) {
	u, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %s", username)
	}
	return u, err
}

package service

import (
	"errors"
	"strings"
	"time"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommunityService struct {
	repo       *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	userRepo   *mysql.UserRepository
}

func NewCommunityService(db *gorm.DB) *CommunityService {
	return &CommunityService{
		repo:       &mysql.CommunityRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		userRepo:   &mysql.UserRepository{DB: db},
	}
}

type UpdateCommunityRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Topics      []string `json:"topics"`
	AccessLevel *string  `json:"access_level"`
}

func (s *CommunityService) Create(username, name, desc string, topics []string, accessLevel string) (*model.Community, error) {
	if name == "" {
		return nil, pkg.InvalidArgumentf("community name required")
	}
	level, ok := model.ParseAccessLevel(accessLevel)
	if !ok {
		return nil, pkg.InvalidArgumentf("unknown access level %q", accessLevel)
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, pkg.NotFoundf("user %s", username)
	}

	community := &model.Community{
		Name:        name,
		Description: desc,
		Topics:      strings.Join(topics, ","),
		AccessLevel: level,
		CreatorID:   user.ID,
	}
	// 唯一索引兜底重名，并发创建也只有一个赢家
	if _, err := s.repo.Create(community); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkg.Conflictf("community %s already exists", name)
		}
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) Get(communityID uint64) (*model.Community, error) {
	c, err := s.repo.FindByID(communityID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %d", communityID)
	}
	return c, err
}

func (s *CommunityService) GetByName(name string) (*model.Community, error) {
	c, err := s.repo.FindByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %s", name)
	}
	return c, err
}

func (s *CommunityService) List(page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.List((page-1)*size, size)
}

// Update 创建者或 moderator 可改；改名要求新名未被占用
func (s *CommunityService) Update(communityName string, req UpdateCommunityRequest, username string) (*model.Community, error) {
	community, err := s.GetByName(communityName)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByUsername(username); err != nil {
		return nil, pkg.NotFoundf("user %s", username)
	}
	if err := s.requireModeration(community.ID, username); err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != community.Name {
		community.Name = *req.Name
	}
	if req.Description != nil {
		community.Description = *req.Description
	}
	if req.Topics != nil {
		community.Topics = strings.Join(req.Topics, ",")
	}
	if req.AccessLevel != nil {
		level, ok := model.ParseAccessLevel(*req.AccessLevel)
		if !ok {
			return nil, pkg.InvalidArgumentf("unknown access level %q", *req.AccessLevel)
		}
		community.AccessLevel = level
	}
	community.UpdatedAt = time.Now()
	if err := s.repo.Save(community); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkg.Conflictf("community %s already exists", community.Name)
		}
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) Members(communityID uint64) ([]model.User, error) {
	if _, err := s.Get(communityID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(communityID)
}

func (s *CommunityService) MembersCount(communityID uint64) (int64, error) {
	if _, err := s.Get(communityID); err != nil {
		return 0, err
	}
	return s.repo.CountMembers(communityID)
}

// AddModerator 仅创建者可提拔；目标必须已是成员，重复提拔算冲突
func (s *CommunityService) AddModerator(communityID, targetUserID uint64, username string) error {
	community, err := s.Get(communityID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.FindByUsername(username); err != nil {
		return pkg.NotFoundf("user %s", username)
	}
	isCreator, err := s.repo.IsCreator(community.ID, username)
	if err != nil {
		return err
	}
	if !isCreator {
		return pkg.Unauthorizedf("user %s is not the creator of community %d", username, communityID)
	}
	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		return pkg.NotFoundf("user %d", targetUserID)
	}
	member, err := s.memberRepo.Find(communityID, targetUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.InvalidArgumentf("user %d is not an approved member of community %d", targetUserID, communityID)
	}
	if err != nil {
		return err
	}
	if member.Role >= model.RoleModerator {
		return pkg.Conflictf("user %d is already a moderator of community %d", targetUserID, communityID)
	}
	return s.memberRepo.Promote(communityID, targetUserID)
}

/*
授权判定（只读）：关系不存在时返回 false，不报错。
实体是否存在由各调用方先行确认。
*/

func (s *CommunityService) IsCreator(communityID uint64, username string) (bool, error) {
	return s.repo.IsCreator(communityID, username)
}

func (s *CommunityService) IsModerator(communityID uint64, username string) (bool, error) {
	return s.repo.IsModerator(communityID, username)
}

func (s *CommunityService) IsMember(communityName string, userID uint64) (bool, error) {
	return s.repo.IsMember(communityName, userID)
}

func (s *CommunityService) IsPrivate(communityName string) (bool, error) {
	return s.repo.IsPrivate(communityName)
}

// requireModeration 创建者或 moderator 任一即可
func (s *CommunityService) requireModeration(communityID uint64, username string) error {
	isCreator, err := s.repo.IsCreator(communityID, username)
	if err != nil {
		return err
	}
	isModerator, err := s.repo.IsModerator(communityID, username)
	if err != nil {
		return err
	}
	if !isCreator && !isModerator {
		return pkg.Unauthorizedf("user %s is not allowed to moderate community %d", username, communityID)
	}
	return nil
}

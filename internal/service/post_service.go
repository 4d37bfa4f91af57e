package service

import (
	"errors"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"

	"gorm.io/gorm"
)

// PostService 帖子读取与修订。
// 编辑语义按社区访问级别分叉：公开社区原行改写，
// 私有社区写时复制出 pending 修订行并把旧行置 inactive。
type PostService struct {
	db            *gorm.DB
	postRepo      *mysql.PostRepository
	communityRepo *mysql.CommunityRepository
	community     *CommunityService
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		db:            db,
		postRepo:      &mysql.PostRepository{DB: db},
		communityRepo: &mysql.CommunityRepository{DB: db},
		community:     NewCommunityService(db),
	}
}

type UpdatePostRequest struct {
	Title   *string
	Content *string
}

func (s *PostService) Get(postID uint64) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("post %d", postID)
	}
	return post, err
}

// ListByCommunity 私有社区只有成员能看帖子列表
func (s *PostService) ListByCommunity(communityID uint64, userID uint64, page, size int) ([]model.Post, error) {
	community, err := s.communityRepo.FindByID(communityID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("community %d", communityID)
	}
	if err != nil {
		return nil, err
	}
	if community.IsPrivate() {
		isMember, err := s.community.IsMember(community.Name, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, pkg.Unauthorizedf("user %d is not a member of community %d", userID, communityID)
		}
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.postRepo.ListByCommunity(communityID, (page-1)*size, size)
}

// Update 只有创建者能编辑，且只能编辑 active 帖子。
// 公开社区原行改写；私有社区插入 pending 修订行，
// OriginalPostID 指向旧行，旧行同事务置 inactive。
func (s *PostService) Update(postID uint64, userID uint64, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != userID {
		return nil, pkg.Unauthorizedf("user %d is not the creator of post %d", userID, postID)
	}
	if post.Status != model.PostActive {
		return nil, pkg.Conflictf("post %d is %s and cannot be edited", postID, post.Status)
	}
	if req.Title == nil && req.Content == nil {
		return nil, pkg.InvalidArgumentf("nothing to update")
	}

	community, err := s.communityRepo.FindByID(post.CommunityID)
	if err != nil {
		return nil, err
	}

	title, content := post.Title, post.Content
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}
	if title == "" {
		return nil, pkg.InvalidArgumentf("title required")
	}

	if !community.IsPrivate() {
		if err := s.postRepo.UpdateInPlace(postID, map[string]any{
			"title":   title,
			"content": content,
		}); err != nil {
			return nil, err
		}
		return s.Get(postID)
	}

	oldID := post.ID
	revision := &model.Post{
		CommunityID:    post.CommunityID,
		CreatorID:      post.CreatorID,
		Title:          title,
		Content:        content,
		Status:         model.PostPending,
		OriginalPostID: &oldID,
	}
	if err := s.postRepo.Supersede(oldID, revision); err != nil {
		return nil, err
	}
	return revision, nil
}

// Delete 创建者本人的软删除：正文清空、状态置 deleted，行保留。
// 重复删除算冲突。
func (s *PostService) Delete(postID uint64, userID uint64) error {
	post, err := s.Get(postID)
	if err != nil {
		return err
	}
	if post.CreatorID != userID {
		return pkg.Unauthorizedf("user %d is not the creator of post %d", userID, postID)
	}
	if post.Status == model.PostDeleted {
		return pkg.Conflictf("post %d is already deleted", postID)
	}
	return s.postRepo.SoftDelete(postID)
}

// Revisions 沿 OriginalPostID 链回溯修订历史，最新在前
func (s *PostService) Revisions(postID uint64) ([]model.Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	chain := []model.Post{*post}
	for post.OriginalPostID != nil {
		prev, err := s.postRepo.FindByID(*post.OriginalPostID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *prev)
		post = prev
	}
	return chain, nil
}

// ApproveRevision 私有社区的修订由创建者/moderator 审批后上线
func (s *PostService) ApproveRevision(postID uint64, username string) (*model.Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != model.PostPending {
		return nil, pkg.Conflictf("post %d is not pending", postID)
	}
	if err := s.community.requireModeration(post.CommunityID, username); err != nil {
		return nil, err
	}
	if err := s.postRepo.UpdateInPlace(postID, map[string]any{
		"status": model.PostActive,
	}); err != nil {
		return nil, err
	}
	return s.Get(postID)
}

package service

import (
	"context"
	"errors"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"

	"gorm.io/gorm"
)

// CommentService 评论与点赞计数。
// 点赞/点踩是行锁自增的纯计数器，不做按用户去重。
type CommentService struct {
	db          *gorm.DB
	commentRepo *mysql.CommentRepository
	postRepo    *mysql.PostRepository
	userRepo    *mysql.UserRepository
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		db:          db,
		commentRepo: &mysql.CommentRepository{DB: db},
		postRepo:    &mysql.PostRepository{DB: db},
		userRepo:    &mysql.UserRepository{DB: db},
	}
}

// CommentTree 一级评论带子评论
type CommentTree struct {
	Comment  model.Comment   `json:"comment"`
	Children []model.Comment `json:"children"`
}

// Add 在 active 帖子下发一级评论
func (s *CommentService) Add(postID, authorID uint64, content string) (*model.Comment, error) {
	if content == "" {
		return nil, pkg.InvalidArgumentf("content required")
	}
	post, err := s.findPost(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != model.PostActive {
		return nil, pkg.Conflictf("post %d is not active", postID)
	}
	if _, err := s.findUser(authorID); err != nil {
		return nil, err
	}
	c := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
		Status:   model.CommentActive,
	}
	if err := s.commentRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Reply 回复评论，父评论必须属于同一帖子
func (s *CommentService) Reply(postID, parentID, authorID uint64, content string) (*model.Comment, error) {
	if content == "" {
		return nil, pkg.InvalidArgumentf("content required")
	}
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}
	parent, err := s.findComment(parentID)
	if err != nil {
		return nil, err
	}
	if parent.PostID != postID {
		return nil, pkg.InvalidArgumentf("comment %d does not belong to post %d", parentID, postID)
	}
	if _, err := s.findUser(authorID); err != nil {
		return nil, err
	}
	c := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		ParentID: &parentID,
		Content:  content,
		Status:   model.CommentActive,
	}
	if err := s.commentRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Get(commentID uint64) (*CommentTree, error) {
	c, err := s.findComment(commentID)
	if err != nil {
		return nil, err
	}
	children, err := s.commentRepo.ListChildren(commentID)
	if err != nil {
		return nil, err
	}
	return &CommentTree{Comment: *c, Children: children}, nil
}

// ListByPost sort 取 new/old/top，非法值按 new 处理
func (s *CommentService) ListByPost(postID uint64, sort string) ([]model.Comment, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListParentsByPost(postID, sort)
}

// Like 点赞并返回新计数。行锁保证并发下 N 次点赞得到 N 个连续的计数值。
func (s *CommentService) Like(ctx context.Context, userID, postID, commentID uint64) (int, error) {
	if err := s.checkCounterTarget(userID, postID, commentID); err != nil {
		return 0, err
	}
	return s.commentRepo.IncrementCounter(ctx, commentID, postID, "like_count")
}

// Unlike 点踩并返回新计数
func (s *CommentService) Unlike(ctx context.Context, userID, postID, commentID uint64) (int, error) {
	if err := s.checkCounterTarget(userID, postID, commentID); err != nil {
		return 0, err
	}
	return s.commentRepo.IncrementCounter(ctx, commentID, postID, "unlike_count")
}

// checkCounterTarget 计数前置检查：用户、帖子、评论都存在且评论属于该帖子
func (s *CommentService) checkCounterTarget(userID, postID, commentID uint64) error {
	if _, err := s.findUser(userID); err != nil {
		return err
	}
	if _, err := s.findPost(postID); err != nil {
		return err
	}
	c, err := s.findComment(commentID)
	if err != nil {
		return err
	}
	if c.PostID != postID {
		return pkg.InvalidArgumentf("comment %d does not belong to post %d", commentID, postID)
	}
	return nil
}

func (s *CommentService) findPost(id uint64) (*model.Post, error) {
	p, err := s.postRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("post %d", id)
	}
	return p, err
}

func (s *CommentService) findComment(id uint64) (*model.Comment, error) {
	c, err := s.commentRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("comment %d", id)
	}
	return c, err
}

func (s *CommentService) findUser(id uint64) (*model.User, error) {
	u, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %d", id)
	}
	return u, err
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCommentFixture(t *testing.T) (*CommentService, *model.User, *model.Post) {
	t.Helper()
	db := newTestDB(t)
	creator := seedUser(t, db, "creator")
	pub := seedCommunity(t, db, "pub", creator.ID, model.AccessPublic)
	post := seedPost(t, db, pub.ID, creator.ID, model.PostActive)
	return NewCommentService(db), creator, post
}

func TestAddComment(t *testing.T) {
	svc, user, post := seedCommentFixture(t)

	c, err := svc.Add(post.ID, user.ID, "first!")
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Nil(t, c.ParentID)

	_, err = svc.Add(post.ID, user.ID, "")
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)

	_, err = svc.Add(999, user.ID, "hi")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestReply_ParentMustBelongToPost(t *testing.T) {
	svc, user, post := seedCommentFixture(t)
	db := svc.db

	parent, err := svc.Add(post.ID, user.ID, "parent")
	require.NoError(t, err)

	reply, err := svc.Reply(post.ID, parent.ID, user.ID, "child")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	// 另一个帖子上的父评论不能挂
	other := seedPost(t, db, post.CommunityID, user.ID, model.PostActive)
	_, err = svc.Reply(other.ID, parent.ID, user.ID, "bad")
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)

	tree, err := svc.Get(parent.ID)
	require.NoError(t, err)
	assert.Len(t, tree.Children, 1)
}

func TestLike_SequentialCounts(t *testing.T) {
	svc, user, post := seedCommentFixture(t)
	ctx := context.Background()

	c, err := svc.Add(post.ID, user.ID, "count me")
	require.NoError(t, err)

	// 纯计数器，不按用户去重：同一用户点 N 次涨 N
	for i := 1; i <= 3; i++ {
		n, err := svc.Like(ctx, user.ID, post.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err := svc.Unlike(ctx, user.ID, post.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Comment.LikeCount)
	assert.Equal(t, 1, got.Comment.UnlikeCount)
}

func TestLike_ConcurrentConvergence(t *testing.T) {
	svc, user, post := seedCommentFixture(t)
	ctx := context.Background()

	c, err := svc.Add(post.ID, user.ID, "hot take")
	require.NoError(t, err)

	// N 个并发点赞收敛到计数恰好为 N，行锁保证没有丢失更新
	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Like(ctx, user.ID, post.ID, c.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Comment.LikeCount)
}

func TestLike_TargetChecks(t *testing.T) {
	svc, user, post := seedCommentFixture(t)
	ctx := context.Background()
	db := svc.db

	c, err := svc.Add(post.ID, user.ID, "hello")
	require.NoError(t, err)

	_, err = svc.Like(ctx, 999, post.ID, c.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = svc.Like(ctx, user.ID, 999, c.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = svc.Like(ctx, user.ID, post.ID, 999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	// 评论和帖子对不上号
	other := seedPost(t, db, post.CommunityID, user.ID, model.PostActive)
	_, err = svc.Like(ctx, user.ID, other.ID, c.ID)
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)
}

func TestListByPost_Sorting(t *testing.T) {
	svc, user, post := seedCommentFixture(t)
	ctx := context.Background()

	first, err := svc.Add(post.ID, user.ID, "first")
	require.NoError(t, err)
	second, err := svc.Add(post.ID, user.ID, "second")
	require.NoError(t, err)

	// second 拿两个赞
	_, err = svc.Like(ctx, user.ID, post.ID, second.ID)
	require.NoError(t, err)
	_, err = svc.Like(ctx, user.ID, post.ID, second.ID)
	require.NoError(t, err)

	newest, err := svc.ListByPost(post.ID, "new")
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, second.ID, newest[0].ID)

	oldest, err := svc.ListByPost(post.ID, "old")
	require.NoError(t, err)
	assert.Equal(t, first.ID, oldest[0].ID)

	top, err := svc.ListByPost(post.ID, "top")
	require.NoError(t, err)
	assert.Equal(t, second.ID, top[0].ID)
}

package service

import (
	"testing"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdatePost_PublicInPlace(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	creator := seedUser(t, db, "creator")
	pub := seedCommunity(t, db, "pub", creator.ID, model.AccessPublic)
	post := seedPost(t, db, pub.ID, creator.ID, model.PostActive)

	updated, err := svc.Update(post.ID, creator.ID, UpdatePostRequest{
		Title:   strPtr("new title"),
		Content: strPtr("new content"),
	})
	require.NoError(t, err)

	// 原行改写：id 不变，没有新行
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, model.PostActive, updated.Status)
	assert.Nil(t, updated.OriginalPostID)

	var n int64
	require.NoError(t, db.Model(&model.Post{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUpdatePost_PrivateCopyOnWrite(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	creator := seedUser(t, db, "creator")
	priv := seedCommunity(t, db, "priv", creator.ID, model.AccessPrivate)
	post := seedPost(t, db, priv.ID, creator.ID, model.PostActive)

	revision, err := svc.Update(post.ID, creator.ID, UpdatePostRequest{
		Content: strPtr("revised content"),
	})
	require.NoError(t, err)

	// 新行 pending，链回旧行
	assert.NotEqual(t, post.ID, revision.ID)
	assert.Equal(t, model.PostPending, revision.Status)
	require.NotNil(t, revision.OriginalPostID)
	assert.Equal(t, post.ID, *revision.OriginalPostID)
	// 没改的字段继承旧行
	assert.Equal(t, post.Title, revision.Title)

	// 旧行置 inactive 但仍可取
	old, err := svc.Get(post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostInactive, old.Status)
	assert.Equal(t, "some content", old.Content)

	chain, err := svc.Revisions(revision.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, revision.ID, chain[0].ID)
	assert.Equal(t, post.ID, chain[1].ID)
}

func TestSupersede_ConcurrentEditDoesNotForkChain(t *testing.T) {
	db := newTestDB(t)
	repo := &mysql.PostRepository{DB: db}

	creator := seedUser(t, db, "creator")
	priv := seedCommunity(t, db, "priv", creator.ID, model.AccessPrivate)
	post := seedPost(t, db, priv.ID, creator.ID, model.PostActive)
	oldID := post.ID

	// 两个编辑者都在对方提交前读到了 active 的旧行
	rev1 := &model.Post{
		CommunityID:    priv.ID,
		CreatorID:      creator.ID,
		Title:          "rev one",
		Content:        "v1",
		Status:         model.PostPending,
		OriginalPostID: &oldID,
	}
	require.NoError(t, repo.Supersede(oldID, rev1))

	rev2 := &model.Post{
		CommunityID:    priv.ID,
		CreatorID:      creator.ID,
		Title:          "rev two",
		Content:        "v2",
		Status:         model.PostPending,
		OriginalPostID: &oldID,
	}
	err := repo.Supersede(oldID, rev2)
	assert.ErrorIs(t, err, pkg.ErrConflict)

	// 输家的修订行被回滚，旧行只被一条修订指向
	var n int64
	require.NoError(t, db.Model(&model.Post{}).Where("original_post_id = ?", oldID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUpdatePost_Guards(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	creator := seedUser(t, db, "creator")
	other := seedUser(t, db, "other")
	pub := seedCommunity(t, db, "pub", creator.ID, model.AccessPublic)
	post := seedPost(t, db, pub.ID, creator.ID, model.PostActive)

	// 只有创建者能编辑
	_, err := svc.Update(post.ID, other.ID, UpdatePostRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// 空更新拒绝
	_, err = svc.Update(post.ID, creator.ID, UpdatePostRequest{})
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)

	// 非 active 帖子不可编辑
	inactive := seedPost(t, db, pub.ID, creator.ID, model.PostInactive)
	_, err = svc.Update(inactive.ID, creator.ID, UpdatePostRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, pkg.ErrConflict)

	_, err = svc.Update(999, creator.ID, UpdatePostRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestDeletePost_SoftDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	creator := seedUser(t, db, "creator")
	other := seedUser(t, db, "other")
	pub := seedCommunity(t, db, "pub", creator.ID, model.AccessPublic)
	post := seedPost(t, db, pub.ID, creator.ID, model.PostActive)

	// 非创建者不能删
	err := svc.Delete(post.ID, other.ID)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	require.NoError(t, svc.Delete(post.ID, creator.ID))

	// 行保留，正文清空
	got, err := svc.Get(post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostDeleted, got.Status)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Content)

	// 重复删除算冲突
	err = svc.Delete(post.ID, creator.ID)
	assert.ErrorIs(t, err, pkg.ErrConflict)
}

func TestListByCommunity_PrivateRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	creator := seedUser(t, db, "creator")
	outsider := seedUser(t, db, "outsider")
	priv := seedCommunity(t, db, "priv", creator.ID, model.AccessPrivate)
	seedPost(t, db, priv.ID, creator.ID, model.PostActive)
	seedPost(t, db, priv.ID, creator.ID, model.PostInactive)

	_, err := svc.ListByCommunity(priv.ID, outsider.ID, 1, 20)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// 成员只看到 active 帖子
	list, err := svc.ListByCommunity(priv.ID, creator.ID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestApproveRevision(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)

	creator := seedUser(t, db, "creator")
	priv := seedCommunity(t, db, "priv", creator.ID, model.AccessPrivate)
	post := seedPost(t, db, priv.ID, creator.ID, model.PostActive)

	revision, err := svc.Update(post.ID, creator.ID, UpdatePostRequest{Content: strPtr("v2")})
	require.NoError(t, err)

	approved, err := svc.ApproveRevision(revision.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, model.PostActive, approved.Status)

	// 已上线的修订不能再批
	_, err = svc.ApproveRevision(revision.ID, "creator")
	assert.ErrorIs(t, err, pkg.ErrConflict)
}

package service

import (
	"testing"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommunityService(db)
	seedUser(t, db, "creator")

	c, err := svc.Create("creator", "tech", "a place", []string{"go", "db"}, "private")
	require.NoError(t, err)
	assert.True(t, c.IsPrivate())
	assert.Equal(t, []string{"go", "db"}, c.TopicList())

	// 创建者自动入会并拿到版主位
	isMod, err := svc.IsModerator(c.ID, "creator")
	require.NoError(t, err)
	assert.True(t, isMod)

	// 重名算冲突
	_, err = svc.Create("creator", "tech", "", nil, "public")
	assert.ErrorIs(t, err, pkg.ErrConflict)

	// 非法访问级别
	_, err = svc.Create("creator", "other", "", nil, "secret")
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)

	// 名字必填
	_, err = svc.Create("creator", "", "", nil, "public")
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)
}

func TestOracle_FalseNotError(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommunityService(db)

	creator := seedUser(t, db, "creator")
	stranger := seedUser(t, db, "stranger")
	tech := seedCommunity(t, db, "tech", creator.ID, model.AccessPrivate)

	// 关系不存在一律返回 false，不报错
	isCreator, err := svc.IsCreator(tech.ID, "stranger")
	require.NoError(t, err)
	assert.False(t, isCreator)

	isMod, err := svc.IsModerator(tech.ID, "stranger")
	require.NoError(t, err)
	assert.False(t, isMod)

	isMember, err := svc.IsMember("tech", stranger.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	// 不存在的实体同样是 false
	isCreator, err = svc.IsCreator(999, "nobody")
	require.NoError(t, err)
	assert.False(t, isCreator)

	isMember, err = svc.IsMember("ghost-town", stranger.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	isPrivate, err := svc.IsPrivate("ghost-town")
	require.NoError(t, err)
	assert.False(t, isPrivate)

	isPrivate, err = svc.IsPrivate("tech")
	require.NoError(t, err)
	assert.True(t, isPrivate)
}

func TestUpdateCommunity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommunityService(db)

	creator := seedUser(t, db, "creator")
	seedUser(t, db, "stranger")
	seedCommunity(t, db, "tech", creator.ID, model.AccessPublic)

	desc := "updated"
	_, err := svc.Update("tech", UpdateCommunityRequest{Description: &desc}, "stranger")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	updated, err := svc.Update("tech", UpdateCommunityRequest{Description: &desc}, "creator")
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)

	_, err = svc.Update("nope", UpdateCommunityRequest{Description: &desc}, "creator")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	// 改名撞上已有社区：唯一索引拦下并映射为冲突
	seedCommunity(t, db, "golang", creator.ID, model.AccessPublic)
	newName := "tech"
	_, err = svc.Update("golang", UpdateCommunityRequest{Name: &newName}, "creator")
	assert.ErrorIs(t, err, pkg.ErrConflict)
}

func TestAddModerator(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommunityService(db)

	creator := seedUser(t, db, "creator")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	tech := seedCommunity(t, db, "tech", creator.ID, model.AccessPrivate)
	seedMember(t, db, tech.ID, bob.ID, model.RoleMember)

	// 只有创建者能提权
	err := svc.AddModerator(tech.ID, bob.ID, "bob")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// 非成员不能直接提权
	err = svc.AddModerator(tech.ID, carol.ID, "creator")
	assert.ErrorIs(t, err, pkg.ErrInvalidArgument)

	require.NoError(t, svc.AddModerator(tech.ID, bob.ID, "creator"))
	isMod, err := svc.IsModerator(tech.ID, "bob")
	require.NoError(t, err)
	assert.True(t, isMod)

	// 重复提权算冲突
	err = svc.AddModerator(tech.ID, bob.ID, "creator")
	assert.ErrorIs(t, err, pkg.ErrConflict)
}

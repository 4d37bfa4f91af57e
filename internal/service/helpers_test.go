package service

import (
	"fmt"
	"testing"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"
	redisrepo "github.com/halit2001/post-platform-backend/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	// sqlite 没有行锁，单连接让并发写入排队而不是报 busy
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Post{},
		&model.Comment{},
		&model.ModerationAudit{},
	))
	return db
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	return redisrepo.NewClient(s.Addr(), "", 0)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Password: "hash",
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCommunity(t *testing.T, db *gorm.DB, name string, creatorID uint64, access model.AccessLevel) *model.Community {
	t.Helper()
	c := &model.Community{
		Name:        name,
		AccessLevel: access,
		CreatorID:   creatorID,
	}
	require.NoError(t, db.Create(c).Error)
	require.NoError(t, db.Create(&model.CommunityMember{
		CommunityID: c.ID,
		UserID:      creatorID,
		Role:        model.RoleModerator,
	}).Error)
	return c
}

func seedMember(t *testing.T, db *gorm.DB, communityID, userID uint64, role int) {
	t.Helper()
	require.NoError(t, db.Create(&model.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
	}).Error)
}

func seedPost(t *testing.T, db *gorm.DB, communityID, creatorID uint64, status model.PostStatus) *model.Post {
	t.Helper()
	p := &model.Post{
		CommunityID: communityID,
		CreatorID:   creatorID,
		Title:       "a title",
		Content:     "some content",
		Status:      status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func memberCount(t *testing.T, db *gorm.DB, communityID uint64) int64 {
	t.Helper()
	n, err := (&mysql.CommunityRepository{DB: db}).CountMembers(communityID)
	require.NoError(t, err)
	return n
}

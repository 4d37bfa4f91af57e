package mysql

import (
	"github.com/halit2001/post-platform-backend/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 建社区并幂等地让创建者入会（角色=moderator）
func (r *CommunityRepository) Create(c *model.Community) (*model.Community, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		mRepo := &CommunityMemberRepository{DB: tx}
		_, err := mRepo.Add(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.RoleModerator,
		})
		return err
	})
	return c, err
}

func (r *CommunityRepository) FindByID(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) FindByName(name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("name = ?", name).First(&community).Error
	return &community, err
}

func (r *CommunityRepository) List(offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *CommunityRepository) Save(c *model.Community) error {
	return r.DB.Save(c).Error
}

// ListMembers 按入会先后返回已批准成员
func (r *CommunityRepository) ListMembers(communityID uint64) ([]model.User, error) {
	var users []model.User
	err := r.DB.Model(&model.User{}).
		Joins("JOIN community_members ON community_members.user_id = users.id").
		Where("community_members.community_id = ?", communityID).
		Order("community_members.id ASC").
		Find(&users).Error
	return users, err
}

func (r *CommunityRepository) CountMembers(communityID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&n).Error
	return n, err
}

/*
授权判定：纯查询，关系不存在时一律 count=0 返回 false，不报错。
创建者不依赖成员表，直接比对 communities.creator_id。
*/

func (r *CommunityRepository) IsCreator(communityID uint64, username string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.Community{}).
		Joins("JOIN users ON users.id = communities.creator_id").
		Where("communities.id = ? AND users.username = ?", communityID, username).
		Count(&n).Error
	return n > 0, err
}

func (r *CommunityRepository) IsModerator(communityID uint64, username string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.CommunityMember{}).
		Joins("JOIN users ON users.id = community_members.user_id").
		Where("community_members.community_id = ? AND community_members.role >= ? AND users.username = ?",
			communityID, model.RoleModerator, username).
		Count(&n).Error
	return n > 0, err
}

func (r *CommunityRepository) IsMember(communityName string, userID uint64) (bool, error) {
	var n int64
	err := r.DB.Model(&model.CommunityMember{}).
		Joins("JOIN communities ON communities.id = community_members.community_id").
		Where("communities.name = ? AND community_members.user_id = ?", communityName, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *CommunityRepository) IsPrivate(communityName string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.Community{}).
		Where("name = ? AND access_level = ?", communityName, model.AccessPrivate).
		Count(&n).Error
	return n > 0, err
}

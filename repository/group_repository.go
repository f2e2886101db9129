package repository

import (
	"context"

	"littlelemon/entity"

	"gorm.io/gorm"
)

const membershipTable = "auth_user_groups"

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) FindByName(ctx context.Context, name string) (*entity.Group, error) {
	var g entity.Group
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// Ensure creates the group if missing.
func (r *GroupRepository) Ensure(ctx context.Context, name string) (*entity.Group, error) {
	var g entity.Group
	if err := r.DB.WithContext(ctx).Where(entity.Group{Name: name}).FirstOrCreate(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// Members lists users of a group ordered by id.
func (r *GroupRepository) Members(ctx context.Context, groupID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.DB.WithContext(ctx).
		Joins("JOIN "+membershipTable+" ug ON ug.user_id = users.id").
		Where("ug.group_id = ?", groupID).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

// IsMember checks membership by group name. db may be a transaction.
func (r *GroupRepository) IsMember(db *gorm.DB, userID uint, groupName string) (bool, error) {
	var cnt int64
	err := db.Table(membershipTable+" AS ug").
		Joins("JOIN auth_groups g ON g.id = ug.group_id").
		Where("ug.user_id = ? AND g.name = ? AND g.deleted_at IS NULL", userID, groupName).
		Count(&cnt).Error
	return cnt > 0, err
}

// GroupNamesOf returns the names of every group the user belongs to.
func (r *GroupRepository) GroupNamesOf(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Table("auth_groups AS g").
		Joins("JOIN "+membershipTable+" ug ON ug.group_id = g.id").
		Where("ug.user_id = ? AND g.deleted_at IS NULL", userID).
		Pluck("g.name", &names).Error
	return names, err
}

// AddMember is idempotent.
func (r *GroupRepository) AddMember(tx *gorm.DB, user *entity.User, group *entity.Group) error {
	return tx.Model(user).Association("Groups").Append(group)
}

// RemoveMember returns how many membership rows were removed.
func (r *GroupRepository) RemoveMember(tx *gorm.DB, userID, groupID uint) (int64, error) {
	res := tx.Exec("DELETE FROM "+membershipTable+" WHERE user_id = ? AND group_id = ?", userID, groupID)
	return res.RowsAffected, res.Error
}

package services

import (
	"context"
	"fmt"

	"littlelemon/entity"
	"littlelemon/repository"

	"gorm.io/gorm"
)

var groupSlugs = map[string]string{
	"manager":       entity.GroupManager,
	"delivery-crew": entity.GroupDeliveryCrew,
}

// GroupNameFromSlug maps a URL segment to a group name.
func GroupNameFromSlug(slug string) (string, bool) {
	name, ok := groupSlugs[slug]
	return name, ok
}

type GroupService struct {
	DB        *gorm.DB
	GroupRepo *repository.GroupRepository
	UserRepo  *repository.UserRepository
}

func NewGroupService(db *gorm.DB, gr *repository.GroupRepository, ur *repository.UserRepository) *GroupService {
	return &GroupService{DB: db, GroupRepo: gr, UserRepo: ur}
}

type MemberIn struct {
	UserID uint `json:"user_id"`
}

func (s *GroupService) group(ctx context.Context, name string) (*entity.Group, error) {
	g, err := s.GroupRepo.FindByName(ctx, name)
	if err != nil {
		return nil, orNotFound(err, "group", name)
	}
	return g, nil
}

func (s *GroupService) ListMembers(ctx context.Context, name string) ([]entity.User, error) {
	g, err := s.group(ctx, name)
	if err != nil {
		return nil, err
	}
	users, err := s.GroupRepo.Members(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", name, err)
	}
	return users, nil
}

// AddMember is idempotent for users that are already members.
func (s *GroupService) AddMember(ctx context.Context, name string, userID uint) (*entity.User, error) {
	if userID == 0 {
		return nil, invalid("user_id", "required")
	}
	g, err := s.group(ctx, name)
	if err != nil {
		return nil, err
	}
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "user", userID)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.GroupRepo.AddMember(tx, user, g)
	})
	if err != nil {
		return nil, fmt.Errorf("add %s member: %w", name, err)
	}
	return user, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, name string, userID uint) error {
	g, err := s.group(ctx, name)
	if err != nil {
		return err
	}
	if _, err := s.UserRepo.FindByID(ctx, userID); err != nil {
		return orNotFound(err, "user", userID)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.GroupRepo.RemoveMember(tx, userID, g.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(name+" member", userID)
		}
		return nil
	})
}

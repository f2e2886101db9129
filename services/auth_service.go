package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"littlelemon/entity"
	"littlelemon/repository"
	"littlelemon/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles register/login and resolves request principals.
type AuthService struct {
	userRepo  *repository.UserRepository
	groupRepo *repository.GroupRepository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(users *repository.UserRepository, groups *repository.GroupRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo:  users,
		groupRepo: groups,
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

type RegisterIn struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates a user with no group membership, i.e. a customer.
func (s *AuthService) Register(ctx context.Context, in RegisterIn) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid("username", "required")
	}

	count, err := s.userRepo.CountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, invalid("username", "already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the password and issues a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Principal verifies the bearer token and resolves the caller's role from its
// membership rows. A token for a deleted user is rejected.
func (s *AuthService) Principal(ctx context.Context, token string) (Principal, error) {
	claims, err := utils.ParseToken(token, s.jwtSecret)
	if err != nil {
		return Anonymous, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Anonymous, ErrUnauthenticated
		}
		return Anonymous, err
	}
	names, err := s.groupRepo.GroupNamesOf(ctx, user.ID)
	if err != nil {
		return Anonymous, fmt.Errorf("resolve role: %w", err)
	}
	return Principal{UserID: user.ID, Username: user.Username, Role: entity.RoleFromGroups(names)}, nil
}

// UserOut is the public shape of a user.
type UserOut struct {
	ID        uint     `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Groups    []string `json:"groups,omitempty"`
}

func ToUserOut(u *entity.User) UserOut {
	return UserOut{
		ID: u.ID, Username: u.Username, Email: u.Email,
		FirstName: u.FirstName, LastName: u.LastName, Groups: u.GroupNames(),
	}
}

func ToUserOuts(users []entity.User) []UserOut {
	out := make([]UserOut, 0, len(users))
	for i := range users {
		out = append(out, ToUserOut(&users[i]))
	}
	return out
}

type Profile struct {
	UserOut
	Role entity.Role `json:"role"`
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.userRepo.FindWithGroups(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "user", userID)
	}
	return &Profile{UserOut: ToUserOut(user), Role: entity.RoleFromGroups(user.GroupNames())}, nil
}

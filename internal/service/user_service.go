package service

import (
	"context"
	"errors"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/repository/mysql"
	redisrepo "github.com/halit2001/post-platform-backend/internal/repository/redis"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ScopeRegister = "register"
	ScopeReset    = "reset"
)

// UserService 注册登录与口令管理
type UserService struct {
	userRepo  *mysql.UserRepository
	tokenRepo *redisrepo.UserRepository
	emailRepo *redisrepo.EmailRepository
}

func NewUserService(db *gorm.DB, rdb *goredis.Client) *UserService {
	return &UserService{
		userRepo:  &mysql.UserRepository{DB: db},
		tokenRepo: &redisrepo.UserRepository{RDB: rdb},
		emailRepo: &redisrepo.EmailRepository{RDB: rdb},
	}
}

// Register 注册前必须先走邮箱验证码
func (s *UserService) Register(ctx context.Context, username, password, email, code string) (*model.User, error) {
	if username == "" || password == "" || email == "" {
		return nil, pkg.InvalidArgumentf("username, password and email required")
	}
	ok, err := s.emailRepo.VerifyAndConsume(ctx, ScopeRegister, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.Unauthorizedf("email code invalid or expired")
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, pkg.Conflictf("username %s taken", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, pkg.Conflictf("email %s taken", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Password: string(hashed),
		Email:    email,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验口令，签发 token 对并把 access 存 Redis 做单点回验
func (s *UserService) Login(username, password string) (*model.User, *pkg.Pair, error) {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkg.Unauthorizedf("bad credentials")
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, pkg.Unauthorizedf("bad credentials")
	}
	pair, err := pkg.GeneratePair(user.ID, user.Username)
	if err != nil {
		return nil, nil, err
	}
	if err := s.tokenRepo.AddUserToken(user.ID, pair.AccessToken); err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *UserService) Logout(userID uint64) error {
	return s.tokenRepo.DeleteUserToken(userID)
}

// Refresh 用 refresh token 换新 token 对并覆盖 Redis 中的回验记录
func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, pkg.Unauthenticatedf("refresh token rejected")
	}
	claims, err := pkg.ParseAccess(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.AddUserToken(claims.UserID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Get(userID uint64) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFoundf("user %d", userID)
	}
	return user, err
}

// ChangePassword 旧口令校验通过后更新，并踢掉现有登录
func (s *UserService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return pkg.InvalidArgumentf("new password required")
	}
	user, err := s.Get(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.Unauthorizedf("bad credentials")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user, string(hashed)); err != nil {
		return err
	}
	return s.tokenRepo.DeleteUserToken(userID)
}

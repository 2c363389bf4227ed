package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"club_portal/internal/model"
	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
	"club_portal/internal/repository/redis"
)

type UserService struct {
	repo   *mysql.UserRepository
	tokens *redis.UserRepository
}

func NewUserService(repo *mysql.UserRepository, tokens *redis.UserRepository) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

// ProfileUpdate 为 nil 的字段不修改
type ProfileUpdate struct {
	ProfilePicture *string
	Interests      []string
}

func (s *UserService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || len(username) > 32 {
		return nil, pkg.BadRequest("invalid username")
	}
	if len(password) < 6 {
		return nil, pkg.BadRequest("password too short")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkg.BadRequest("invalid email")
	}

	exists, err := s.repo.Exists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkg.Conflict("username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:  username,
		Password:  string(hash),
		Email:     email,
		Role:      model.RoleStudent,
		Club:      model.ClubNone,
		Interests: []string{},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.Unauthorized("user not found")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, pkg.Unauthorized("invalid password")
	}
	return s.issue(ctx, user)
}

// issue 签发 token 并写入 redis，旧 token 随之失效
func (s *UserService) issue(ctx context.Context, user *model.User) (*pkg.Pair, error) {
	pair, err := pkg.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err = s.tokens.AddUserToken(ctx, user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.DeleteUserToken(ctx, userID)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := pkg.ParseRefresh(refreshToken)
	if err != nil {
		return nil, pkg.Unauthorized(err.Error())
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.Unauthorized("user not found")
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *UserService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("user not found")
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	var fields []string
	if in.ProfilePicture != nil {
		user.ProfilePicture = strings.TrimSpace(*in.ProfilePicture)
		fields = append(fields, "profile_picture")
	}
	if in.Interests != nil {
		user.Interests = NormalizeInterests(in.Interests)
		fields = append(fields, "interests")
	}
	if len(fields) == 0 {
		return user, nil
	}
	if err := s.repo.UpdateFields(ctx, user, fields...); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeInterests 去空白、去重，保持原顺序
func NormalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

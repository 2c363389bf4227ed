package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"club_portal/internal/model"
	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
)

type ClubService struct {
	repo  *mysql.ClubRepository
	users *mysql.UserRepository
}

func NewClubService(repo *mysql.ClubRepository, users *mysql.UserRepository) *ClubService {
	return &ClubService{repo: repo, users: users}
}

type CreateClubInput struct {
	Name        string
	Slug        string
	Description string
	Category    model.Category
	Logo        string
	Banner      string
	ThemeColor  string
}

// CreateClub 仅管理员可创建
func (s *ClubService) CreateClub(ctx context.Context, operatorID uint64, in CreateClubInput) (*model.Club, error) {
	op, err := s.users.FindByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if op.Role != model.RoleAdmin {
		return nil, pkg.Forbidden("admin only")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 64 {
		return nil, pkg.BadRequest("club name required")
	}
	if !model.IsRealClub(name) {
		return nil, pkg.BadRequest("reserved club name")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, pkg.BadRequest("invalid slug")
	}

	taken, err := s.repo.Taken(ctx, name, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, pkg.Conflict("club name or slug already exists")
	}

	club := &model.Club{
		Slug:        slug,
		Name:        name,
		Description: in.Description,
		Category:    in.Category.String(),
		Logo:        in.Logo,
		Banner:      in.Banner,
		ThemeColor:  in.ThemeColor,
		CreatorID:   operatorID,
	}
	if err := s.repo.Create(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

func (s *ClubService) ListClubs(ctx context.Context, page, size int) ([]model.Club, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.List(ctx, (page-1)*size, size)
}

func (s *ClubService) GetBySlug(ctx context.Context, slug string) (*model.Club, error) {
	club, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NotFound("club not found")
	}
	return club, err
}

// Join 加入俱乐部（一人只属于一个俱乐部，重复加入幂等）
func (s *ClubService) Join(ctx context.Context, userID uint64, slug string) (bool, error) {
	club, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return s.repo.ChangeMembership(ctx, userID, club.Name)
}

// Leave 退出当前俱乐部
func (s *ClubService) Leave(ctx context.Context, userID uint64) (bool, error) {
	return s.repo.ChangeMembership(ctx, userID, model.ClubNone)
}

// Slugify 小写字母数字，其余字符折叠为单个 '-'
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"club_portal/internal/model"
)

type ClubRepository struct {
	DB *gorm.DB
}

func NewClubRepository(db *gorm.DB) *ClubRepository {
	return &ClubRepository{DB: db}
}

// ClubCount 对账用的俱乐部计数快照
type ClubCount struct {
	ID          uint64
	Name        string
	MemberCount int64
}

func (r *ClubRepository) Create(ctx context.Context, c *model.Club) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *ClubRepository) FindBySlug(ctx context.Context, slug string) (*model.Club, error) {
	var club model.Club
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&club).Error
	return &club, err
}

// FindByName 俱乐部名忽略大小写
func (r *ClubRepository) FindByName(ctx context.Context, name string) (*model.Club, error) {
	var club model.Club
	err := r.DB.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&club).Error
	return &club, err
}

// Taken 名称（忽略大小写）或 slug 是否已被占用
func (r *ClubRepository) Taken(ctx context.Context, name, slug string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Club{}).
		Where("LOWER(name) = ? OR slug = ?", strings.ToLower(name), slug).
		Count(&n).Error
	return n > 0, err
}

func (r *ClubRepository) List(ctx context.Context, offset, limit int) ([]model.Club, error) {
	var list []model.Club
	err := r.DB.WithContext(ctx).Order("name asc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// SmallestClubs 成员数最少的 n 个俱乐部，成员数相同时按 id 保证顺序稳定
func (r *ClubRepository) SmallestClubs(ctx context.Context, n int) ([]model.Club, error) {
	var list []model.Club
	err := r.DB.WithContext(ctx).Order("member_count asc, id asc").Limit(n).Find(&list).Error
	return list, err
}

// ChangeMembership 切换用户所属俱乐部并维护成员数；未发生变化时 changed=false
func (r *ClubRepository) ChangeMembership(ctx context.Context, userID uint64, club string) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "club").First(&user, userID).Error; err != nil {
			return err
		}
		if user.Club == club {
			return nil
		}
		if model.IsRealClub(user.Club) {
			if err := r.adjustMembers(tx, user.Club, -1); err != nil {
				return err
			}
		}
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("club", club).Error; err != nil {
			return err
		}
		if model.IsRealClub(club) {
			if err := r.adjustMembers(tx, club, +1); err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	return changed, err
}

func (r *ClubRepository) adjustMembers(tx *gorm.DB, club string, delta int64) error {
	return tx.Model(&model.Club{}).
		Where("LOWER(name) = ?", strings.ToLower(club)).
		UpdateColumn("member_count", clampAdd("member_count", delta)).Error
}

// ReconcileList 按 id 分批读取俱乐部计数
func (r *ClubRepository) ReconcileList(ctx context.Context, batchSize int, lastID uint64) ([]ClubCount, uint64, error) {
	var list []ClubCount
	if err := r.DB.WithContext(ctx).Model(&model.Club{}).
		Select("id", "name", "member_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealMemberCount 用户表中的真实成员数
func (r *ClubRepository) RealMemberCount(ctx context.Context, name string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(club) = ?", strings.ToLower(name)).
		Count(&n).Error
	return n, err
}

func (r *ClubRepository) SetMemberCount(ctx context.Context, clubID uint64, n int64) error {
	return r.DB.WithContext(ctx).Model(&model.Club{}).Where("id = ?", clubID).
		UpdateColumn("member_count", n).Error
}

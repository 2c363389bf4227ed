package mysql

import (
	"context"

	"gorm.io/gorm"

	"club_portal/internal/model"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

// FindByUsername 用户名或邮箱均可登录
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ? OR email = ?", username, username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

// UpdateFields 只更新指定列（允许零值）
func (r *UserRepository) UpdateFields(ctx context.Context, user *model.User, fields ...string) error {
	return r.DB.WithContext(ctx).Model(user).Select(fields).Updates(user).Error
}

// AvatarsByName 批量查询当前头像，空头像也返回，以用户表为准
func (r *UserRepository) AvatarsByName(ctx context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}
	var rows []struct {
		Username       string
		ProfilePicture string
	}
	if err := r.DB.WithContext(ctx).Model(&model.User{}).
		Select("username", "profile_picture").
		Where("username IN ?", names).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Username] = row.ProfilePicture
	}
	return out, nil
}

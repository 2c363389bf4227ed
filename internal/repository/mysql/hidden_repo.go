package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"club_portal/internal/model"
)

type HiddenPostRepository struct {
	DB *gorm.DB
}

func NewHiddenPostRepository(db *gorm.DB) *HiddenPostRepository {
	return &HiddenPostRepository{DB: db}
}

// Add 幂等插入：(user_id, post_ref) 已存在时不报错
func (r *HiddenPostRepository) Add(ctx context.Context, userID uint64, ref string) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_ref"}},
		DoNothing: true,
	}).Create(&model.HiddenPost{UserID: userID, PostRef: ref}).Error
}

// Refs 用户隐藏列表的原始引用
func (r *HiddenPostRepository) Refs(ctx context.Context, userID uint64) ([]string, error) {
	var refs []string
	err := r.DB.WithContext(ctx).Model(&model.HiddenPost{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("post_ref", &refs).Error
	return refs, err
}

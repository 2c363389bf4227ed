package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"club_portal/internal/model"
)

// MaxOutboxRetry 超过该次数的失败事件不再投递
const MaxOutboxRetry = 5

type FollowRepository struct {
	DB *gorm.DB
}

type OutboxRepository struct {
	DB *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{DB: db}
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

// Follow 关注俱乐部（幂等）。从未关注切换为已关注时返回 changed=true。
func (r *FollowRepository) Follow(ctx context.Context, userID, clubID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.ClubFollow
		// select for update 避免竞争
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id=? AND club_id=?", userID, clubID).First(&rel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rel = model.ClubFollow{UserID: userID, ClubID: clubID, Status: 1}
				if err = tx.Create(&rel).Error; err != nil {
					return err
				}
				changed = true
				return insertOutbox(tx, "follow", userID, clubID)
			}
			return err
		}
		// 重复请求
		if rel.Status == 1 {
			return nil
		}
		if err := tx.Model(&model.ClubFollow{}).
			Where("id=? AND status=0", rel.ID).
			Update("status", 1).Error; err != nil {
			return err
		}
		changed = true
		return insertOutbox(tx, "follow", userID, clubID)
	})
	return changed, err
}

// Unfollow 取消关注（幂等）
func (r *FollowRepository) Unfollow(ctx context.Context, userID, clubID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.ClubFollow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id=? AND club_id=?", userID, clubID).First(&rel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if rel.Status == 0 {
			return nil
		}
		if err := tx.Model(&model.ClubFollow{}).
			Where("id=? AND status=1", rel.ID).
			Update("status", 0).Error; err != nil {
			return err
		}
		changed = true
		return insertOutbox(tx, "unfollow", userID, clubID)
	})
	return changed, err
}

func (r *FollowRepository) IsFollowing(ctx context.Context, userID, clubID uint64) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.ClubFollow{}).
		Where("user_id=? AND club_id=? AND status=1", userID, clubID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FollowedClubNames 用户关注的俱乐部名
func (r *FollowRepository) FollowedClubNames(ctx context.Context, userID uint64) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).
		Table("club_follows").
		Joins("JOIN clubs ON clubs.id = club_follows.club_id").
		Where("club_follows.user_id = ? AND club_follows.status = 1", userID).
		Order("clubs.name ASC").
		Pluck("clubs.name", &names).Error
	return names, err
}

// 插入outbox事件表，与业务写入同一事务
func insertOutbox(tx *gorm.DB, event string, userID, targetID uint64) error {
	payload, err := json.Marshal(map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"user_id":    userID,
		"target_id":  targetID,
	})
	if err != nil {
		return err
	}
	return tx.Create(&model.SocialOutbox{
		EventType: event,
		UserID:    userID,
		TargetID:  targetID,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}).Error
}

// List 待投递的事件：新事件以及未超过重试上限的失败事件
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.SocialOutbox, error) {
	var list []model.SocialOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, MaxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败，记录重试次数
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id=?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id=?", id).
		Update("status", model.OutboxSent).Error
}

package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"club_portal/internal/model"
	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
)

type FollowService struct {
	repo  *mysql.FollowRepository
	clubs *ClubService
}

func NewFollowService(repo *mysql.FollowRepository, clubs *ClubService) *FollowService {
	return &FollowService{repo: repo, clubs: clubs}
}

func (s *FollowService) Follow(ctx context.Context, userID uint64, slug string) (bool, error) {
	club, err := s.clubs.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return s.repo.Follow(ctx, userID, club.ID)
}

func (s *FollowService) Unfollow(ctx context.Context, userID uint64, slug string) (bool, error) {
	club, err := s.clubs.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return s.repo.Unfollow(ctx, userID, club.ID)
}

func (s *FollowService) FollowedClubs(ctx context.Context, userID uint64) ([]string, error) {
	return s.repo.FollowedClubNames(ctx, userID)
}

// Sender 事件投递函数
type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer 轮询 outbox 表并投递事件
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(repo *mysql.OutboxRepository, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      repo,
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run 阻塞运行直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		zap.L().Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			zap.L().Warn("outbox send failed", zap.Uint64("id", ob.ID), zap.String("type", ob.EventType), zap.Error(err))
			pkg.OutboxDelivered.WithLabelValues("failed").Inc()
			if err = r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				zap.L().Error("outbox retry update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			continue
		}
		pkg.OutboxDelivered.WithLabelValues("sent").Inc()
		if err = r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			zap.L().Error("outbox success update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender 以用户 id 为 key 投递，保证同一用户事件有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.UserID), []byte(ob.Payload),
			kafka.Header{Key: "event_type", Value: []byte(ob.EventType)})
	}
}

// LogSender 未配置 Kafka 时使用，只打日志
func LogSender(_ context.Context, ob *model.SocialOutbox) error {
	zap.L().Info("outbox event", zap.String("type", ob.EventType),
		zap.Uint64("user_id", ob.UserID), zap.Uint64("target_id", ob.TargetID), zap.String("payload", ob.Payload))
	return nil
}

// MemberCountReconciler 定时用 users.club 校正 clubs.member_count
type MemberCountReconciler struct {
	repo      *mysql.ClubRepository
	batchSize int
}

func NewMemberCountReconciler(repo *mysql.ClubRepository, batchSize int) *MemberCountReconciler {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &MemberCountReconciler{repo: repo, batchSize: batchSize}
}

// Schedule 按 cron 表达式注册对账任务，调用方负责 Start/Stop
func (r *MemberCountReconciler) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.ReconcileOnce(ctx) }); err != nil {
		return nil, err
	}
	return c, nil
}

// ReconcileOnce 对账一轮，返回修正的俱乐部数量
func (r *MemberCountReconciler) ReconcileOnce(ctx context.Context) int {
	fixed := 0
	var lastID uint64
	for {
		clubs, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
		if err != nil {
			zap.L().Error("reconcile list failed", zap.Error(err))
			return fixed
		}
		if len(clubs) == 0 {
			return fixed
		}
		for _, c := range clubs {
			actual, err := r.repo.RealMemberCount(ctx, c.Name)
			if err != nil {
				zap.L().Warn("count members failed", zap.String("club", c.Name), zap.Error(err))
				continue
			}
			if actual == c.MemberCount {
				continue
			}
			if err = r.repo.SetMemberCount(ctx, c.ID, actual); err != nil {
				zap.L().Warn("fix member count failed", zap.String("club", c.Name), zap.Error(err))
				continue
			}
			fixed++
		}
		lastID = next
	}
}

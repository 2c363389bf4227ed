package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club_portal/internal/config"
	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
	"club_portal/internal/repository/redis"
	"club_portal/internal/router"
	"club_portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := pkg.InitLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	pkg.SetSecrets(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	gin.SetMode(cfg.Server.Mode)

	if err := mysql.InitDB(cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns, cfg.MySQL.MaxIdleConns); err != nil {
		zap.L().Fatal("连接 mysql 失败", zap.Error(err))
	}
	// 自动建表（开发阶段 OK）
	if err := mysql.AutoMigrate(mysql.DB); err != nil {
		zap.L().Fatal("自动建表失败", zap.Error(err))
	}

	// 连接redis
	if err := redis.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		zap.L().Fatal("连接 redis 失败", zap.Error(err))
	}
	defer func() { _ = redis.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 仓储
	userRepo := mysql.NewUserRepository(mysql.DB)
	clubRepo := mysql.NewClubRepository(mysql.DB)
	followRepo := mysql.NewFollowRepository(mysql.DB)
	outboxRepo := mysql.NewOutboxRepository(mysql.DB)
	postRepo := mysql.NewPostRepository(mysql.DB)
	commentRepo := mysql.NewCommentRepository(mysql.DB)
	likeRepo := mysql.NewPostLikeRepository(mysql.DB)
	hiddenRepo := mysql.NewHiddenPostRepository(mysql.DB)

	// 服务
	tokens := redis.NewUserRepository(redis.Client)
	hidden := service.NewHiddenService(hiddenRepo, redis.NewHiddenCacheRepository(redis.Client))
	users := service.NewUserService(userRepo, tokens)
	clubs := service.NewClubService(clubRepo, userRepo)
	follows := service.NewFollowService(followRepo, clubs)
	posts := service.NewPostService(postRepo, commentRepo, userRepo, clubRepo, hidden)
	likes := service.NewPostLikeService(likeRepo, postRepo,
		redis.NewLikeCacheRepository(redis.Client), redis.NewDistLock(redis.Client))
	feed := service.NewFeedService(postRepo, userRepo, clubRepo,
		service.NewViewerLoader(userRepo, followRepo, hidden), cfg.Feed.DiscoverySize)

	// outbox 投递：未配置 kafka 时只打日志
	var sender service.Sender = service.LogSender
	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	if err != nil {
		zap.L().Warn("kafka 未启用，outbox 事件仅记录日志", zap.Error(err))
	} else {
		defer func() { _ = producer.Close() }()
		sender = service.KafkaSender(producer)
	}
	go service.NewOutboxRelayer(outboxRepo, sender).Run(ctx)

	reconciler := service.NewMemberCountReconciler(clubRepo, cfg.Reconcile.BatchSize)
	cr, err := reconciler.Schedule(ctx, cfg.Reconcile.Cron)
	if err != nil {
		zap.L().Fatal("注册成员数对账任务失败", zap.String("spec", cfg.Reconcile.Cron), zap.Error(err))
	}
	cr.Start()
	defer cr.Stop()

	r := router.InitRouter(router.Services{
		Users:    users,
		Clubs:    clubs,
		Follows:  follows,
		Posts:    posts,
		PostLike: likes,
		Feed:     feed,
		Tokens:   tokens,
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		zap.L().Info("server started", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
}

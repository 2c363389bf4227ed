package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"club_portal/internal/feed"
	"club_portal/internal/model"
	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
)

// FeedService 首页信息流：取候选、补头像、按请求者分层排序。
// 任一存储读取失败都会中止整个组装，不返回部分结果。
type FeedService struct {
	posts         feed.PostStore
	users         feed.UserDirectory
	clubs         feed.ClubDirectory
	viewers       feed.ViewerSource
	discoverySize int
}

func NewFeedService(posts feed.PostStore, users feed.UserDirectory, clubs feed.ClubDirectory,
	viewers feed.ViewerSource, discoverySize int) *FeedService {
	if discoverySize <= 0 {
		discoverySize = feed.DefaultDiscoverySize
	}
	return &FeedService{
		posts:         posts,
		users:         users,
		clubs:         clubs,
		viewers:       viewers,
		discoverySize: discoverySize,
	}
}

// Viewer 未登录或用户已不存在时降级为匿名
func (s *FeedService) Viewer(ctx context.Context, userID uint64) (model.Viewer, error) {
	if userID == 0 {
		return model.AnonymousViewer(), nil
	}
	v, err := s.viewers.ViewerContext(ctx, userID)
	if errors.Is(err, feed.ErrViewerNotFound) {
		return model.AnonymousViewer(), nil
	}
	if err != nil {
		return model.Viewer{}, fmt.Errorf("load viewer: %w", err)
	}
	return v, nil
}

func (s *FeedService) Feed(ctx context.Context, userID uint64) ([]*model.FeedPost, error) {
	start := time.Now()
	posts, err := s.assemble(ctx, userID)
	if err != nil {
		pkg.FeedFailures.Inc()
		return nil, err
	}
	pkg.FeedAssembleDuration.Observe(time.Since(start).Seconds())
	return posts, nil
}

func (s *FeedService) assemble(ctx context.Context, userID uint64) ([]*model.FeedPost, error) {
	viewer, err := s.Viewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.posts.FeedCandidates(ctx, feed.ParseHidden(viewer.Hidden))
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	if names := feed.AuthorNames(candidates); len(names) > 0 {
		avatars, err := s.users.AvatarsByName(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("hydrate avatars: %w", err)
		}
		feed.HydrateAvatars(candidates, avatars)
	}

	var discovery []string
	if feed.IsColdStart(viewer) {
		clubs, err := s.clubs.SmallestClubs(ctx, s.discoverySize)
		if err != nil {
			return nil, fmt.Errorf("load discovery clubs: %w", err)
		}
		for _, c := range clubs {
			discovery = append(discovery, c.Name)
		}
	}

	tiers := feed.Rank(viewer, candidates, discovery)
	for t, bucket := range tiers {
		if len(bucket) > 0 {
			pkg.FeedPostsServed.WithLabelValues(feed.Tier(t).String()).Add(float64(len(bucket)))
		}
	}
	return tiers.Flatten(), nil
}

// ViewerLoader 从用户表、关注表和隐藏列表组装请求者上下文
type ViewerLoader struct {
	users   *mysql.UserRepository
	follows *mysql.FollowRepository
	hidden  *HiddenService
}

func NewViewerLoader(users *mysql.UserRepository, follows *mysql.FollowRepository, hidden *HiddenService) *ViewerLoader {
	return &ViewerLoader{users: users, follows: follows, hidden: hidden}
}

func (l *ViewerLoader) ViewerContext(ctx context.Context, userID uint64) (model.Viewer, error) {
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Viewer{}, feed.ErrViewerNotFound
		}
		return model.Viewer{}, err
	}
	follows, err := l.follows.FollowedClubNames(ctx, userID)
	if err != nil {
		return model.Viewer{}, err
	}
	hidden, err := l.hidden.Refs(ctx, userID)
	if err != nil {
		return model.Viewer{}, err
	}
	return model.Viewer{
		ID:        user.ID,
		Club:      user.Club,
		Follows:   follows,
		Interests: user.Interests,
		Hidden:    hidden,
	}, nil
}

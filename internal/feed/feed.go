// Package feed 负责首页信息流的组装：可见性过滤、分层归类与排序。
//
// 组装过程只依赖传入的快照和请求者上下文，不持有任何跨请求状态，
// 同一快照、同一上下文多次调用得到的顺序完全一致。
package feed

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"club_portal/internal/model"
)

// DefaultDiscoverySize 冷启动用户推荐的小俱乐部数量
const DefaultDiscoverySize = 3

// ErrViewerNotFound 令牌有效但用户已不存在，按匿名处理
var ErrViewerNotFound = errors.New("viewer not found")

// PostStore 候选帖子：排除隐藏列表，按 (isGlobal desc, timestamp desc) 排序，
// 并按俱乐部名（忽略大小写）左连接 logo / slug / category。
type PostStore interface {
	FeedCandidates(ctx context.Context, hidden []uint64) ([]*model.FeedPost, error)
}

// UserDirectory 批量查询用户当前头像，返回 username -> profilePicture
type UserDirectory interface {
	AvatarsByName(ctx context.Context, names []string) (map[string]string, error)
}

// ClubDirectory 按成员数升序取前 n 个俱乐部
type ClubDirectory interface {
	SmallestClubs(ctx context.Context, n int) ([]model.Club, error)
}

// ViewerSource 加载登录用户的俱乐部、关注、兴趣和隐藏列表
type ViewerSource interface {
	ViewerContext(ctx context.Context, userID uint64) (model.Viewer, error)
}

// ParseHidden 把隐藏列表转成帖子 id，非法引用直接忽略
func ParseHidden(refs []string) []uint64 {
	ids := make([]uint64, 0, len(refs))
	seen := make(map[uint64]struct{}, len(refs))
	for _, ref := range refs {
		id, err := strconv.ParseUint(strings.TrimSpace(ref), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// AuthorNames 收集帖子作者以及所有评论、回复作者（去重、排序）
func AuthorNames(posts []*model.FeedPost) []string {
	set := make(map[string]struct{})
	var walk func(cs []*model.FeedComment)
	walk = func(cs []*model.FeedComment) {
		for _, c := range cs {
			if c.Author != "" {
				set[c.Author] = struct{}{}
			}
			walk(c.Replies)
		}
	}
	for _, p := range posts {
		if p.Author != "" {
			set[p.Author] = struct{}{}
		}
		walk(p.Comments)
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HydrateAvatars 用户表里的头像为准，覆盖帖子和评论上冗余存储的旧头像
func HydrateAvatars(posts []*model.FeedPost, avatars map[string]string) {
	if len(avatars) == 0 {
		return
	}
	var walk func(cs []*model.FeedComment)
	walk = func(cs []*model.FeedComment) {
		for _, c := range cs {
			if pic, ok := avatars[c.Author]; ok {
				c.Avatar = pic
			}
			walk(c.Replies)
		}
	}
	for _, p := range posts {
		if pic, ok := avatars[p.Author]; ok {
			p.AuthorAvatar = pic
		}
		walk(p.Comments)
	}
}

// VisibleTo club-only 帖子只对本俱乐部成员可见；全站公告和公开帖不受限制
func VisibleTo(v model.Viewer, p *model.FeedPost) bool {
	if p.IsGlobal || p.Visibility != model.VisibilityClubOnly {
		return true
	}
	club := viewerClub(v)
	return club != "" && club == p.ClubName
}

// IsColdStart 没有俱乐部、没有关注、没有兴趣
func IsColdStart(v model.Viewer) bool {
	return viewerClub(v) == "" && len(nonEmpty(v.Follows)) == 0 && len(nonEmpty(v.Interests)) == 0
}

func viewerClub(v model.Viewer) string {
	if !model.IsRealClub(v.Club) {
		return ""
	}
	return v.Club
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

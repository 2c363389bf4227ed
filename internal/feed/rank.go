package feed

import (
	"strings"

	"club_portal/internal/model"
)

// Tier 信息流分层，按声明顺序输出
type Tier int

const (
	TierPriority Tier = iota
	TierInterest
	TierDiscovery
	TierOther

	tierCount
)

func (t Tier) String() string {
	switch t {
	case TierPriority:
		return "priority"
	case TierInterest:
		return "interest"
	case TierDiscovery:
		return "discovery"
	default:
		return "other"
	}
}

const (
	ReasonMember      = "Member"
	ReasonFollowing   = "Following"
	ReasonSuggested   = "Suggested for You"
	recommendedPrefix = "Recommended: "
)

func RecommendedReason(category string) string {
	return recommendedPrefix + category
}

// signals 单次请求内预处理好的个性化信号
type signals struct {
	club      string
	follows   map[string]struct{} // 小写俱乐部名
	interests map[string]struct{}
	discovery map[string]struct{} // 小写俱乐部名
}

func newSignals(v model.Viewer, discovery []string) *signals {
	s := &signals{
		club:      viewerClub(v),
		follows:   make(map[string]struct{}, len(v.Follows)),
		interests: make(map[string]struct{}, len(v.Interests)),
		discovery: make(map[string]struct{}, len(discovery)),
	}
	for _, f := range v.Follows {
		if f = strings.TrimSpace(f); f != "" {
			s.follows[strings.ToLower(f)] = struct{}{}
		}
	}
	for _, i := range v.Interests {
		if i = strings.TrimSpace(i); i != "" {
			s.interests[i] = struct{}{}
		}
	}
	// 有任何信号的用户不参与发现推荐
	if IsColdStart(v) {
		for _, d := range discovery {
			if d = strings.TrimSpace(d); d != "" {
				s.discovery[strings.ToLower(d)] = struct{}{}
			}
		}
	}
	return s
}

// rule 返回 (理由, 是否命中)
type rule struct {
	tier  Tier
	match func(s *signals, p *model.FeedPost) (string, bool)
}

// rules 按顺序匹配，先命中者生效
var rules = []rule{
	{tier: TierPriority, match: matchPriority},
	{tier: TierInterest, match: matchInterest},
	{tier: TierDiscovery, match: matchDiscovery},
}

func matchPriority(s *signals, p *model.FeedPost) (string, bool) {
	if p.ClubName == "" {
		return "", false
	}
	// Member 优先于 Following
	if s.club != "" && s.club == p.ClubName {
		return ReasonMember, true
	}
	if _, ok := s.follows[strings.ToLower(p.ClubName)]; ok {
		return ReasonFollowing, true
	}
	return "", false
}

func matchInterest(s *signals, p *model.FeedPost) (string, bool) {
	if p.ClubCategory == nil || *p.ClubCategory == "" {
		return "", false
	}
	if _, ok := s.interests[*p.ClubCategory]; ok {
		return RecommendedReason(*p.ClubCategory), true
	}
	return "", false
}

func matchDiscovery(s *signals, p *model.FeedPost) (string, bool) {
	if p.ClubName == "" || len(s.discovery) == 0 {
		return "", false
	}
	if _, ok := s.discovery[strings.ToLower(p.ClubName)]; ok {
		return ReasonSuggested, true
	}
	return "", false
}

func (s *signals) classify(p *model.FeedPost) (Tier, string) {
	for _, r := range rules {
		if reason, ok := r.match(s, p); ok {
			return r.tier, reason
		}
	}
	return TierOther, ""
}

// Classify 单帖归类，供测试和调试使用
func Classify(v model.Viewer, discovery []string, p *model.FeedPost) (Tier, string) {
	return newSignals(v, discovery).classify(p)
}

// Tiers 分层结果
type Tiers [tierCount][]*model.FeedPost

// Flatten 按 Priority, Interest, Discovery, Other 顺序拼接
func (t *Tiers) Flatten() []*model.FeedPost {
	n := 0
	for _, bucket := range t {
		n += len(bucket)
	}
	out := make([]*model.FeedPost, 0, n)
	for _, bucket := range t {
		out = append(out, bucket...)
	}
	return out
}

// Rank 过滤不可见帖子后做稳定分区，层内保持候选集原有顺序。
// 返回的是副本，输入快照不被修改。
func Rank(v model.Viewer, candidates []*model.FeedPost, discovery []string) Tiers {
	s := newSignals(v, discovery)
	var tiers Tiers
	for _, p := range candidates {
		if !VisibleTo(v, p) {
			continue
		}
		cp := *p
		cp.LikesCount = len(cp.Likes)
		cp.IsLiked = v.ID != 0 && containsID(cp.Likes, v.ID)
		tier, reason := s.classify(&cp)
		cp.PriorityReason = reason
		tiers[tier] = append(tiers[tier], &cp)
	}
	return tiers
}

// Assemble 完整的排序输出
func Assemble(v model.Viewer, candidates []*model.FeedPost, discovery []string) []*model.FeedPost {
	tiers := Rank(v, candidates, discovery)
	return tiers.Flatten()
}

func containsID(ids []uint64, id uint64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

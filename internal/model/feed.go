package model

import "time"

type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type FeedComment struct {
	ID        uint64         `json:"id"`
	Author    string         `json:"author"`
	Avatar    string         `json:"avatar"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Replies   []*FeedComment `json:"replies,omitempty"`
}

// FeedPost 帖子及其读时派生字段（点赞数、是否点赞、推荐理由、俱乐部信息）
type FeedPost struct {
	ID             uint64         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Media          *Media         `json:"media,omitempty"`
	ClubName       string         `json:"clubname"`
	Author         string         `json:"author"`
	AuthorAvatar   string         `json:"authorAvatar"`
	Visibility     string         `json:"visibility"`
	Timestamp      time.Time      `json:"timestamp"`
	IsGlobal       bool           `json:"isGlobal"`
	Likes          []uint64       `json:"likes"`
	Comments       []*FeedComment `json:"comments"`
	LikesCount     int            `json:"likesCount"`
	IsLiked        bool           `json:"isLiked"`
	PriorityReason string         `json:"priorityReason,omitempty"`
	ClubLogo       *string        `json:"clubLogo"`
	ClubSlug       *string        `json:"clubSlug"`
	ClubCategory   *string        `json:"clubCategory"`
}

// Viewer 请求者的个性化上下文，匿名用户 ID 为 0 且其余字段为空
type Viewer struct {
	ID        uint64
	Club      string
	Follows   []string
	Interests []string
	Hidden    []string
}

func AnonymousViewer() Viewer {
	return Viewer{Club: ClubNone}
}

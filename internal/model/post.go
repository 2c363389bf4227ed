package model

import "time"

const (
	VisibilityPublic   = "public"
	VisibilityClubOnly = "club-only"

	MediaNone  = "none"
	MediaImage = "image"
	MediaVideo = "video"

	PostNormal  = 0
	PostDeleted = 1
)

type Post struct {
	ID           uint64    `gorm:"primaryKey"`
	Title        string    `gorm:"size:200;not null"`
	Content      string    `gorm:"type:text"`
	MediaURL     string    `gorm:"size:255"`
	MediaType    string    `gorm:"size:8;not null;default:none"`
	ClubName     string    `gorm:"size:64;index"`
	Author       string    `gorm:"size:32;not null;index"`
	AuthorAvatar string    `gorm:"size:255"`
	Visibility   string    `gorm:"size:16;not null;default:public"`
	IsGlobal     bool      `gorm:"not null;default:false;index:idx_global_time,priority:1"`
	Status       int       `gorm:"not null;default:0"` // 0=normal 1=deleted
	CreatedAt    time.Time `gorm:"index:idx_global_time,priority:2"`
	UpdatedAt    time.Time
}

// Comment 评论，ParentID>0 时为回复
type Comment struct {
	ID           uint64 `gorm:"primaryKey"`
	PostID       uint64 `gorm:"not null;index"`
	ParentID     uint64 `gorm:"not null;default:0;index"`
	Author       string `gorm:"size:32;not null"`
	AuthorAvatar string `gorm:"size:255"`
	Content      string `gorm:"type:text;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HiddenPost 用户隐藏的帖子；PostRef 为原始字符串，旧数据中可能不是合法 id
type HiddenPost struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_ref"`
	PostRef   string `gorm:"size:64;not null;uniqueIndex:uk_user_ref"`
	CreatedAt time.Time
}

func (HiddenPost) TableName() string { return "hidden_posts" }

package model

import "time"

// ClubFollow 用户关注俱乐部
type ClubFollow struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_club"`
	ClubID    uint64 `gorm:"not null;uniqueIndex:uk_user_club;index"`
	Status    int8   `gorm:"not null;default:1;comment:'1=follow,0=unfollow'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ClubFollow) TableName() string {
	return "club_follows"
}

const (
	OutboxPending = 0
	OutboxSent    = 1
	OutboxFailed  = 2
)

// SocialOutbox 社交事件（关注/点赞）投递表
type SocialOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // follow / unfollow / like / unlike
	UserID    uint64 `gorm:"not null"`
	TargetID  uint64 `gorm:"not null"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SocialOutbox) TableName() string { return "social_outbox" }

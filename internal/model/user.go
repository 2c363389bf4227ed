package model

import "time"

const (
	RoleStudent = 0
	RoleStaff   = 1 // 俱乐部干事，可在本俱乐部发帖
	RoleAdmin   = 2
)

// 未加入俱乐部时 Club 字段的取值
const (
	ClubNone    = "none"
	ClubPending = "pending"
)

type User struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	Role           int       `gorm:"not null;default:0" json:"role"`
	Email          string    `gorm:"uniqueIndex;size:64;not null" json:"email"`
	ProfilePicture string    `gorm:"size:255" json:"profilePicture"`
	Club           string    `gorm:"size:64;not null;index" json:"club"`
	Interests      []string  `gorm:"type:text;serializer:json" json:"interests"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasClub none / pending 都视为没有俱乐部
func (u *User) HasClub() bool {
	return IsRealClub(u.Club)
}

func IsRealClub(club string) bool {
	return club != "" && club != ClubNone && club != ClubPending
}

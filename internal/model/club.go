package model

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type Club struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:64;not null" json:"urlSlug"`
	Name        string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:64;index" json:"category"`
	Logo        string    `gorm:"size:255" json:"logo"`
	Banner      string    `gorm:"size:255" json:"banner"`
	ThemeColor  string    `gorm:"size:16" json:"themeColor"`
	MemberCount int64     `gorm:"not null;default:0;index" json:"memberCount"`
	CreatorID   uint64    `gorm:"not null" json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Category 历史数据里分类既可能是字符串也可能是字符串数组，
// 入库前统一成单值：字符串原样保留，数组取第一个非空元素。
type Category string

func (c *Category) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Category(strings.TrimSpace(s))
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*c = ""
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				*c = Category(s)
				break
			}
		}
		return nil
	}
	return fmt.Errorf("category: unsupported json value %s", string(b))
}

func (c Category) String() string {
	return string(c)
}

package feed

import (
	"time"

	"github.com/beelyapp/beely/internal/catalog"
)

// Video.IsActive carries no gorm default so that false is written as-is.
type Video struct {
	ID         uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID uint64            `gorm:"index:idx_videos_category_active,priority:1;not null" json:"category_id"`
	Category   *catalog.Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	VideoURL   string            `gorm:"type:varchar(2048);not null" json:"video_url"`
	IsActive   bool              `gorm:"index:idx_videos_category_active,priority:2;not null" json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Video) TableName() string { return "videos" }

// LikedVideo exists while the user likes the video; unliking deletes the row.
type LikedVideo struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uniq_liked_user_video,priority:1"`
	VideoID   uint64    `gorm:"not null;uniqueIndex:uniq_liked_user_video,priority:2;index"`
	CreatedAt time.Time `gorm:"index"`
}

func (LikedVideo) TableName() string { return "liked_videos" }

// VideoView is the wire form of a feed item.
type VideoView struct {
	ID       uint64          `json:"id"`
	VideoURL string          `json:"video_url"`
	Category *catalog.Detail `json:"category"`
}

type LikedVideoView struct {
	VideoView
	LikedAt time.Time `json:"liked_at"`
}

func toView(v Video) VideoView {
	out := VideoView{ID: v.ID, VideoURL: v.VideoURL}
	if v.Category != nil {
		out.Category = &catalog.Detail{Name: v.Category.Name, Slug: v.Category.Slug, Icon: v.Category.Icon}
	}
	return out
}

package feed

import (
	"context"
	"errors"

	"github.com/beelyapp/beely/internal/metrics"
	"gorm.io/gorm"
)

type Likes struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewLikes(db *gorm.DB, m *metrics.Metrics) *Likes {
	if m == nil {
		m = metrics.Nop()
	}
	return &Likes{db: db, metrics: m}
}

// Toggle flips the like of userID on videoID and reports the new state.
func (l *Likes) Toggle(ctx context.Context, userID, videoID uint64) (bool, error) {
	var liked bool
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Video{}).Where("id = ?", videoID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrVideoNotFound
		}

		var existing LikedVideo
		err := tx.Where("user_id = ? AND video_id = ?", userID, videoID).First(&existing).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&LikedVideo{UserID: userID, VideoID: videoID}).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, err
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	l.metrics.LikeToggles.WithLabelValues(state).Inc()
	return liked, nil
}

// ListLiked returns the user's liked videos, most recently liked first.
func (l *Likes) ListLiked(ctx context.Context, userID uint64) ([]LikedVideoView, error) {
	var likes []LikedVideo
	if err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error; err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return []LikedVideoView{}, nil
	}

	ids := make([]uint64, 0, len(likes))
	for _, lk := range likes {
		ids = append(ids, lk.VideoID)
	}
	videos, err := NewRepo(l.db).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	out := make([]LikedVideoView, 0, len(likes))
	for _, lk := range likes {
		v, ok := byID[lk.VideoID]
		if !ok {
			continue
		}
		out = append(out, LikedVideoView{VideoView: toView(v), LikedAt: lk.CreatedAt})
	}
	return out, nil
}

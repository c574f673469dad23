package feed

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrVideoNotFound = errors.New("video not found")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// ActiveIDs returns the ids of active videos in one category.
func (r *Repo) ActiveIDs(ctx context.Context, categoryID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&Video{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// LikedActiveIDs returns the active videos userID has liked.
func (r *Repo) LikedActiveIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&Video{}).
		Joins("JOIN liked_videos ON liked_videos.video_id = videos.id").
		Where("liked_videos.user_id = ? AND videos.is_active = ?", userID, true).
		Order("videos.id ASC").
		Pluck("videos.id", &ids).Error
	return ids, err
}

// LikedIDs returns every video id userID has liked, active or not.
func (r *Repo) LikedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).Model(&LikedVideo{}).
		Where("user_id = ?", userID).
		Order("video_id ASC").
		Pluck("video_id", &ids).Error
	return ids, err
}

// GetByIDs loads videos with their category, in the order of ids.
func (r *Repo) GetByIDs(ctx context.Context, ids []uint64) ([]Video, error) {
	if len(ids) == 0 {
		return []Video{}, nil
	}
	var rows []Video
	if err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]Video, len(rows))
	for _, v := range rows {
		byID[v.ID] = v
	}
	out := make([]Video, 0, len(rows))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Video, error) {
	var v Video
	if err := r.db.WithContext(ctx).Preload("Category").First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repo) List(ctx context.Context) ([]Video, error) {
	var rows []Video
	err := r.db.WithContext(ctx).Preload("Category").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *Repo) Create(ctx context.Context, v *Video) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *Repo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", id).Delete(&LikedVideo{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Video{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVideoNotFound
		}
		return nil
	})
}

func (r *Repo) SetActive(ctx context.Context, id uint64, active bool) error {
	res := r.db.WithContext(ctx).Model(&Video{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// mysql reports 0 affected rows when the value is unchanged
		var n int64
		if err := r.db.WithContext(ctx).Model(&Video{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrVideoNotFound
		}
	}
	return nil
}

func (r *Repo) Count(ctx context.Context, onlyActive bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&Video{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

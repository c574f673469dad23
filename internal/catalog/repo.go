package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name or slug already exists")
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) List(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// Snapshot loads the current catalog. Callers take one per request.
func (r *Repo) Snapshot(ctx context.Context) (*Snapshot, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(cats), nil
}

func (r *Repo) ListWithVideoCounts(ctx context.Context) ([]CategoryWithCount, error) {
	var rows []CategoryWithCount
	err := r.db.WithContext(ctx).
		Model(&Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM videos WHERE videos.category_id = categories.id) AS videos_count").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindBySlugs returns the matching categories in the order of slugs.
func (r *Repo) FindBySlugs(ctx context.Context, slugs []string) ([]Category, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var cats []Category
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&cats).Error; err != nil {
		return nil, err
	}
	snap := NewSnapshot(cats)
	out := make([]Category, 0, len(cats))
	for _, slug := range snap.Filter(slugs) {
		c, _ := snap.Get(slug)
		out = append(out, c)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, c *Category) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Category{}).
		Where("name = ? OR slug = ?", c.Name, c.Slug).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryExists
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCategoryExists
		}
		return err
	}
	return nil
}

// Delete removes the category together with its videos and their likes.
func (r *Repo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM liked_videos WHERE video_id IN (SELECT id FROM videos WHERE category_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM videos WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Category{}).Count(&n).Error
	return n, err
}

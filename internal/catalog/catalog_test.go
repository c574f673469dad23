package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// minimal rows for the tables category deletion and counting touch
type testVideo struct {
	ID         uint64 `gorm:"primaryKey"`
	CategoryID uint64
	VideoURL   string
}

func (testVideo) TableName() string { return "videos" }

type testLike struct {
	ID      uint64 `gorm:"primaryKey"`
	UserID  uint64
	VideoID uint64
}

func (testLike) TableName() string { return "liked_videos" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}, &testVideo{}, &testLike{}))
	return db
}

func seed(t *testing.T, repo *Repo, slugs ...string) []Category {
	t.Helper()
	out := make([]Category, 0, len(slugs))
	for _, s := range slugs {
		c := Category{Name: strings.ToUpper(s), Slug: s, Icon: "Zap", Description: s + " videos"}
		require.NoError(t, repo.Create(context.Background(), &c))
		out = append(out, c)
	}
	return out
}

func TestSnapshot_FilterKeepsOrderAndDropsUnknown(t *testing.T) {
	snap := NewSnapshot([]Category{
		{Name: "Stres Yönetimi", Slug: "stres", Icon: "Wind"},
		{Name: "Meditasyon", Slug: "meditasyon", Icon: "Sparkles"},
		{Name: "Rahatlama", Slug: "rahatlama", Icon: "Heart"},
	})

	assert.True(t, snap.Has("stres"))
	assert.False(t, snap.Has("yemek"))
	assert.Equal(t, []string{"rahatlama", "stres"}, snap.Filter([]string{"rahatlama", "yemek", "stres", "rahatlama"}))

	details := snap.Details([]string{"meditasyon", "nope"})
	require.Len(t, details, 1)
	assert.Equal(t, Detail{Name: "Meditasyon", Slug: "meditasyon", Icon: "Sparkles"}, details[0])
}

func TestSnapshot_AllIsACopy(t *testing.T) {
	snap := NewSnapshot([]Category{{Name: "Spor", Slug: "spor"}})
	all := snap.All()
	all[0].Slug = "changed"
	assert.True(t, snap.Has("spor"))
	assert.Equal(t, 1, snap.Len())
}

func TestRepo_CreateRejectsDuplicates(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo, "spor")

	err := repo.Create(context.Background(), &Category{Name: "Other", Slug: "spor", Icon: "x"})
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestRepo_FindBySlugsPreservesOrder(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo, "doga", "muzik", "uyku")

	cats, err := repo.FindBySlugs(context.Background(), []string{"uyku", "missing", "doga"})
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "uyku", cats[0].Slug)
	assert.Equal(t, "doga", cats[1].Slug)

	_, err = repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepo_CountsAndCascadeDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	cats := seed(t, repo, "spor", "uyku")

	require.NoError(t, db.Create(&testVideo{CategoryID: cats[0].ID, VideoURL: "a"}).Error)
	require.NoError(t, db.Create(&testVideo{CategoryID: cats[0].ID, VideoURL: "b"}).Error)
	require.NoError(t, db.Create(&testVideo{CategoryID: cats[1].ID, VideoURL: "c"}).Error)
	require.NoError(t, db.Create(&testLike{UserID: 1, VideoID: 1}).Error)

	rows, err := repo.ListWithVideoCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Slug] = r.VideosCount
	}
	assert.Equal(t, map[string]int64{"spor": 2, "uyku": 1}, counts)

	require.NoError(t, repo.Delete(context.Background(), cats[0].ID))

	var videos, likes int64
	db.Model(&testVideo{}).Count(&videos)
	db.Model(&testLike{}).Count(&likes)
	assert.Equal(t, int64(1), videos)
	assert.Equal(t, int64(0), likes)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, repo.Delete(context.Background(), cats[0].ID), ErrCategoryNotFound)
}

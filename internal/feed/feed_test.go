package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beelyapp/beely/internal/catalog"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Category{}, &Video{}, &LikedVideo{}))
	return db
}

// seedCategory creates a category with active and inactive videos.
func seedCategory(t *testing.T, db *gorm.DB, slug string, active, inactive int) catalog.Category {
	t.Helper()
	c := catalog.Category{Name: strings.ToUpper(slug), Slug: slug, Icon: "Zap"}
	require.NoError(t, db.Create(&c).Error)
	for i := 0; i < active+inactive; i++ {
		v := Video{CategoryID: c.ID, VideoURL: fmt.Sprintf("https://cdn/%s/%d.mp4", slug, i), IsActive: i < active}
		require.NoError(t, db.Create(&v).Error)
	}
	return c
}

func newTestComposer(db *gorm.DB, limit int) *Composer {
	return NewComposerWithRand(NewRepo(db), catalog.NewRepo(db), limit, nil, rand.New(rand.NewPCG(1, 2)))
}

func TestQuota(t *testing.T) {
	assert.Equal(t, 12, Quota(10, 50, 4))
	assert.Equal(t, 10, Quota(10, 50, 6))
	assert.Equal(t, 16, Quota(10, 50, 3))
	assert.Equal(t, 5, Quota(5, 50, 12))
	assert.Equal(t, 0, Quota(5, 50, 0))
}

func TestBuild_DefaultIsBalancedAndActiveOnly(t *testing.T) {
	db := openTestDB(t)
	for _, s := range []string{"spor", "uyku", "doga", "muzik"} {
		seedCategory(t, db, s, 15, 5)
	}

	page, err := newTestComposer(db, 50).Build(context.Background(), 1, "", "")
	require.NoError(t, err)

	// four categories, limit 50 -> 12 each
	require.Len(t, page.Videos, 48)
	perCat := map[string]int{}
	for _, v := range page.Videos {
		require.NotNil(t, v.Category)
		perCat[v.Category.Slug]++
	}
	for slug, n := range perCat {
		assert.Equal(t, 12, n, slug)
	}

	var inactive []uint64
	require.NoError(t, db.Model(&Video{}).Where("is_active = ?", false).Pluck("id", &inactive).Error)
	for _, v := range page.Videos {
		assert.NotContains(t, inactive, v.ID)
	}
	assert.False(t, page.IsPersonalized)
	assert.Nil(t, page.Category)
	assert.Len(t, page.Categories, 4)
}

func TestBuild_DefaultUsesFloorWhenManyCategories(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 12; i++ {
		seedCategory(t, db, fmt.Sprintf("c%02d", i), 8, 0)
	}

	page, err := newTestComposer(db, 50).Build(context.Background(), 1, "", "")
	require.NoError(t, err)
	assert.Len(t, page.Videos, 12*5)
}

func TestBuild_Personalized(t *testing.T) {
	db := openTestDB(t)
	for _, s := range []string{"spor", "uyku", "doga", "muzik"} {
		seedCategory(t, db, s, 20, 2)
	}
	comp := newTestComposer(db, 50)

	page, err := comp.Build(context.Background(), 1, SlugPersonalized, "uyku, yemek,doga,spor,muzik")
	require.NoError(t, err)
	assert.True(t, page.IsPersonalized)
	require.Len(t, page.PersonalizedCategories, 3)
	assert.Equal(t, "uyku", page.PersonalizedCategories[0].Slug)
	// three categories, limit 50 -> 16 each
	assert.Len(t, page.Videos, 48)
	for _, v := range page.Videos {
		assert.NotEqual(t, "muzik", v.Category.Slug)
	}

	page, err = comp.Build(context.Background(), 1, SlugPersonalized, "")
	require.NoError(t, err)
	assert.False(t, page.IsPersonalized)
	assert.Empty(t, page.Videos)
}

func TestBuild_SingleAndUnknown(t *testing.T) {
	db := openTestDB(t)
	seedCategory(t, db, "spor", 60, 3)
	seedCategory(t, db, "uyku", 4, 0)
	comp := newTestComposer(db, 50)

	page, err := comp.Build(context.Background(), 1, "spor", "")
	require.NoError(t, err)
	require.NotNil(t, page.Category)
	assert.Equal(t, "spor", page.Category.Slug)
	assert.Len(t, page.Videos, 50)

	page, err = comp.Build(context.Background(), 1, "yok-boyle-bir-sey", "")
	require.NoError(t, err)
	assert.Nil(t, page.Category)
	assert.Empty(t, page.Videos)
}

func TestLikesToggleAndLikedFeed(t *testing.T) {
	db := openTestDB(t)
	seedCategory(t, db, "spor", 3, 1)
	likes := NewLikes(db, nil)
	ctx := context.Background()

	liked, err := likes.Toggle(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = likes.Toggle(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, liked)

	var n int64
	db.Model(&LikedVideo{}).Where("user_id = ?", 7).Count(&n)
	assert.Equal(t, int64(0), n)

	_, err = likes.Toggle(ctx, 7, 999)
	assert.ErrorIs(t, err, ErrVideoNotFound)

	// like one active and the inactive video
	_, err = likes.Toggle(ctx, 7, 2)
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, 7, 4)
	require.NoError(t, err)

	page, err := newTestComposer(db, 50).Build(ctx, 7, SlugLiked, "")
	require.NoError(t, err)
	assert.True(t, page.IsLikedFeed)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, uint64(2), page.Videos[0].ID)
	assert.ElementsMatch(t, []uint64{2, 4}, page.LikedVideoIDs)

	list, err := likes.ListLiked(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "spor", list[0].Category.Slug)
}

func TestProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.mp4":
			w.WriteHeader(http.StatusOK)
		case "/gone.mp4":
			w.WriteHeader(http.StatusNotFound)
		case "/nohead.mp4":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusPartialContent)
		}
	}))
	defer srv.Close()

	db := openTestDB(t)
	c := catalog.Category{Name: "Spor", Slug: "spor", Icon: "Dumbbell"}
	require.NoError(t, db.Create(&c).Error)
	ok := Video{CategoryID: c.ID, VideoURL: srv.URL + "/ok.mp4", IsActive: false}
	gone := Video{CategoryID: c.ID, VideoURL: srv.URL + "/gone.mp4", IsActive: true}
	nohead := Video{CategoryID: c.ID, VideoURL: srv.URL + "/nohead.mp4", IsActive: false}
	for _, v := range []*Video{&ok, &gone, &nohead} {
		require.NoError(t, db.Create(v).Error)
	}

	repo := NewRepo(db)
	p := NewProber(repo, time.Second, nil)
	ctx := context.Background()

	active, err := p.Probe(ctx, ok.ID)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = p.Probe(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = p.Probe(ctx, nohead.ID)
	require.NoError(t, err)
	assert.True(t, active)

	got, err := repo.GetByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = p.Probe(ctx, 12345)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

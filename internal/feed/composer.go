package feed

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/metrics"
	"github.com/beelyapp/beely/internal/mood"
)

type Mode string

const (
	ModeSingle       Mode = "single"
	ModePersonalized Mode = "personalized"
	ModeLiked        Mode = "liked"
	ModeDefault      Mode = "default"
)

// Route slugs that select a mode instead of a category.
const (
	SlugPersonalized = "sana-ozel"
	SlugLiked        = "liked"
)

const (
	DefaultLimit      = 50
	personalizedFloor = 10
	defaultFloor      = 5
)

// Quota is the per-category draw size: max(floor, limit/count).
func Quota(floor, limit, count int) int {
	if count <= 0 {
		return 0
	}
	return max(floor, limit/count)
}

// Page is the full feed payload.
type Page struct {
	Category               *catalog.Category  `json:"category"`
	IsPersonalized         bool               `json:"is_personalized"`
	IsLikedFeed            bool               `json:"is_liked_feed"`
	PersonalizedCategories []catalog.Category `json:"personalized_categories"`
	Videos                 []VideoView        `json:"videos"`
	LikedVideoIDs          []uint64           `json:"liked_video_ids"`
	Categories             []catalog.Category `json:"categories"`
}

type Composer struct {
	repo    *Repo
	catalog *catalog.Repo
	limit   int
	metrics *metrics.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

func NewComposer(repo *Repo, catalogRepo *catalog.Repo, limit int, m *metrics.Metrics) *Composer {
	seed := uint64(time.Now().UnixNano())
	return NewComposerWithRand(repo, catalogRepo, limit, m, rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// NewComposerWithRand takes the random source, so tests can be reproducible.
func NewComposerWithRand(repo *Repo, catalogRepo *catalog.Repo, limit int, m *metrics.Metrics, rng *rand.Rand) *Composer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Composer{repo: repo, catalog: catalogRepo, limit: limit, metrics: m, rng: rng}
}

// Build resolves the route slug into a mode and composes the page for userID.
// categoriesParam is the comma separated list used by the personalized feed.
func (c *Composer) Build(ctx context.Context, userID uint64, routeSlug, categoriesParam string) (*Page, error) {
	cats, err := c.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	liked, err := c.repo.LikedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	page := &Page{
		PersonalizedCategories: []catalog.Category{},
		Videos:                 []VideoView{},
		LikedVideoIDs:          liked,
		Categories:             cats,
	}
	snap := catalog.NewSnapshot(cats)

	var (
		mode Mode
		ids  []uint64
	)
	switch routeSlug {
	case "":
		mode = ModeDefault
		ids, err = c.drawBalanced(ctx, cats, defaultFloor)
	case SlugLiked:
		mode = ModeLiked
		page.IsLikedFeed = true
		ids, err = c.drawLiked(ctx, userID)
	case SlugPersonalized:
		mode = ModePersonalized
		slugs := ParseSlugs(categoriesParam, snap)
		if len(slugs) == 0 {
			break
		}
		for _, s := range slugs {
			cat, _ := snap.Get(s)
			page.PersonalizedCategories = append(page.PersonalizedCategories, cat)
		}
		page.IsPersonalized = true
		ids, err = c.drawBalanced(ctx, page.PersonalizedCategories, personalizedFloor)
	default:
		mode = ModeSingle
		cat, ok := snap.Get(routeSlug)
		if !ok {
			// unknown category renders an empty feed
			break
		}
		page.Category = &cat
		ids, err = c.drawSingle(ctx, cat.ID)
	}
	if err != nil {
		return nil, err
	}

	videos, err := c.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, v := range videos {
		page.Videos = append(page.Videos, toView(v))
	}
	c.metrics.FeedComposed.WithLabelValues(string(mode)).Inc()
	return page, nil
}

// ParseSlugs splits a comma separated list, keeps known slugs and caps the
// result at three.
func ParseSlugs(param string, snap *catalog.Snapshot) []string {
	var raw []string
	for _, p := range strings.Split(param, ",") {
		if p = strings.TrimSpace(p); p != "" {
			raw = append(raw, p)
		}
	}
	slugs := snap.Filter(raw)
	if len(slugs) > mood.MaxSuggestions {
		slugs = slugs[:mood.MaxSuggestions]
	}
	return slugs
}

func (c *Composer) drawSingle(ctx context.Context, categoryID uint64) ([]uint64, error) {
	ids, err := c.repo.ActiveIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return c.sample(ids, c.limit), nil
}

func (c *Composer) drawLiked(ctx context.Context, userID uint64) ([]uint64, error) {
	ids, err := c.repo.LikedActiveIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.sample(ids, c.limit), nil
}

// drawBalanced takes up to Quota videos from every category, then shuffles
// the concatenation so no category clusters at the top.
func (c *Composer) drawBalanced(ctx context.Context, cats []catalog.Category, floor int) ([]uint64, error) {
	quota := Quota(floor, c.limit, len(cats))
	out := make([]uint64, 0, quota*len(cats))
	for _, cat := range cats {
		ids, err := c.repo.ActiveIDs(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, c.sample(ids, quota)...)
	}
	c.mu.Lock()
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	c.mu.Unlock()
	return out, nil
}

// sample picks n ids without replacement in random order.
func (c *Composer) sample(ids []uint64, n int) []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := append([]uint64(nil), ids...)
	c.rng.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
	if n < len(cp) {
		cp = cp[:n]
	}
	return cp
}

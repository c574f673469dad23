package catalog

// Detail is the display form of a category attached to chat replies and feeds.
type Detail struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// Snapshot is a read-only view of the catalog taken at request time. It is
// never mutated after construction, so it can be shared between goroutines.
type Snapshot struct {
	list   []Category
	bySlug map[string]int
}

func NewSnapshot(categories []Category) *Snapshot {
	s := &Snapshot{
		list:   make([]Category, 0, len(categories)),
		bySlug: make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		if _, dup := s.bySlug[c.Slug]; dup || c.Slug == "" {
			continue
		}
		s.bySlug[c.Slug] = len(s.list)
		s.list = append(s.list, c)
	}
	return s
}

func (s *Snapshot) Len() int { return len(s.list) }

func (s *Snapshot) Has(slug string) bool {
	_, ok := s.bySlug[slug]
	return ok
}

func (s *Snapshot) Get(slug string) (Category, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Category{}, false
	}
	return s.list[i], true
}

// Filter keeps the known slugs in input order and drops repeats.
func (s *Snapshot) Filter(slugs []string) []string {
	out := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if !s.Has(slug) {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// Details maps slugs back to name and icon, preserving input order.
func (s *Snapshot) Details(slugs []string) []Detail {
	out := make([]Detail, 0, len(slugs))
	for _, slug := range s.Filter(slugs) {
		c := s.list[s.bySlug[slug]]
		out = append(out, Detail{Name: c.Name, Slug: c.Slug, Icon: c.Icon})
	}
	return out
}

// All returns a copy of every category in snapshot order.
func (s *Snapshot) All() []Category {
	return append([]Category(nil), s.list...)
}

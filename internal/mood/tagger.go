package mood

// Label is one row of the mood tagger table.
type Label struct {
	Mood     string
	Keywords []string
}

var DefaultLabels = []Label{
	{Mood: "stresli", Keywords: []string{"stres", "gergin", "bunalmış", "kaygı", "endişe"}},
	{Mood: "yorgun", Keywords: []string{"yorgun", "bitkin", "halsiz", "uykusuz", "uyuyamıyorum"}},
	{Mood: "üzgün", Keywords: []string{"üzgün", "mutsuz", "kötü", "depresif", "hüzünlü"}},
	{Mood: "mutlu", Keywords: []string{"mutlu", "iyi", "harika", "süper", "muhteşem"}},
	{Mood: "sıkılmış", Keywords: []string{"sıkıl", "canım sıkılıyor", "eğlence"}},
	{Mood: "motivasyonsuz", Keywords: []string{"motiv", "düştü", "cesaretsiz", "isteksiz"}},
	{Mood: "odaklanamıyor", Keywords: []string{"odaklan", "konsantr", "dikkat"}},
}

// Tagger derives a single mood label from user text.
type Tagger struct {
	labels []Label
	keys   []keywordSet
}

func NewTagger(labels []Label) *Tagger {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	cp := make([]Label, len(labels))
	keys := make([]keywordSet, len(labels))
	for i, l := range labels {
		cp[i] = Label{Mood: l.Mood, Keywords: append([]string(nil), l.Keywords...)}
		keys[i] = newKeywordSet(l.Keywords)
	}
	return &Tagger{labels: cp, keys: keys}
}

// Tag returns the first matching mood in table order.
func (t *Tagger) Tag(text string) (string, bool) {
	msg := fold(text)
	for i, l := range t.labels {
		if t.keys[i].matches(msg) {
			return l.Mood, true
		}
	}
	return "", false
}

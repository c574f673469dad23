package mood

import (
	"errors"
	"fmt"
)

// MaxSuggestions is the upper bound of category slugs a single reply may carry.
const MaxSuggestions = 3

// DefaultReply is returned when no rule matches.
const DefaultReply = "Seni anlıyorum! 🤔 Nasıl hissediyorsun? Stresli mi, yorgun mu, enerjik mi? Bana biraz daha anlat ki sana en uygun içerikleri önereyim."

// Rule is one row of the fallback table. Keywords are lower-case substrings.
type Rule struct {
	Name     string
	Keywords []string
	Reply    string
	Slugs    []string
}

type Result struct {
	Reply string
	Slugs []string
	// Rule is the name of the matching row, empty when nothing matched.
	Rule string
}

// DefaultRules is evaluated top to bottom; the first row with a matching
// keyword wins, so focus and sleep are checked before the greeting row.
var DefaultRules = []Rule{
	{
		Name:     "odaklanma",
		Keywords: []string{"odaklan", "konsantr", "dikkat", "çalış", "ders"},
		Reply:    "Odaklanma modu açılıyor! 🎯 İşte konsantrasyonunu artıracak içerikler:",
		Slugs:    []string{"odaklanma", "meditasyon", "muzik"},
	},
	{
		Name:     "uyku",
		Keywords: []string{"uyu", "yorgun", "dinlen", "gece", "yatağa"},
		Reply:    "Derin bir uykuya dalmanı kolaylaştıracak içerikler hazırladım 🌙",
		Slugs:    []string{"uyku", "rahatlama", "doga"},
	},
	{
		Name:     "eglence",
		Keywords: []string{"sıkıl", "eğlen", "komik", "güldür", "keyif"},
		Reply:    "Gülmek en iyi ilaç! 😂 Eğlenceli içerikler seni bekliyor:",
		Slugs:    []string{"eglence", "muzik"},
	},
	{
		Name:     "stres",
		Keywords: []string{"stres", "gergin", "kayg", "endişe", "bunaldım"},
		Reply:    "Stresi azaltmak için sakinleştirici içerikler öneriyorum 🧘‍♀️",
		Slugs:    []string{"stres", "meditasyon", "rahatlama"},
	},
	{
		Name:     "rahatlama",
		Keywords: []string{"rahatla", "gevşe", "sakin", "huzur"},
		Reply:    "Rahatlamak için mükemmel içerikler burada 💆‍♀️",
		Slugs:    []string{"rahatlama", "doga", "meditasyon"},
	},
	{
		Name:     "motivasyon",
		Keywords: []string{"motiv", "düştü", "cesaretsiz", "isteksiz", "enerji"},
		Reply:    "Motivasyon zamanı! 💪 İçindeki gücü ortaya çıkaracak içerikler:",
		Slugs:    []string{"motivasyon", "ilham", "spor"},
	},
	{
		Name:     "agri",
		Keywords: []string{"ağr", "kas", "vücut", "sırt", "boyun"},
		Reply:    "Vücudunu rahatlatacak içerikler öneriyorum 🧘",
		Slugs:    []string{"rahatlama", "meditasyon", "spor"},
	},
	{
		Name:     "spor",
		Keywords: []string{"spor", "egzersiz", "fitness", "hareket", "form"},
		Reply:    "Spor zamanı! 💪 Hareket etmen için harika içerikler:",
		Slugs:    []string{"spor", "motivasyon"},
	},
	{
		Name:     "muzik",
		Keywords: []string{"müzik", "şarkı", "melodi", "dinle"},
		Reply:    "Müzik her zaman iyi gelir! 🎵",
		Slugs:    []string{"muzik"},
	},
	{
		Name:     "meditasyon",
		Keywords: []string{"meditas", "nefes", "yoga", "mindful"},
		Reply:    "Meditasyon ve nefes çalışmaları için harika içerikler ✨",
		Slugs:    []string{"meditasyon", "rahatlama"},
	},
	{
		Name:     "doga",
		Keywords: []string{"doğa", "orman", "deniz", "dağ", "kuş"},
		Reply:    "Doğanın huzurunu hisset 🌿",
		Slugs:    []string{"doga", "rahatlama"},
	},
	{
		Name:     "ogrenme",
		Keywords: []string{"öğren", "bilgi", "eğitim", "geliş"},
		Reply:    "Yeni şeyler öğrenmek harika! 📚",
		Slugs:    []string{"ogrenme", "ilham"},
	},
	{
		Name:     "ilham",
		Keywords: []string{"ilham", "fikir", "yaratıcı", "inspire"},
		Reply:    "İlham zamanı! 💡 Yaratıcılığını tetikleyecek içerikler:",
		Slugs:    []string{"ilham", "motivasyon"},
	},
	{
		Name:     "selamlasma",
		Keywords: []string{"merhaba", "selam", "hey", "nasıl", "iyi"},
		Reply:    "Merhaba! 🐝 Bugün nasıl hissediyorsun? Sana uygun içerikler önerebilirim!",
	},
}

// Classifier maps free text to a canned reply and category slugs. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules        []Rule
	keys         []keywordSet
	defaultReply string
}

func NewClassifier(rules []Rule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, errors.New("mood: empty rule table")
	}
	cp := make([]Rule, len(rules))
	keys := make([]keywordSet, len(rules))
	for i, r := range rules {
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("mood: rule %q has no keywords", r.Name)
		}
		if len(r.Slugs) > MaxSuggestions {
			return nil, fmt.Errorf("mood: rule %q suggests %d slugs, max %d", r.Name, len(r.Slugs), MaxSuggestions)
		}
		keys[i] = newKeywordSet(r.Keywords)
		cp[i] = Rule{
			Name:     r.Name,
			Keywords: append([]string(nil), r.Keywords...),
			Reply:    r.Reply,
			Slugs:    append([]string(nil), r.Slugs...),
		}
	}
	return &Classifier{rules: cp, keys: keys, defaultReply: DefaultReply}, nil
}

// MustDefaultClassifier panics only if DefaultRules is malformed.
func MustDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify never fails; an unmatched input yields DefaultReply and no slugs.
func (c *Classifier) Classify(text string) Result {
	msg := fold(text)
	for i, r := range c.rules {
		if c.keys[i].matches(msg) {
			return Result{
				Reply: r.Reply,
				Slugs: append([]string{}, r.Slugs...),
				Rule:  r.Name,
			}
		}
	}
	return Result{Reply: c.defaultReply, Slugs: []string{}}
}

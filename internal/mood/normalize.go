package mood

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var turkishLower = cases.Lower(language.Turkish)

// Normalize lower-cases text with Turkish rules so that "I" becomes "ı" and
// "İ" becomes "i" before keyword matching.
func Normalize(text string) string {
	return strings.TrimSpace(turkishLower.String(text))
}

// folded is text lowered two ways. Turkish rules turn "I" into "ı", plain
// Unicode rules turn it into "i"; "SIKILDIM" needs the first and "DIKKAT" or
// "FITNESS" the second.
type folded struct {
	turkish string
	plain   string
}

func fold(text string) folded {
	return folded{
		turkish: Normalize(text),
		plain:   strings.TrimSpace(strings.ToLower(text)),
	}
}

// keywordSet matches when either lowered form of the input contains a keyword
// lowered the same way.
type keywordSet struct {
	turkish []string
	plain   []string
}

func newKeywordSet(keywords []string) keywordSet {
	ks := keywordSet{
		turkish: make([]string, len(keywords)),
		plain:   make([]string, len(keywords)),
	}
	for i, k := range keywords {
		f := fold(k)
		ks.turkish[i] = f.turkish
		ks.plain[i] = f.plain
	}
	return ks
}

func (ks keywordSet) matches(f folded) bool {
	return containsAny(f.turkish, ks.turkish) || containsAny(f.plain, ks.plain)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

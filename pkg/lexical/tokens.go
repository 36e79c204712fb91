package lexical

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords covers the Indonesian and English function words that carry no topic
var stopWords = map[string]bool{
	// Indonesian
	"apa": true, "yang": true, "saya": true, "aku": true, "kamu": true, "anda": true,
	"ini": true, "itu": true, "di": true, "ke": true, "dari": true, "pada": true,
	"untuk": true, "dengan": true, "adalah": true, "ada": true, "dan": true, "atau": true,
	"sudah": true, "udah": true, "ya": true, "dong": true, "nih": true, "kah": true,
	"mau": true, "akan": true, "bisa": true, "dapat": true, "juga": true, "saja": true,
	"tidak": true, "bukan": true, "tersebut": true, "sebagai": true, "oleh": true,
	"dalam": true, "jika": true, "kalau": true, "maka": true, "agar": true, "karena": true,
	"bagaimana": true, "kapan": true, "mengapa": true, "kenapa": true, "siapa": true,
	"berapa": true, "dimana": true, "mana": true, "tentang": true, "mohon": true,
	"tolong": true, "kami": true, "kita": true, "mereka": true, "dia": true, "nya": true,
	"para": true, "se": true, "lagi": true, "masih": true, "harus": true, "telah": true,
	// English
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
	"what": true, "my": true, "your": true, "i": true, "me": true, "you": true,
	"of": true, "to": true, "in": true, "on": true, "for": true, "and": true, "or": true,
	"it": true, "its": true, "this": true, "that": true, "these": true, "those": true,
	"how": true, "when": true, "why": true, "who": true, "where": true, "which": true,
	"do": true, "does": true, "did": true, "can": true, "could": true, "should": true,
	"would": true, "be": true, "been": true, "with": true, "about": true, "as": true,
	"at": true, "by": true, "from": true, "we": true, "they": true, "he": true, "she": true,
	"not": true, "no": true, "yes": true, "please": true, "have": true, "has": true,
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsStopWord reports whether token is a function word
func IsStopWord(token string) bool {
	return stopWords[strings.ToLower(token)]
}

// Keywords returns the content-bearing tokens of text in order of first appearance.
// Tokens shorter than 3 characters are dropped unless they contain a digit.
func Keywords(text string) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0)
	for _, tok := range Tokenize(text) {
		if seen[tok] || stopWords[tok] {
			continue
		}
		if len([]rune(tok)) < 3 && !HasDigit(tok) {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

// Vocabulary is a set of keywords
type Vocabulary map[string]struct{}

// NewVocabulary builds the keyword set of text
func NewVocabulary(text string) Vocabulary {
	v := make(Vocabulary)
	for _, k := range Keywords(text) {
		v[k] = struct{}{}
	}
	return v
}

// Len returns the number of distinct keywords
func (v Vocabulary) Len() int {
	return len(v)
}

// Contains reports whether the keyword is in the set
func (v Vocabulary) Contains(word string) bool {
	_, ok := v[word]
	return ok
}

// Intersect counts keywords present in both sets
func (v Vocabulary) Intersect(other Vocabulary) int {
	small, large := v, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for k := range small {
		if _, ok := large[k]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the keywords in lexical order
func (v Vocabulary) Sorted() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Overlap counts shared keywords between two texts
func Overlap(a, b string) int {
	return NewVocabulary(a).Intersect(NewVocabulary(b))
}

// HasDigit reports whether s contains a decimal digit
func HasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// CollapseElongation shortens every run of at least minRun identical letters
// to a single letter ("okayyy" → "okay" with minRun 3).
func CollapseElongation(s string, minRun int) string {
	if minRun < 2 {
		minRun = 2
	}
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= minRun && unicode.IsLetter(runes[i]) {
			b.WriteRune(runes[i])
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}

// Normalize lowercases text and rejoins its tokens with single spaces
func Normalize(text string) string {
	return strings.Join(Tokenize(text), " ")
}

// ContainsAnyFold reports whether text contains one of phrases, ignoring case
func ContainsAnyFold(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

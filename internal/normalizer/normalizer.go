package normalizer

import (
	"regexp"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// bnNumerals maps Bangla digits to ASCII.
var bnNumerals = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
)

// bnPlaces transliterates the common Bangla place names.
var bnPlaces = strings.NewReplacer(
	"ঢাকা", "Dhaka", "চট্টগ্রাম", "Chattogram", "চিটাগাং", "Chattogram",
	"সিলেট", "Sylhet", "রাজশাহী", "Rajshahi", "খুলনা", "Khulna",
	"বরিশাল", "Barisal", "রংপুর", "Rangpur", "ময়মনসিংহ", "Mymensingh",
	"বনানী", "Banani", "গুলশান", "Gulshan", "ধানমন্ডি", "Dhanmondi",
	"উত্তরা", "Uttara", "মিরপুর", "Mirpur", "হালিশহর", "Halishahar",
	"আগ্রাবাদ", "Agrabad", "বশুন্ধরা", "Bashundhara",
)

// bnKeywords transliterates Bangla address keywords.
var bnKeywords = strings.NewReplacer(
	"রোড", "Road", "বাড়ি", "House", "বাসা", "House", "বাড়ী", "House",
	"ফ্ল্যাট", "Flat", "তলা", "Floor", "ব্লক", "Block",
	"লেন", "Lane", "গলি", "Lane", "নং", "No", "নাম্বার", "No",
)

// corrections are spelling fixes learned from the labeled corpus.
var corrections = []struct {
	re    *regexp.Regexp
	right string
}{
	{regexp.MustCompile(`(?i)\bchittagong\b`), "Chattogram"},
	{regexp.MustCompile(`(?i)\bchittagang\b`), "Chattogram"},
	{regexp.MustCompile(`(?i)\bctg\b`), "Chattogram"},
	{regexp.MustCompile(`(?i)\bdaka\b`), "Dhaka"},
	{regexp.MustCompile(`(?i)\bdhakka\b`), "Dhaka"},
	{regexp.MustCompile(`(?i)\braod\b`), "Road"},
	{regexp.MustCompile(`(?i)\bhose\b`), "House"},
	{regexp.MustCompile(`(?i)\bhause\b`), "House"},
}

var (
	wsRe    = regexp.MustCompile(`\s+`)
	commaRe = regexp.MustCompile(`\s*,\s*`)
)

// CanonicalNormalizer converts raw free-text input into the canonical
// Latin-script form the extractors operate on.
type CanonicalNormalizer struct {
	diacritics transform.Transformer
	normalized atomic.Int64
}

func NewCanonicalNormalizer() *CanonicalNormalizer {
	return &CanonicalNormalizer{
		diacritics: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Normalize applies numeral conversion, Bangla transliteration, spelling
// corrections and punctuation cleanup.
func (n *CanonicalNormalizer) Normalize(address string) string {
	if address == "" {
		return ""
	}

	address = bnNumerals.Replace(address)
	address = bnPlaces.Replace(address)
	address = bnKeywords.Replace(address)

	// Residual Bangla not covered by the tables gets transliterated so
	// downstream stages only ever see Latin script.
	if hasBangla(address) {
		address = unidecode.Unidecode(address)
	}

	address = strings.ReplaceAll(address, `"`, "")
	address = strings.ReplaceAll(address, "'", "")

	// Accented Latin input ("Dhâka", "Sylheṭ") folds to plain ASCII so
	// the corrections and extractors match it.
	address = n.StripDiacritics(address)

	for _, c := range corrections {
		address = c.re.ReplaceAllString(address, c.right)
	}

	address = strings.ReplaceAll(address, "#", " No ")
	address = strings.ReplaceAll(address, ":", " ")

	address = strings.TrimSpace(wsRe.ReplaceAllString(address, " "))
	address = commaRe.ReplaceAllString(address, ", ")

	n.normalized.Add(1)
	return address
}

// StripDiacritics removes combining marks. Normalize runs it on every
// address after transliteration so place names compare accent-free.
func (n *CanonicalNormalizer) StripDiacritics(s string) string {
	out, _, err := transform.String(n.diacritics, s)
	if err != nil {
		return s
	}
	return out
}

// Count reports how many addresses have been normalized.
func (n *CanonicalNormalizer) Count() int64 { return n.normalized.Load() }

func hasBangla(s string) bool {
	for _, r := range s {
		if r >= 0x0980 && r <= 0x09FF {
			return true
		}
	}
	return false
}

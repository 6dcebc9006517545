package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBanglaNumerals(t *testing.T) {
	n := NewCanonicalNormalizer()

	out := n.Normalize("বাড়ি ১২, রোড ৫")
	assert.Equal(t, "House 12, Road 5", out)
}

func TestNormalizePlaceTransliteration(t *testing.T) {
	n := NewCanonicalNormalizer()

	out := n.Normalize("মিরপুর ঢাকা")
	assert.Equal(t, "Mirpur Dhaka", out)
}

func TestNormalizeSpellingCorrections(t *testing.T) {
	n := NewCanonicalNormalizer()

	assert.Equal(t, "Chattogram", n.Normalize("chittagong"))
	assert.Equal(t, "Chattogram", n.Normalize("CTG"))
	assert.Equal(t, "Road 5, Dhaka", n.Normalize("raod 5, daka"))
	assert.Equal(t, "House 7", n.Normalize("hause 7"))
}

func TestNormalizePunctuation(t *testing.T) {
	n := NewCanonicalNormalizer()

	assert.Equal(t, "House No 12", n.Normalize(`House#12`))
	assert.Equal(t, "Flat 3B", n.Normalize(`Flat: "3B"`))
	assert.Equal(t, "a, b, c", n.Normalize("a ,b,   c"))
}

func TestNormalizeEmpty(t *testing.T) {
	n := NewCanonicalNormalizer()
	assert.Equal(t, "", n.Normalize(""))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewCanonicalNormalizer()

	once := n.Normalize("বাসা ১০, রোড ২, গুলশান, ঢাকা-১২১২")
	twice := n.Normalize(once)
	assert.Equal(t, once, twice)
}

func TestStripDiacritics(t *testing.T) {
	n := NewCanonicalNormalizer()
	assert.Equal(t, "Cafe", n.StripDiacritics("Café"))
}

func TestNormalizeStripsDiacritics(t *testing.T) {
	n := NewCanonicalNormalizer()

	assert.Equal(t, "House 12, Dhaka", n.Normalize("House 12, Dhâka"))
	assert.Equal(t, "Sylhet", n.Normalize("Sylhét"))
}

func TestScriptDetector(t *testing.T) {
	d := NewScriptDetector()

	assert.Equal(t, "bangla", d.Detect("ঢাকা মিরপুর").PrimaryScript)
	assert.Equal(t, "english", d.Detect("House 12, Dhaka").PrimaryScript)
	assert.Equal(t, "neutral", d.Detect("").PrimaryScript)

	mixed := d.Detect("ঢাকা Dhaka")
	assert.Equal(t, "mixed", mixed.PrimaryScript)
	assert.True(t, mixed.IsMixed)
}

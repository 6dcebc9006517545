package extractors

import (
	"testing"

	"github.com/address-extractor/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexExtractorBasicAddress(t *testing.T) {
	x := NewRegexExtractor()

	results := x.Extract("House 12, Road 5, Mirpur, Dhaka")

	require.Contains(t, results, models.FieldHouseNumber)
	assert.Equal(t, "12", results[models.FieldHouseNumber].Value)
	assert.Equal(t, models.SourceRegex, results[models.FieldHouseNumber].Source)

	require.Contains(t, results, models.FieldRoad)
	assert.Equal(t, "5", results[models.FieldRoad].Value)

	require.Contains(t, results, models.FieldDistrict)
	assert.Equal(t, "Dhaka", results[models.FieldDistrict].Value)

	require.Contains(t, results, models.FieldDivision)
	assert.Equal(t, "Dhaka", results[models.FieldDivision].Value)
}

func TestRegexExtractorExplicitForms(t *testing.T) {
	x := NewRegexExtractor()

	results := x.Extract("House No 45B, Road No 27, Flat 3A, Floor 4, Block C, Dhanmondi, Dhaka-1209")

	assert.Equal(t, "45B", results[models.FieldHouseNumber].Value)
	assert.Equal(t, "27", results[models.FieldRoad].Value)
	assert.Equal(t, "3A", results[models.FieldFlatNumber].Value)
	assert.Equal(t, "4", results[models.FieldFloorNumber].Value)
	assert.Equal(t, "C", results[models.FieldBlockNumber].Value)
	assert.Equal(t, "1209", results[models.FieldPostalCode].Value)
	assert.InDelta(t, 0.95, results[models.FieldPostalCode].Confidence, 0.001)
}

func TestRegexExtractorExplicitPostal(t *testing.T) {
	x := NewRegexExtractor()

	results := x.Extract("Agrabad, Chattogram, Post 4100")
	require.Contains(t, results, models.FieldPostalCode)
	assert.Equal(t, "4100", results[models.FieldPostalCode].Value)
	assert.InDelta(t, 1.00, results[models.FieldPostalCode].Confidence, 0.001)

	assert.Equal(t, "Chattogram", results[models.FieldDistrict].Value)
	assert.Equal(t, "Chattogram", results[models.FieldDivision].Value)
}

func TestRegexExtractorNamedRoad(t *testing.T) {
	x := NewRegexExtractor()

	results := x.Extract("22 Green Road, Dhaka")
	require.Contains(t, results, models.FieldRoad)
	assert.Equal(t, "Green Road", results[models.FieldRoad].Value)
}

func TestRegexExtractorNoMatches(t *testing.T) {
	x := NewRegexExtractor()

	results := x.Extract("somewhere unknown")
	assert.Empty(t, results)
}

func TestFSMParser(t *testing.T) {
	p := NewFSMParser()

	results := p.Parse("House No 12, Road No 5, Flat 2B, Floor 3, Block A, Mirpur, Dhaka 1216")

	assert.Equal(t, "12", results[models.FieldHouseNumber].Value)
	assert.Equal(t, "5", results[models.FieldRoad].Value)
	assert.Equal(t, "2B", results[models.FieldFlatNumber].Value)
	assert.Equal(t, "3", results[models.FieldFloorNumber].Value)
	assert.Equal(t, "A", results[models.FieldBlockNumber].Value)
	assert.Equal(t, "1216", results[models.FieldPostalCode].Value)

	for _, ev := range results {
		assert.Equal(t, models.SourceFSM, ev.Source)
		assert.InDelta(t, 0.75, ev.Confidence, 0.001)
	}
}

func TestFSMParserPostalPositionGate(t *testing.T) {
	p := NewFSMParser()

	// The 4-digit group sits in the first half, so it is not a postal code.
	results := p.Parse("1216 some very long trailing description of the place")
	assert.NotContains(t, results, models.FieldPostalCode)
}

func TestLexiconTagger(t *testing.T) {
	tagger := NewLexiconTagger([]string{"Mirpur", "Gulshan"})

	results := tagger.Tag("flat 2, mirpur, dhaka")

	require.Contains(t, results, models.FieldArea)
	assert.Equal(t, "Mirpur", results[models.FieldArea].Value)
	assert.Equal(t, models.SourceNER, results[models.FieldArea].Source)

	require.Contains(t, results, models.FieldDistrict)
	assert.Equal(t, "Dhaka", results[models.FieldDistrict].Value)
}

func TestNoopTagger(t *testing.T) {
	assert.Nil(t, NoopTagger{}.Tag("House 1, Dhaka"))
}

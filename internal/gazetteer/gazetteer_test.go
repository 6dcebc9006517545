package gazetteer

import (
	"testing"

	"github.com/address-extractor/app/models"
	"github.com/address-extractor/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func corpus() []models.LabeledAddress {
	rec := func(area, district, division, postal string) models.LabeledAddress {
		return models.LabeledAddress{
			Address: "x",
			Components: map[string]string{
				models.FieldArea:       area,
				models.FieldDistrict:   district,
				models.FieldDivision:   division,
				models.FieldPostalCode: postal,
			},
		}
	}
	return []models.LabeledAddress{
		rec("Mirpur", "Dhaka", "Dhaka", "1216"),
		rec("Mirpur", "Dhaka", "Dhaka", "1216"),
		rec("Mirpur", "Dhaka", "Dhaka", "1216"),
		rec("Mirpur", "Dhaka", "Dhaka", "1217"),
		rec("Gulshan", "Dhaka", "Dhaka", "1212"),
		rec("Agrabad", "Chattogram", "Chattogram", "4100"),
	}
}

func hierarchyStore() *geo.PlaceStore {
	s := geo.NewPlaceStore(zap.NewNop())
	s.AddDivision("Dhaka", []geo.DistrictNode{
		{
			Name: "Dhaka",
			Upazilas: []geo.UpazilaNode{
				{Name: "Savar", PostalCode: "1340", Unions: []geo.UnionNode{{Name: "Birulia"}}},
			},
		},
	})
	s.BuildIndexes()
	return s
}

func testGazetteer() *Gazetteer {
	g := New(hierarchyStore(), zap.NewNop())
	g.BuildFromRecords(corpus())
	return g
}

func TestBuildFromRecords(t *testing.T) {
	g := testGazetteer()

	rec, ok := g.Area("mirpur")
	require.True(t, ok)
	assert.Equal(t, "Mirpur", rec.Name)
	assert.Equal(t, "Dhaka", rec.District)
	assert.Equal(t, "Dhaka", rec.Division)
	assert.Equal(t, []string{"1216", "1217"}, rec.PostalCodes)
	assert.Equal(t, 3, rec.PostalCounts["1216"])
}

func TestSeedFromHierarchy(t *testing.T) {
	g := New(hierarchyStore(), zap.NewNop())
	g.SeedFromHierarchy()

	rec, ok := g.Area("Savar")
	require.True(t, ok)
	assert.Equal(t, "Dhaka", rec.District)
	assert.Equal(t, []string{"1340"}, rec.PostalCodes)

	// Unions inherit their upazila's postal code.
	rec, ok = g.Area("Birulia")
	require.True(t, ok)
	assert.Equal(t, []string{"1340"}, rec.PostalCodes)
}

func TestExtractAreaExactWithPosition(t *testing.T) {
	g := testGazetteer()

	ev := g.ExtractAreaFromAddress("House 5, Road 3, Gulshan, Dhaka", "3", "Dhaka")
	require.NotNil(t, ev)
	assert.Equal(t, "Gulshan", ev.Value)
	assert.InDelta(t, 0.95, ev.Confidence, 0.001)
}

func TestExtractAreaExactSubstring(t *testing.T) {
	g := testGazetteer()

	ev := g.ExtractAreaFromAddress("agrabad commercial area", "", "")
	require.NotNil(t, ev)
	assert.Equal(t, "Agrabad", ev.Value)
	assert.InDelta(t, 0.80, ev.Confidence, 0.001)
	assert.Equal(t, "exact_match", ev.Detail)
}

func TestExtractAreaFuzzyVariant(t *testing.T) {
	g := testGazetteer()

	// Common transliteration: "gulisthan" for Gulshan.
	ev := g.ExtractAreaFromAddress("gulisthan market", "", "")
	require.NotNil(t, ev)
	assert.Equal(t, "Gulshan", ev.Value)
	assert.InDelta(t, 0.70, ev.Confidence, 0.001)
	assert.Equal(t, "fuzzy_match", ev.Detail)
}

func TestExtractAreaHierarchyFallback(t *testing.T) {
	g := testGazetteer()

	ev := g.ExtractAreaFromAddress("near savar bus stand", "", "")
	require.NotNil(t, ev)
	assert.Equal(t, "Savar", ev.Value)
	assert.InDelta(t, 0.75, ev.Confidence, 0.001)
	assert.Equal(t, "hierarchy_upazila", ev.Detail)
}

func TestExtractAreaDistrictInsideRoadName(t *testing.T) {
	g := testGazetteer()

	// The district name is part of the matched road, so no text separates
	// the two. The positional strategy must step aside and let the
	// substring scan find the area.
	ev := g.ExtractAreaFromAddress("House 3, North Dhaka Road, Gulshan", "North Dhaka Road", "Dhaka")
	require.NotNil(t, ev)
	assert.Equal(t, "Gulshan", ev.Value)
	assert.Equal(t, "exact_match", ev.Detail)
	assert.InDelta(t, 0.95, ev.Confidence, 0.001)
}

func TestExtractAreaNoMatch(t *testing.T) {
	g := testGazetteer()
	assert.Nil(t, g.ExtractAreaFromAddress("house 9 road 2", "2", ""))
}

func TestValidateKnownAreaAutofill(t *testing.T) {
	g := testGazetteer()

	results, conflicts := g.Validate("Mirpur", "", "")
	assert.Empty(t, conflicts)

	require.Contains(t, results, models.FieldArea)
	assert.InDelta(t, 0.98, results[models.FieldArea][0].Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerValidated, results[models.FieldArea][0].Source)

	require.Contains(t, results, models.FieldDistrict)
	assert.Equal(t, "Dhaka", results[models.FieldDistrict][0].Value)
	assert.Equal(t, models.SourceInferredFromArea, results[models.FieldDistrict][0].Source)

	// Most common postal inferred; 3 of 4 samples is a strong majority.
	require.Contains(t, results, models.FieldPostalCode)
	ev := results[models.FieldPostalCode][0]
	assert.Equal(t, "1216", ev.Value)
	assert.InDelta(t, 0.95, ev.Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerInferred, ev.Source)
	assert.Equal(t, "3/4 samples", ev.Detail)
}

func TestValidateDistrictMismatchCorrected(t *testing.T) {
	g := testGazetteer()

	results, conflicts := g.Validate("Mirpur", "Chattogram", "")
	require.Len(t, conflicts, 1)
	assert.Equal(t, "District mismatch: expected Dhaka, got Chattogram", conflicts[0])

	ev := results[models.FieldDistrict][0]
	assert.Equal(t, "Dhaka", ev.Value)
	assert.InDelta(t, 0.90, ev.Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerCorrected, ev.Source)
}

func TestValidateMatchingDistrictAndPostal(t *testing.T) {
	g := testGazetteer()

	results, conflicts := g.Validate("Gulshan", "Dhaka", "1212")
	assert.Empty(t, conflicts)

	assert.InDelta(t, 0.98, results[models.FieldDistrict][0].Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerValidated, results[models.FieldDistrict][0].Source)

	ev := results[models.FieldPostalCode][0]
	assert.Equal(t, "1212", ev.Value)
	assert.InDelta(t, 0.99, ev.Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerValidated, ev.Source)
}

func TestValidateUnknownPostalAccepted(t *testing.T) {
	g := testGazetteer()

	results, _ := g.Validate("Gulshan", "Dhaka", "9999")
	ev := results[models.FieldPostalCode][0]
	assert.Equal(t, "9999", ev.Value)
	assert.InDelta(t, 0.75, ev.Confidence, 0.001)
	assert.Equal(t, models.SourceUnvalidated, ev.Source)
}

func TestValidateMalformedPostalIgnored(t *testing.T) {
	g := testGazetteer()

	// Not a 4-digit code: fall through to inference instead.
	results, _ := g.Validate("Gulshan", "Dhaka", "h-107/2")
	ev := results[models.FieldPostalCode][0]
	assert.Equal(t, "1212", ev.Value)
	assert.Equal(t, models.SourceGazetteerInferred, ev.Source)
}

func TestValidateDistrictOnly(t *testing.T) {
	g := testGazetteer()

	results, conflicts := g.Validate("", "Chattogram", "")
	assert.Empty(t, conflicts)

	assert.InDelta(t, 0.95, results[models.FieldDistrict][0].Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerValidated, results[models.FieldDistrict][0].Source)

	require.Contains(t, results, models.FieldDivision)
	assert.Equal(t, "Chattogram", results[models.FieldDivision][0].Value)
	assert.Equal(t, models.SourceInferredFromDist, results[models.FieldDivision][0].Source)
}

func TestValidateSingleCodePostalInference(t *testing.T) {
	g := testGazetteer()

	results, _ := g.Validate("Gulshan", "", "")
	ev := results[models.FieldPostalCode][0]
	assert.Equal(t, "1212", ev.Value)
	assert.InDelta(t, 0.98, ev.Confidence, 0.001)
}

func TestValidateNothingKnown(t *testing.T) {
	g := testGazetteer()

	results, conflicts := g.Validate("", "", "")
	assert.Empty(t, results)
	assert.Empty(t, conflicts)
}

func TestFuzzyMatchMemoized(t *testing.T) {
	g := testGazetteer()

	assert.True(t, g.fuzzyMatchWord("gulshan", "gulisthan"))
	// Second call served from the verdict cache.
	assert.True(t, g.fuzzyMatchWord("gulshan", "gulisthan"))
	assert.False(t, g.fuzzyMatchWord("gulshan", "mirpur"))
}

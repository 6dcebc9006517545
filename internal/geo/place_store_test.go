package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore() *PlaceStore {
	s := NewPlaceStore(zap.NewNop())
	s.AddDivision("Dhaka", []DistrictNode{
		{
			Name: "Dhaka",
			Upazilas: []UpazilaNode{
				{
					Name:       "Mirpur",
					PostalCode: "1216",
					Unions: []UnionNode{
						{Name: "Pallabi", Villages: []VillageNode{{Name: "Kazipara"}}},
					},
				},
				{Name: "Savar", PostalCode: "1340"},
			},
		},
		{
			Name:     "Gazipur",
			Upazilas: []UpazilaNode{{Name: "Tongi", PostalCode: "1712"}},
		},
	})
	s.AddDivision("Chattogram", []DistrictNode{
		{
			Name:     "Chattogram",
			Upazilas: []UpazilaNode{{Name: "Patiya", PostalCode: "4370"}},
		},
	})
	s.AddPostalEntries([]PostalEntry{
		{Code: "1207", District: "Dhaka", PostOffice: "Mohammadpur"},
		{Code: "4100", District: "Chattogram", PostOffice: "Chattogram GPO"},
	})
	s.BuildIndexes()
	return s
}

func TestPredictPostalCodeUpazilaMatch(t *testing.T) {
	s := testStore()

	pred := s.PredictPostalCode("Mirpur", "Dhaka", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1216", pred.PostalCode)
	assert.InDelta(t, 0.95, pred.Confidence, 0.001)
	assert.Equal(t, "upazila_match", pred.Source)
}

func TestPredictPostalCodeUnionAndVillage(t *testing.T) {
	s := testStore()

	pred := s.PredictPostalCode("Pallabi", "Dhaka", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1216", pred.PostalCode)
	assert.InDelta(t, 0.90, pred.Confidence, 0.001)
	assert.Equal(t, "union_match", pred.Source)

	pred = s.PredictPostalCode("Kazipara", "", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1216", pred.PostalCode)
	assert.InDelta(t, 0.85, pred.Confidence, 0.001)
	assert.Equal(t, "village_match", pred.Source)
}

func TestPredictPostalCodePostOffice(t *testing.T) {
	s := testStore()

	pred := s.PredictPostalCode("Mohammadpur", "Dhaka", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1207", pred.PostalCode)
	assert.InDelta(t, 0.80, pred.Confidence, 0.001)
}

func TestPredictPostalCodeSubstringFallback(t *testing.T) {
	s := testStore()

	pred := s.PredictPostalCode("Mirpur DOHS", "Dhaka", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1216", pred.PostalCode)
	assert.InDelta(t, 0.70, pred.Confidence, 0.001)
	assert.Equal(t, "fuzzy_area_match", pred.Source)
}

func TestPredictPostalCodeDistrictInference(t *testing.T) {
	s := testStore()

	pred := s.PredictPostalCode("", "Gazipur", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1712", pred.PostalCode)
	assert.InDelta(t, 0.60, pred.Confidence, 0.001)
	assert.Equal(t, "district_inference", pred.Source)
}

func TestPredictPostalCodeDistrictMismatchRejected(t *testing.T) {
	s := testStore()

	// Mirpur exists, but the stated district rules it out entirely; the
	// prediction must come from the stated district, not the area.
	pred := s.PredictPostalCode("Mirpur", "Chattogram", "")
	require.NotNil(t, pred)
	assert.NotEqual(t, "1216", pred.PostalCode)
	assert.Equal(t, "district_inference", pred.Source)
}

func TestPredictPostalCodeUnknown(t *testing.T) {
	s := testStore()
	assert.Nil(t, s.PredictPostalCode("Nowhere", "", ""))
}

func TestFullHierarchy(t *testing.T) {
	s := testStore()

	h := s.FullHierarchy("1216")
	require.NotNil(t, h)
	assert.Equal(t, "Mirpur", h.Upazila)
	assert.Equal(t, "Dhaka", h.District)
	assert.Equal(t, "Dhaka", h.Division)
	assert.Equal(t, []string{"Pallabi"}, h.Unions)

	assert.Nil(t, s.FullHierarchy("9999"))
}

func TestValidateLocationPostalDistrictConflict(t *testing.T) {
	s := testStore()

	v := s.ValidateLocation("", "Chattogram", "", "1216")
	assert.False(t, v.Valid)
	require.Len(t, v.Conflicts, 1)
	assert.Contains(t, v.Conflicts[0], "1216")
	assert.Equal(t, "Dhaka", v.Suggestions["district"])
}

func TestValidateLocationDistrictDivisionConflict(t *testing.T) {
	s := testStore()

	v := s.ValidateLocation("", "Gazipur", "Chattogram", "")
	assert.False(t, v.Valid)
	assert.Equal(t, "Dhaka", v.Suggestions["division"])
}

func TestValidateLocationConsistent(t *testing.T) {
	s := testStore()

	v := s.ValidateLocation("Mirpur", "Dhaka", "Dhaka", "1216")
	assert.True(t, v.Valid)
	assert.Empty(t, v.Conflicts)
}

func TestSuggestDistrictForMisspelling(t *testing.T) {
	s := testStore()

	assert.Equal(t, "Dhaka", s.SuggestDistrict("Dhakka"))
	assert.Equal(t, "", s.SuggestDistrict("Xyzzyq"))
}

func TestLoadPlaceStoreFromFiles(t *testing.T) {
	s, err := LoadPlaceStore("testdata", "testdata/bd-postal-codes.json", zap.NewNop())
	require.NoError(t, err)

	u, ok := s.Upazila("mirpur")
	require.True(t, ok)
	assert.Equal(t, "Dhaka", u.District)
	assert.Equal(t, "1216", u.PostalCode)

	// Villages parse from both object and bare-string forms.
	_, ok = s.Village("Kazipara")
	assert.True(t, ok)
	_, ok = s.Village("Shewrapara")
	assert.True(t, ok)

	pred := s.PredictPostalCode("Gulshan", "Dhaka", "")
	require.NotNil(t, pred)
	assert.Equal(t, "1212", pred.PostalCode)
}

func TestLoadPlaceStoreMissingDir(t *testing.T) {
	_, err := LoadPlaceStore("testdata/does-not-exist", "", zap.NewNop())
	assert.Error(t, err)
}

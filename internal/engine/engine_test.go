package engine

import (
	"testing"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/app/models"
	"github.com/address-extractor/internal/gazetteer"
	"github.com/address-extractor/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()

	store := geo.NewPlaceStore(zap.NewNop())
	store.AddDivision("Dhaka", []geo.DistrictNode{
		{
			Name: "Dhaka",
			Upazilas: []geo.UpazilaNode{
				{Name: "Mirpur", PostalCode: "1216"},
				{Name: "Savar", PostalCode: "1340"},
			},
		},
	})
	store.AddDivision("Chattogram", []geo.DistrictNode{
		{
			Name:     "Chattogram",
			Upazilas: []geo.UpazilaNode{{Name: "Patiya", PostalCode: "4370"}},
		},
	})
	store.BuildIndexes()

	g := gazetteer.New(store, zap.NewNop())
	g.SeedFromHierarchy()

	return New(Options{
		Stages:    config.Default().Stages,
		CacheSize: 16,
		Gazetteer: g,
		Validator: geo.NewValidator(store, zap.NewNop()),
		Logger:    zap.NewNop(),
	})
}

func TestExtractFullAddress(t *testing.T) {
	e := testEngine(t)

	result := e.Extract("House 12, Road 5, Mirpur, Dhaka")

	assert.Equal(t, "12", result.Component(models.FieldHouseNumber))
	assert.Equal(t, "5", result.Component(models.FieldRoad))
	assert.Equal(t, "Mirpur", result.Component(models.FieldArea))
	assert.Equal(t, "Dhaka", result.Component(models.FieldDistrict))
	assert.Equal(t, "Dhaka", result.Component(models.FieldDivision))
	assert.Equal(t, "1216", result.Component(models.FieldPostalCode),
		"postal code inferred from the area")

	assert.Greater(t, result.OverallConfidence, 0.85)
	assert.False(t, result.Cached)
	assert.Equal(t, models.ScriptEnglish, result.Metadata.Script)

	// All nine fields present even when unresolved.
	assert.Len(t, result.Components, len(models.ComponentFields))
	assert.Equal(t, "", result.Component(models.FieldFlatNumber))
}

func TestExtractBanglaAddress(t *testing.T) {
	e := testEngine(t)

	result := e.Extract("বাসা ১২, মিরপুর, ঢাকা")

	assert.Equal(t, models.ScriptBangla, result.Metadata.Script)
	assert.Equal(t, "12", result.Component(models.FieldHouseNumber))
	assert.Equal(t, "Mirpur", result.Component(models.FieldArea))
	assert.Equal(t, "Dhaka", result.Component(models.FieldDistrict))
}

func TestExtractCachesResults(t *testing.T) {
	e := testEngine(t)

	first := e.Extract("House 12, Mirpur, Dhaka")
	require.False(t, first.Cached)

	second := e.Extract("  house 12, mirpur, dhaka ")
	assert.True(t, second.Cached)
	assert.InDelta(t, cachedHitTimeMs, second.ExtractionTimeMs, 0.0001)
	assert.Equal(t, first.Components, second.Components)

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.TotalProcessed)
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
}

func TestExtractEmptyInput(t *testing.T) {
	e := testEngine(t)

	for _, input := range []string{"", "   "} {
		result := e.Extract(input)
		assert.Zero(t, result.OverallConfidence)
		assert.Empty(t, result.Error)
		assert.Len(t, result.Components, len(models.ComponentFields))
		for _, field := range models.ComponentFields {
			assert.Equal(t, "", result.Component(field))
		}
	}
}

func TestExtractDistrictMismatchReported(t *testing.T) {
	e := testEngine(t)

	// Mirpur is in Dhaka; the stated district disagrees.
	result := e.Extract("House 3, Mirpur, Chattogram")

	require.NotNil(t, result.Metadata)
	require.NotEmpty(t, result.Metadata.Conflicts)
	assert.Contains(t, result.Metadata.Conflicts[0], "District mismatch")

	// The gazetteer is authoritative for the corrected district.
	assert.Equal(t, "Dhaka", result.Component(models.FieldDistrict))
}

func TestExtractComponentDetails(t *testing.T) {
	e := testEngine(t)

	result := e.Extract("House 12, Road 5, Mirpur, Dhaka")

	details := result.Metadata.ComponentDetails
	require.Contains(t, details, models.FieldArea)
	assert.GreaterOrEqual(t, details[models.FieldArea].EvidenceCount, 2)
	assert.False(t, details[models.FieldArea].Conflict)
}

func TestExtractStagesCanBeDisabled(t *testing.T) {
	e := New(Options{
		Stages: config.StageToggles{
			ScriptDetection: false,
			FSMParsing:      false,
			Tagger:          false,
			Gazetteer:       false,
			Geographic:      false,
		},
		CacheSize: 4,
		Logger:    zap.NewNop(),
	})

	// Regex extraction always runs.
	result := e.Extract("House 12, Road 5, Dhaka")
	assert.Equal(t, "12", result.Component(models.FieldHouseNumber))
	assert.Equal(t, "Dhaka", result.Component(models.FieldDistrict))
	assert.Equal(t, models.ScriptNeutral, result.Metadata.Script)
}

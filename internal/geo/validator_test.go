package geo

import (
	"testing"

	"github.com/address-extractor/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidatorExtractFromAddressUpazila(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())

	results := v.ExtractFromAddress("House 5, Mirpur, Dhaka")

	require.Contains(t, results, models.FieldArea)
	assert.Equal(t, "Mirpur", results[models.FieldArea][0].Value)
	assert.InDelta(t, 0.90, results[models.FieldArea][0].Confidence, 0.001)

	require.Contains(t, results, models.FieldDistrict)
	assert.Equal(t, "Dhaka", results[models.FieldDistrict][0].Value)
	assert.Equal(t, models.SourceInferredFromArea, results[models.FieldDistrict][0].Source)
}

func TestValidatorExtractFromAddressUnion(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())

	results := v.ExtractFromAddress("Block D, Pallabi")

	require.Contains(t, results, models.FieldArea)
	assert.Equal(t, "Pallabi", results[models.FieldArea][0].Value)
	assert.InDelta(t, 0.85, results[models.FieldArea][0].Confidence, 0.001)
	assert.Equal(t, "Dhaka", results[models.FieldDistrict][0].Value)
}

func TestValidatorExtractFromAddressNoPlaces(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())
	assert.Empty(t, v.ExtractFromAddress("House 9, Road 3"))
}

func TestValidatorEnhanceAreaImpliesDistrictAndPostal(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldArea, models.Evidence{Value: "Mirpur", Confidence: 0.85, Source: models.SourceNER})

	results := v.ValidateAndEnhance(evidence)

	require.Contains(t, results, models.FieldDistrict)
	assert.Equal(t, "Dhaka", results[models.FieldDistrict][0].Value)
	assert.InDelta(t, 0.95, results[models.FieldDistrict][0].Confidence, 0.001)

	require.Contains(t, results, models.FieldPostalCode)
	assert.Equal(t, "1216", results[models.FieldPostalCode][0].Value)
	assert.Equal(t, models.SourceInferredFromArea, results[models.FieldPostalCode][0].Source)
}

func TestValidatorEnhanceDistrictImpliesDivision(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldDistrict, models.Evidence{Value: "Gazipur", Confidence: 0.90, Source: models.SourceRegex})

	results := v.ValidateAndEnhance(evidence)

	require.Contains(t, results, models.FieldDivision)
	assert.Equal(t, "Dhaka", results[models.FieldDivision][0].Value)
	assert.InDelta(t, 0.98, results[models.FieldDivision][0].Confidence, 0.001)
	assert.Equal(t, models.SourceInferredFromDist, results[models.FieldDivision][0].Source)
}

func TestValidatorEnhanceDivisionFromStaticTable(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())

	// Feni is not in the loaded hierarchy; the static district table
	// still places it in Chattogram division.
	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldDistrict, models.Evidence{Value: "Feni", Confidence: 0.90, Source: models.SourceRegex})

	results := v.ValidateAndEnhance(evidence)

	require.Contains(t, results, models.FieldDivision)
	assert.Equal(t, "Chattogram", results[models.FieldDivision][0].Value)
	assert.InDelta(t, 0.90, results[models.FieldDivision][0].Confidence, 0.001)
	assert.Equal(t, models.SourceInferredFromDist, results[models.FieldDivision][0].Source)
}

func TestValidatorEnhanceCorroboratesKnownArea(t *testing.T) {
	v := NewValidator(testStore(), zap.NewNop())

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldArea, models.Evidence{Value: "mirpur", Confidence: 0.70, Source: models.SourceFSM})
	evidence.Add(models.FieldDistrict, models.Evidence{Value: "Dhaka", Confidence: 0.90, Source: models.SourceRegex})
	evidence.Add(models.FieldPostalCode, models.Evidence{Value: "1216", Confidence: 0.95, Source: models.SourceRegex})

	results := v.ValidateAndEnhance(evidence)

	require.Contains(t, results, models.FieldArea)
	assert.Equal(t, "Mirpur", results[models.FieldArea][0].Value)
	assert.InDelta(t, 0.95, results[models.FieldArea][0].Confidence, 0.001)
	assert.Equal(t, models.SourceGazetteerValidated, results[models.FieldArea][0].Source)

	// Postal already present: nothing predicted.
	assert.NotContains(t, results, models.FieldPostalCode)
}

package engine

import (
	"testing"

	"github.com/address-extractor/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConsensusBoostsConfidence(t *testing.T) {
	r := NewResolver()

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldRoad, models.Evidence{Value: "5", Confidence: 0.95, Source: models.SourceRegex})
	evidence.Add(models.FieldRoad, models.Evidence{Value: "5", Confidence: 0.75, Source: models.SourceFSM})

	resolved := r.Resolve(evidence)

	rc := resolved[models.FieldRoad]
	assert.Equal(t, "5", rc.Value)
	assert.InDelta(t, 0.85*1.05, rc.Confidence, 0.001)
	assert.Equal(t, models.SourceRegex, rc.Source)
	assert.Equal(t, 2, rc.EvidenceCount)
	assert.False(t, rc.Conflict)
}

func TestResolveConsensusCappedBelowCertainty(t *testing.T) {
	r := NewResolver()

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldPostalCode, models.Evidence{Value: "1216", Confidence: 0.99, Source: models.SourceRegex})
	evidence.Add(models.FieldPostalCode, models.Evidence{Value: "1216", Confidence: 0.98, Source: models.SourceGazetteerValidated})

	rc := r.Resolve(evidence)[models.FieldPostalCode]
	assert.InDelta(t, 0.99, rc.Confidence, 0.0001)
}

func TestResolveConflictWeightedVote(t *testing.T) {
	r := NewResolver()

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldDistrict, models.Evidence{Value: "Dhaka", Confidence: 0.90, Source: models.SourceRegex})
	evidence.Add(models.FieldDistrict, models.Evidence{Value: "Chattogram", Confidence: 0.85, Source: models.SourceNER})

	rc := r.Resolve(evidence)[models.FieldDistrict]

	// regex: 0.90 x 1.00 = 0.900 beats ner: 0.85 x 0.85 = 0.7225.
	assert.Equal(t, "Dhaka", rc.Value)
	assert.InDelta(t, 0.90*0.90, rc.Confidence, 0.001)
	assert.True(t, rc.Conflict)
	assert.Equal(t, 2, rc.EvidenceCount)
}

func TestResolveConflictTieGoesToFirstSeen(t *testing.T) {
	r := NewResolver()

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldArea, models.Evidence{Value: "Mirpur", Confidence: 0.80, Source: models.SourceFSM})
	evidence.Add(models.FieldArea, models.Evidence{Value: "Pallabi", Confidence: 0.80, Source: models.SourceFSM})

	rc := r.Resolve(evidence)[models.FieldArea]
	assert.Equal(t, "Mirpur", rc.Value)
	assert.True(t, rc.Conflict)
}

func TestResolveFiltersMalformedPostal(t *testing.T) {
	r := NewResolver()

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldPostalCode, models.Evidence{Value: "h-107/2", Confidence: 0.95, Source: models.SourceRegex})
	evidence.Add(models.FieldPostalCode, models.Evidence{Value: "1216", Confidence: 0.75, Source: models.SourceFSM})

	resolved := r.Resolve(evidence)
	require.Contains(t, resolved, models.FieldPostalCode)
	assert.Equal(t, "1216", resolved[models.FieldPostalCode].Value)
	assert.False(t, resolved[models.FieldPostalCode].Conflict)
}

func TestResolveDropsFieldWhenAllPostalMalformed(t *testing.T) {
	r := NewResolver()

	evidence := models.EvidenceMap{}
	evidence.Add(models.FieldPostalCode, models.Evidence{Value: "12345", Confidence: 0.95, Source: models.SourceRegex})

	assert.NotContains(t, r.Resolve(evidence), models.FieldPostalCode)
}

func TestResolveEmpty(t *testing.T) {
	r := NewResolver()
	assert.Empty(t, r.Resolve(models.EvidenceMap{}))
}

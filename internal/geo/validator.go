package geo

import (
	"sort"
	"strings"

	"github.com/address-extractor/app/models"
	"github.com/address-extractor/internal/extractors"
	"go.uber.org/zap"
)

// Validator is the hierarchy-backed pipeline stage. It mines place names
// the pattern extractors miss and fills components implied by ones
// already found.
type Validator struct {
	store  *PlaceStore
	logger *zap.Logger

	// Upazila and union names sorted longest-first so the most specific
	// place wins when one name contains another.
	upazilaNames []string
	unionNames   []string
}

func NewValidator(store *PlaceStore, logger *zap.Logger) *Validator {
	v := &Validator{store: store, logger: logger}

	for name := range store.upazilas {
		if len(name) >= 4 {
			v.upazilaNames = append(v.upazilaNames, name)
		}
	}
	for name := range store.unions {
		if len(name) >= 4 {
			v.unionNames = append(v.unionNames, name)
		}
	}
	byLengthThenName := func(names []string) {
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
	}
	byLengthThenName(v.upazilaNames)
	byLengthThenName(v.unionNames)

	return v
}

// ExtractFromAddress scans the address for known upazila and union names
// and returns the evidence they imply. Upazilas outrank unions.
func (v *Validator) ExtractFromAddress(address string) map[string][]models.Evidence {
	results := make(map[string][]models.Evidence)
	lower := strings.ToLower(address)

	add := func(field string, ev models.Evidence) {
		results[field] = append(results[field], ev)
	}

	for _, name := range v.upazilaNames {
		if !strings.Contains(lower, name) {
			continue
		}
		u := v.store.upazilas[name]
		add(models.FieldArea, models.Evidence{
			Value:      u.Name,
			Confidence: 0.90,
			Source:     models.SourceGazetteerValidated,
			Detail:     "upazila",
		})
		add(models.FieldDistrict, models.Evidence{
			Value:      u.District,
			Confidence: 0.95,
			Source:     models.SourceInferredFromArea,
		})
		add(models.FieldDivision, models.Evidence{
			Value:      u.Division,
			Confidence: 0.95,
			Source:     models.SourceInferredFromArea,
		})
		return results
	}

	for _, name := range v.unionNames {
		if !strings.Contains(lower, name) {
			continue
		}
		u := v.store.unions[name]
		add(models.FieldArea, models.Evidence{
			Value:      u.Name,
			Confidence: 0.85,
			Source:     models.SourceGazetteerValidated,
			Detail:     "union",
		})
		add(models.FieldDistrict, models.Evidence{
			Value:      u.District,
			Confidence: 0.90,
			Source:     models.SourceInferredFromArea,
		})
		return results
	}

	return results
}

// ValidateAndEnhance fills components implied by the evidence collected
// so far: district and division from the area, division from the
// district, and a predicted postal code when none was extracted.
func (v *Validator) ValidateAndEnhance(evidence models.EvidenceMap) map[string][]models.Evidence {
	results := make(map[string][]models.Evidence)
	add := func(field string, ev models.Evidence) {
		results[field] = append(results[field], ev)
	}

	area := evidence.FirstValue(models.FieldArea)
	district := evidence.FirstValue(models.FieldDistrict)
	division := evidence.FirstValue(models.FieldDivision)
	postal := evidence.FirstValue(models.FieldPostalCode)

	// Area implies district and division.
	if area != "" && district == "" {
		if u, ok := v.store.Upazila(area); ok {
			add(models.FieldDistrict, models.Evidence{
				Value:      u.District,
				Confidence: 0.95,
				Source:     models.SourceInferredFromArea,
			})
			add(models.FieldDivision, models.Evidence{
				Value:      u.Division,
				Confidence: 0.95,
				Source:     models.SourceInferredFromArea,
			})
			district = u.District
		} else if un, ok := v.store.Union(area); ok {
			add(models.FieldDistrict, models.Evidence{
				Value:      un.District,
				Confidence: 0.90,
				Source:     models.SourceInferredFromArea,
			})
			district = un.District
		}
	}

	// District implies division. The static district table backstops a
	// hierarchy that does not list the district.
	if district != "" && division == "" {
		if d, ok := v.store.District(district); ok {
			add(models.FieldDivision, models.Evidence{
				Value:      d.Division,
				Confidence: 0.98,
				Source:     models.SourceInferredFromDist,
			})
		} else if div, ok := extractors.DivisionFor(district); ok {
			add(models.FieldDivision, models.Evidence{
				Value:      div,
				Confidence: 0.90,
				Source:     models.SourceInferredFromDist,
			})
		}
	}

	// Predict a missing postal code from whatever place context exists.
	if postal == "" && (area != "" || district != "") {
		if pred := v.store.PredictPostalCode(area, district, division); pred != nil && pred.Confidence >= 0.80 {
			add(models.FieldPostalCode, models.Evidence{
				Value:      pred.PostalCode,
				Confidence: pred.Confidence,
				Source:     models.SourceInferredFromArea,
				Detail:     pred.Source,
			})
		}
	}

	// Corroborate an area the hierarchy actually knows.
	if area != "" {
		key := strings.ToLower(area)
		if _, ok := v.store.upazilas[key]; ok {
			add(models.FieldArea, models.Evidence{
				Value:      v.store.upazilas[key].Name,
				Confidence: 0.95,
				Source:     models.SourceGazetteerValidated,
			})
		} else if _, ok := v.store.unions[key]; ok {
			add(models.FieldArea, models.Evidence{
				Value:      v.store.unions[key].Name,
				Confidence: 0.95,
				Source:     models.SourceGazetteerValidated,
			})
		}
	}

	return results
}

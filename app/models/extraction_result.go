package models

// Component field names. Every result carries exactly these nine keys;
// unresolved fields hold the empty string.
const (
	FieldHouseNumber = "house_number"
	FieldRoad        = "road"
	FieldArea        = "area"
	FieldDistrict    = "district"
	FieldDivision    = "division"
	FieldPostalCode  = "postal_code"
	FieldFlatNumber  = "flat_number"
	FieldFloorNumber = "floor_number"
	FieldBlockNumber = "block_number"
)

// ComponentFields lists the nine fields in canonical order.
var ComponentFields = []string{
	FieldHouseNumber,
	FieldRoad,
	FieldArea,
	FieldDistrict,
	FieldDivision,
	FieldPostalCode,
	FieldFlatNumber,
	FieldFloorNumber,
	FieldBlockNumber,
}

// Script type constants reported in result metadata.
const (
	ScriptBangla  = "bangla"
	ScriptEnglish = "english"
	ScriptMixed   = "mixed"
	ScriptNeutral = "neutral"
)

// ExtractionResult is the output record for one address.
type ExtractionResult struct {
	Components        map[string]string    `json:"components"`
	OverallConfidence float64              `json:"overall_confidence"`
	ExtractionTimeMs  float64              `json:"extraction_time_ms"`
	NormalizedAddress string               `json:"normalized_address"`
	OriginalAddress   string               `json:"original_address"`
	Cached            bool                 `json:"cached,omitempty"`
	Error             string               `json:"error,omitempty"`
	Metadata          *ExtractionMetadata  `json:"metadata,omitempty"`
}

// ExtractionMetadata holds the optional diagnostics block.
type ExtractionMetadata struct {
	Script           string                       `json:"script"`
	IsMixed          bool                         `json:"is_mixed"`
	Conflicts        []string                     `json:"conflicts,omitempty"`
	ComponentDetails map[string]ResolvedComponent `json:"component_details,omitempty"`
}

// Clone returns a deep copy. The result cache hands out copies so callers
// can mutate results without corrupting cached entries.
func (r *ExtractionResult) Clone() *ExtractionResult {
	out := *r
	out.Components = make(map[string]string, len(r.Components))
	for k, v := range r.Components {
		out.Components[k] = v
	}
	if r.Metadata != nil {
		md := *r.Metadata
		md.Conflicts = append([]string(nil), r.Metadata.Conflicts...)
		if r.Metadata.ComponentDetails != nil {
			md.ComponentDetails = make(map[string]ResolvedComponent, len(r.Metadata.ComponentDetails))
			for k, v := range r.Metadata.ComponentDetails {
				md.ComponentDetails[k] = v
			}
		}
		out.Metadata = &md
	}
	return &out
}

// Component returns the resolved value for a field, or "".
func (r *ExtractionResult) Component(field string) string {
	return r.Components[field]
}

package models

// Source identifies which extraction stage produced a piece of evidence.
// The set is closed: every stage maps its output onto one of these values
// so the resolver's weight table stays exhaustive.
type Source string

const (
	SourceRegex              Source = "regex"
	SourceGazetteerValidated Source = "gazetteer_validated"
	SourceFSM                Source = "fsm"
	SourceNER                Source = "ner"
	SourceGazetteerCorrected Source = "gazetteer_corrected"
	SourceInferredFromArea   Source = "inferred_from_area"
	SourceInferredFromDist   Source = "inferred_from_district"
	SourceGazetteerInferred  Source = "gazetteer_inferred"
	SourceUnvalidated        Source = "unvalidated"
	SourceUnknown            Source = "unknown"
)

// sourceWeights are the calibrated reliability weights used for weighted
// voting when evidence disagrees. Unknown sources fall back to 0.50.
var sourceWeights = map[Source]float64{
	SourceRegex:              1.00,
	SourceGazetteerValidated: 0.95,
	SourceFSM:                0.90,
	SourceNER:                0.85,
	SourceGazetteerCorrected: 0.85,
	SourceInferredFromArea:   0.80,
	SourceInferredFromDist:   0.80,
	SourceGazetteerInferred:  0.80,
	SourceUnvalidated:        0.60,
}

// Weight returns the reliability weight for this source.
func (s Source) Weight() float64 {
	if w, ok := sourceWeights[s]; ok {
		return w
	}
	return 0.50
}

// Evidence is a single observation of a component value by one stage.
type Evidence struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
	// Detail carries stage-specific diagnostics, e.g. the sample ratio
	// backing a gazetteer-inferred postal code ("12/14 samples").
	Detail string `json:"detail,omitempty"`
}

// EvidenceMap collects all observations per component field.
type EvidenceMap map[string][]Evidence

// Add appends evidence for a field, keeping insertion order. Order matters:
// the resolver breaks score ties in favor of the first-seen value.
func (m EvidenceMap) Add(field string, ev Evidence) {
	m[field] = append(m[field], ev)
}

// FirstValue returns the earliest observed value for a field, or "".
func (m EvidenceMap) FirstValue(field string) string {
	if evs := m[field]; len(evs) > 0 {
		return evs[0].Value
	}
	return ""
}

// ResolvedComponent is the resolver's verdict for one field.
type ResolvedComponent struct {
	Value         string  `json:"value"`
	Confidence    float64 `json:"confidence"`
	Source        Source  `json:"source"`
	EvidenceCount int     `json:"evidence_count"`
	Conflict      bool    `json:"conflict,omitempty"`
}

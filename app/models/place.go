package models

// Geographic hierarchy records loaded from the per-division JSON files.
// Hierarchy: Division > District > Upazila > Union > Village.

// UpazilaRecord is an upazila with its resolved ancestry.
type UpazilaRecord struct {
	Name       string   `json:"name"`
	District   string   `json:"district"`
	Division   string   `json:"division"`
	PostalCode string   `json:"postal_code"`
	Unions     []string `json:"unions"`
}

// UnionRecord is a union with its resolved ancestry. Unions inherit the
// postal code of their upazila.
type UnionRecord struct {
	Name       string `json:"name"`
	Upazila    string `json:"upazila"`
	District   string `json:"district"`
	Division   string `json:"division"`
	PostalCode string `json:"postal_code"`
}

// VillageRecord is a village with its resolved ancestry.
type VillageRecord struct {
	Name       string `json:"name"`
	Union      string `json:"union"`
	Upazila    string `json:"upazila"`
	District   string `json:"district"`
	Division   string `json:"division"`
	PostalCode string `json:"postal_code"`
}

// DistrictRecord aggregates a district's upazilas and postal codes.
type DistrictRecord struct {
	Name        string          `json:"name"`
	Division    string          `json:"division"`
	Upazilas    []string        `json:"upazilas"`
	PostalCodes map[string]bool `json:"postal_codes"`
}

// AreaLocation is one entry in the flat area-name index: a place of any
// type (upazila, union, post office) that an area mention can resolve to.
type AreaLocation struct {
	Type       string `json:"type"`
	District   string `json:"district"`
	Division   string `json:"division,omitempty"`
	PostalCode string `json:"postal_code"`
}

// PostalPrediction is the outcome of a postal code lookup with provenance.
type PostalPrediction struct {
	PostalCode   string  `json:"postal_code"`
	Confidence   float64 `json:"confidence"`
	Source       string  `json:"source"`
	FullLocation string  `json:"full_location"`
}

// LocationHierarchy is the full ancestry resolved from a postal code.
type LocationHierarchy struct {
	PostalCode string   `json:"postal_code"`
	Upazila    string   `json:"upazila"`
	District   string   `json:"district"`
	Division   string   `json:"division"`
	Unions     []string `json:"unions"`
}

// LocationValidation reports geographic consistency checks.
type LocationValidation struct {
	Valid       bool              `json:"valid"`
	Conflicts   []string          `json:"conflicts"`
	Suggestions map[string]string `json:"suggestions"`
}

// AreaRecord is one gazetteer entry built from the labeled corpus (or
// seeded from the hierarchy). PostalCodes is ordered most-common-first.
type AreaRecord struct {
	Name         string         `json:"name"`
	District     string         `json:"district"`
	Division     string         `json:"division"`
	PostalCodes  []string       `json:"postal_codes"`
	PostalCounts map[string]int `json:"postal_code_counts"`
}

// LabeledAddress is one record of the historical labeled corpus the
// gazetteer is built from.
type LabeledAddress struct {
	Address    string            `json:"address"`
	Components map[string]string `json:"components"`
}

package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/address-extractor/app/models"
	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
)

// PlaceStore is the offline Bangladesh place hierarchy:
// Division > District > Upazila > Union > Village, plus the flat postal
// code table. All lookups are in-memory; nothing reaches the network.
type PlaceStore struct {
	logger *zap.Logger

	divisions map[string]bool
	districts map[string]*models.DistrictRecord // lowercased name
	upazilas  map[string]*models.UpazilaRecord  // lowercased name
	unions    map[string]*models.UnionRecord    // lowercased name
	villages  map[string]*models.VillageRecord  // lowercased name

	postalToUpazila  map[string]string
	postalToDistrict map[string]string
	upazilaToPostal  map[string]string
	districtPostals  map[string]map[string]bool

	areaIndex map[string][]models.AreaLocation // lowercased area name
}

// divisionFile is the on-disk shape of a per-division JSON file.
// Two formats exist: {"division": "...", "districts": [...]} and a bare
// district array.
type divisionFile struct {
	Division  string         `json:"division"`
	Districts []DistrictNode `json:"districts"`
}

type DistrictNode struct {
	Name     string        `json:"name"`
	Division string        `json:"division"`
	Upazilas []UpazilaNode `json:"upazilas"`
}

type UpazilaNode struct {
	Name       string      `json:"name"`
	PostalCode string      `json:"postalCode"`
	Unions     []UnionNode `json:"unions"`
}

type UnionNode struct {
	Name     string        `json:"name"`
	Villages []VillageNode `json:"villages"`
}

// VillageNode accepts both {"name": "..."} objects and bare strings.
type VillageNode struct {
	Name string `json:"name"`
}

func (v *VillageNode) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &v.Name)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	v.Name = obj.Name
	return nil
}

// postalFile is the on-disk shape of bd-postal-codes.json.
type postalFile struct {
	PostalCodes []PostalEntry `json:"postal_codes"`
}

type PostalEntry struct {
	Code       string `json:"code"`
	District   string `json:"district"`
	PostOffice string `json:"postOffice"`
}

var divisionFiles = []string{
	"bd-dhaka-division.json",
	"bd-chittagong-division.json",
	"bd-rajshahi-division.json",
	"bd-khulna-division.json",
	"bd-sylhet-division.json",
	"bd-barisal-division.json",
	"bd-rangpur-division.json",
	"bd-mymensingh-division.json",
}

func NewPlaceStore(logger *zap.Logger) *PlaceStore {
	return &PlaceStore{
		logger:           logger,
		divisions:        make(map[string]bool),
		districts:        make(map[string]*models.DistrictRecord),
		upazilas:         make(map[string]*models.UpazilaRecord),
		unions:           make(map[string]*models.UnionRecord),
		villages:         make(map[string]*models.VillageRecord),
		postalToUpazila:  make(map[string]string),
		postalToDistrict: make(map[string]string),
		upazilaToPostal:  make(map[string]string),
		districtPostals:  make(map[string]map[string]bool),
		areaIndex:        make(map[string][]models.AreaLocation),
	}
}

// LoadPlaceStore loads the full hierarchy from a division data directory
// plus the flat postal table, then builds the area index.
func LoadPlaceStore(divisionDir, postalPath string, logger *zap.Logger) (*PlaceStore, error) {
	s := NewPlaceStore(logger)

	loaded := 0
	for _, name := range divisionFiles {
		path := filepath.Join(divisionDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := s.LoadDivisionFile(path); err != nil {
			logger.Warn("skipping division file", zap.String("file", name), zap.Error(err))
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no division files found in %s", divisionDir)
	}

	if postalPath != "" {
		if err := s.LoadPostalFile(postalPath); err != nil {
			logger.Warn("postal code table unavailable", zap.Error(err))
		}
	}

	s.BuildIndexes()

	logger.Info("place hierarchy loaded",
		zap.Int("divisions", len(s.divisions)),
		zap.Int("districts", len(s.districts)),
		zap.Int("upazilas", len(s.upazilas)),
		zap.Int("unions", len(s.unions)),
		zap.Int("villages", len(s.villages)))

	return s, nil
}

// LoadDivisionFile parses one per-division JSON file in either format.
func (s *PlaceStore) LoadDivisionFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var df divisionFile
	if err := json.Unmarshal(b, &df); err != nil || df.Division == "" {
		// Bare district array format.
		var districts []DistrictNode
		if arrErr := json.Unmarshal(b, &districts); arrErr != nil {
			return fmt.Errorf("unrecognized division file %s: %w", path, arrErr)
		}
		df.Districts = districts
		if len(districts) > 0 {
			df.Division = districts[0].Division
		}
	}
	if df.Division == "" {
		return fmt.Errorf("division file %s has no division name", path)
	}

	s.AddDivision(df.Division, df.Districts)
	return nil
}

// AddDivision indexes one division's district tree. Villages inherit
// their upazila's postal code.
func (s *PlaceStore) AddDivision(division string, districts []DistrictNode) {
	s.divisions[division] = true

	for _, d := range districts {
		dkey := strings.ToLower(d.Name)
		rec, ok := s.districts[dkey]
		if !ok {
			rec = &models.DistrictRecord{
				Name:        d.Name,
				Division:    division,
				PostalCodes: make(map[string]bool),
			}
			s.districts[dkey] = rec
		}

		for _, u := range d.Upazilas {
			ukey := strings.ToLower(u.Name)
			urec := &models.UpazilaRecord{
				Name:       u.Name,
				District:   d.Name,
				Division:   division,
				PostalCode: u.PostalCode,
			}
			s.upazilas[ukey] = urec
			rec.Upazilas = append(rec.Upazilas, u.Name)

			if u.PostalCode != "" {
				s.postalToUpazila[u.PostalCode] = u.Name
				s.postalToDistrict[u.PostalCode] = d.Name
				s.upazilaToPostal[ukey] = u.PostalCode
				rec.PostalCodes[u.PostalCode] = true
				s.addDistrictPostal(dkey, u.PostalCode)
			}

			for _, un := range u.Unions {
				s.unions[strings.ToLower(un.Name)] = &models.UnionRecord{
					Name:       un.Name,
					Upazila:    u.Name,
					District:   d.Name,
					Division:   division,
					PostalCode: u.PostalCode,
				}
				urec.Unions = append(urec.Unions, un.Name)

				for _, v := range un.Villages {
					if v.Name == "" {
						continue
					}
					s.villages[strings.ToLower(v.Name)] = &models.VillageRecord{
						Name:       v.Name,
						Union:      un.Name,
						Upazila:    u.Name,
						District:   d.Name,
						Division:   division,
						PostalCode: u.PostalCode,
					}
				}
			}
		}
	}
}

// LoadPostalFile merges the flat postal table: district→postal coverage
// plus post-office names indexed as areas.
func (s *PlaceStore) LoadPostalFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var pf postalFile
	if err := json.Unmarshal(b, &pf); err != nil {
		return fmt.Errorf("parsing postal table %s: %w", path, err)
	}
	s.AddPostalEntries(pf.PostalCodes)
	return nil
}

// AddPostalEntries indexes flat postal table rows.
func (s *PlaceStore) AddPostalEntries(entries []PostalEntry) {
	for _, e := range entries {
		if e.Code == "" || e.District == "" {
			continue
		}
		dkey := strings.ToLower(e.District)
		s.addDistrictPostal(dkey, e.Code)

		if e.PostOffice != "" {
			key := strings.ToLower(e.PostOffice)
			s.areaIndex[key] = append(s.areaIndex[key], models.AreaLocation{
				Type:       "post_office",
				District:   e.District,
				PostalCode: e.Code,
			})
		}
	}
}

func (s *PlaceStore) addDistrictPostal(dkey, code string) {
	if s.districtPostals[dkey] == nil {
		s.districtPostals[dkey] = make(map[string]bool)
	}
	s.districtPostals[dkey][code] = true
}

// BuildIndexes adds every upazila and union to the flat area index.
// Call after all Load/Add operations.
func (s *PlaceStore) BuildIndexes() {
	for key, u := range s.upazilas {
		s.areaIndex[key] = append(s.areaIndex[key], models.AreaLocation{
			Type:       "upazila",
			District:   u.District,
			Division:   u.Division,
			PostalCode: u.PostalCode,
		})
	}
	for key, u := range s.unions {
		s.areaIndex[key] = append(s.areaIndex[key], models.AreaLocation{
			Type:       "union",
			District:   u.District,
			Division:   u.Division,
			PostalCode: u.PostalCode,
		})
	}
}

// Upazila returns the upazila record for a name, case-insensitively.
func (s *PlaceStore) Upazila(name string) (*models.UpazilaRecord, bool) {
	u, ok := s.upazilas[strings.ToLower(name)]
	return u, ok
}

// Union returns the union record for a name, case-insensitively.
func (s *PlaceStore) Union(name string) (*models.UnionRecord, bool) {
	u, ok := s.unions[strings.ToLower(name)]
	return u, ok
}

// Village returns the village record for a name, case-insensitively.
func (s *PlaceStore) Village(name string) (*models.VillageRecord, bool) {
	v, ok := s.villages[strings.ToLower(name)]
	return v, ok
}

// District returns the district record for a name, case-insensitively.
func (s *PlaceStore) District(name string) (*models.DistrictRecord, bool) {
	d, ok := s.districts[strings.ToLower(name)]
	return d, ok
}

// Upazilas exposes the upazila index for seeding and iteration.
func (s *PlaceStore) Upazilas() map[string]*models.UpazilaRecord { return s.upazilas }

// Unions exposes the union index for seeding and iteration.
func (s *PlaceStore) Unions() map[string]*models.UnionRecord { return s.unions }

// PredictPostalCode resolves a postal code from any hierarchy level,
// most precise tier first. A provided district is a hard constraint:
// a candidate from the wrong district is rejected, never down-weighted.
func (s *PlaceStore) PredictPostalCode(area, district, division string) *models.PostalPrediction {
	areaKey := strings.ToLower(strings.TrimSpace(area))
	districtKey := strings.ToLower(strings.TrimSpace(district))

	sameDistrict := func(d string) bool {
		return districtKey == "" || strings.ToLower(d) == districtKey
	}

	// Tier 1: exact upazila match.
	if areaKey != "" {
		if u, ok := s.upazilas[areaKey]; ok && sameDistrict(u.District) && u.PostalCode != "" {
			return &models.PostalPrediction{
				PostalCode:   u.PostalCode,
				Confidence:   0.95,
				Source:       "upazila_match",
				FullLocation: fmt.Sprintf("%s (Upazila), %s, %s", u.Name, u.District, u.Division),
			}
		}

		// Tier 2: exact union match.
		if u, ok := s.unions[areaKey]; ok && sameDistrict(u.District) && u.PostalCode != "" {
			return &models.PostalPrediction{
				PostalCode:   u.PostalCode,
				Confidence:   0.90,
				Source:       "union_match",
				FullLocation: fmt.Sprintf("%s (Union), %s, %s", u.Name, u.Upazila, u.District),
			}
		}

		// Tier 3: village match.
		if v, ok := s.villages[areaKey]; ok && sameDistrict(v.District) && v.PostalCode != "" {
			return &models.PostalPrediction{
				PostalCode:   v.PostalCode,
				Confidence:   0.85,
				Source:       "village_match",
				FullLocation: fmt.Sprintf("%s (Village), %s, %s", v.Name, v.Union, v.Upazila),
			}
		}

		// Tier 4: flat area index (post offices included).
		for _, loc := range s.areaIndex[areaKey] {
			if !sameDistrict(loc.District) || loc.PostalCode == "" {
				continue
			}
			return &models.PostalPrediction{
				PostalCode:   loc.PostalCode,
				Confidence:   0.80,
				Source:       loc.Type + "_match",
				FullLocation: fmt.Sprintf("%s, %s", area, loc.District),
			}
		}

		// Tier 5: substring area match. Iterate in sorted order so the
		// result is deterministic across runs.
		names := make([]string, 0, len(s.areaIndex))
		for name := range s.areaIndex {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if !strings.Contains(name, areaKey) && !strings.Contains(areaKey, name) {
				continue
			}
			for _, loc := range s.areaIndex[name] {
				if !sameDistrict(loc.District) || loc.PostalCode == "" {
					continue
				}
				return &models.PostalPrediction{
					PostalCode:   loc.PostalCode,
					Confidence:   0.70,
					Source:       "fuzzy_area_match",
					FullLocation: "Near " + name,
				}
			}
		}
	}

	// Tier 6: district-level inference, lowest code for determinism.
	if districtKey != "" {
		if postals := s.districtPostals[districtKey]; len(postals) > 0 {
			codes := make([]string, 0, len(postals))
			for code := range postals {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			return &models.PostalPrediction{
				PostalCode:   codes[0],
				Confidence:   0.60,
				Source:       "district_inference",
				FullLocation: fmt.Sprintf("%s (District-level)", district),
			}
		}
	}

	return nil
}

// FullHierarchy resolves a postal code to its complete ancestry.
func (s *PlaceStore) FullHierarchy(postalCode string) *models.LocationHierarchy {
	upazila, ok := s.postalToUpazila[postalCode]
	if !ok {
		return nil
	}
	u := s.upazilas[strings.ToLower(upazila)]
	if u == nil {
		return nil
	}
	return &models.LocationHierarchy{
		PostalCode: postalCode,
		Upazila:    upazila,
		District:   u.District,
		Division:   u.Division,
		Unions:     append([]string(nil), u.Unions...),
	}
}

// ValidateLocation checks postal↔district and district↔division
// consistency, collecting conflicts and corrected suggestions.
func (s *PlaceStore) ValidateLocation(area, district, division, postalCode string) models.LocationValidation {
	conflicts := []string{}
	suggestions := map[string]string{}

	if postalCode != "" && district != "" {
		if expected, ok := s.postalToDistrict[postalCode]; ok && !strings.EqualFold(expected, district) {
			conflicts = append(conflicts,
				fmt.Sprintf("Postal %s belongs to %s, not %s", postalCode, expected, district))
			suggestions["district"] = expected
		}
	}

	if district != "" && division != "" {
		if d, ok := s.districts[strings.ToLower(district)]; ok && !strings.EqualFold(d.Division, division) {
			conflicts = append(conflicts,
				fmt.Sprintf("District %s belongs to %s, not %s", district, d.Division, division))
			suggestions["division"] = d.Division
		}
	}

	// Unknown district: suggest the closest known name.
	if district != "" {
		if _, ok := s.districts[strings.ToLower(district)]; !ok {
			if best := s.SuggestDistrict(district); best != "" {
				suggestions["district"] = best
			}
		}
	}

	return models.LocationValidation{
		Valid:       len(conflicts) == 0,
		Conflicts:   conflicts,
		Suggestions: suggestions,
	}
}

// SuggestDistrict returns the known district closest to the given name,
// scored by Jaro-Winkler with an edit-distance length penalty. Returns ""
// when nothing scores above 0.80.
func (s *PlaceStore) SuggestDistrict(name string) string {
	query := strings.ToLower(name)
	best, bestScore := "", 0.80

	keys := make([]string, 0, len(s.districts))
	for k := range s.districts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		score := smetrics.JaroWinkler(query, key, 0.7, 4)
		dist := levenshtein.ComputeDistance(query, key)
		if dist > len(key)/2 {
			score -= 0.1
		}
		if score > bestScore {
			bestScore = score
			best = s.districts[key].Name
		}
	}
	return best
}

package gazetteer

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/app/models"
	"github.com/address-extractor/internal/geo"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// fuzzyCacheSize bounds the memoized fuzzy-match verdicts. Area-name
// comparisons repeat heavily across addresses, so a small LRU takes most
// of the cost out of the fuzzy strategy.
const fuzzyCacheSize = 8192

var postalRe = regexp.MustCompile(`^\d{4}$`)

type districtEntry struct {
	Name     string
	Division string
}

// Gazetteer is the authority on area names: built from the labeled
// address corpus, seeded from the place hierarchy when no corpus exists,
// consulted for area extraction and for validation of collected evidence.
type Gazetteer struct {
	areas     map[string]*models.AreaRecord // lowercased name
	areaNames []string                      // sorted keys, fixed iteration order
	districts map[string]districtEntry      // lowercased name
	store     *geo.PlaceStore
	fuzzy     *lru.Cache[string, bool]
	logger    *zap.Logger
	version   string
}

func New(store *geo.PlaceStore, logger *zap.Logger) *Gazetteer {
	cache, _ := lru.New[string, bool](fuzzyCacheSize)
	return &Gazetteer{
		areas:     make(map[string]*models.AreaRecord),
		districts: make(map[string]districtEntry),
		store:     store,
		fuzzy:     cache,
		logger:    logger,
		version:   "seed",
	}
}

// Load builds the gazetteer from the corpus file when present, otherwise
// seeds it from the place hierarchy.
func Load(corpusPath string, store *geo.PlaceStore, logger *zap.Logger) *Gazetteer {
	g := New(store, logger)

	if corpusPath != "" {
		if err := g.LoadCorpus(corpusPath); err != nil {
			logger.Warn("corpus unavailable, seeding from hierarchy", zap.Error(err))
		}
	}
	if len(g.areas) == 0 && store != nil {
		g.SeedFromHierarchy()
	}

	logger.Info("gazetteer ready",
		zap.Int("areas", len(g.areas)),
		zap.Int("districts", len(g.districts)),
		zap.String("version", g.version))
	return g
}

// LoadCorpus reads the labeled address corpus and rebuilds the area table.
func (g *Gazetteer) LoadCorpus(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}
	var records []models.LabeledAddress
	if err := json.Unmarshal(b, &records); err != nil {
		return fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	g.BuildFromRecords(records)
	g.version = fmt.Sprintf("corpus-%d", len(records))
	return nil
}

// BuildFromRecords aggregates the labeled corpus into area records: each
// area gets its most common district and division, and its postal codes
// ordered most-common-first with counts kept for confidence scoring.
func (g *Gazetteer) BuildFromRecords(records []models.LabeledAddress) {
	type areaStats struct {
		name      string
		districts map[string]int
		divisions map[string]int
		postals   map[string]int
	}
	stats := make(map[string]*areaStats)
	districtDivisions := make(map[string]map[string]int)
	districtNames := make(map[string]string)

	for _, rec := range records {
		area := strings.TrimSpace(rec.Components[models.FieldArea])
		district := strings.TrimSpace(rec.Components[models.FieldDistrict])
		division := strings.TrimSpace(rec.Components[models.FieldDivision])
		postal := strings.TrimSpace(rec.Components[models.FieldPostalCode])

		if area != "" {
			key := strings.ToLower(area)
			st, ok := stats[key]
			if !ok {
				st = &areaStats{
					name:      area,
					districts: make(map[string]int),
					divisions: make(map[string]int),
					postals:   make(map[string]int),
				}
				stats[key] = st
			}
			if district != "" {
				st.districts[district]++
			}
			if division != "" {
				st.divisions[division]++
			}
			if postal != "" {
				st.postals[postal]++
			}
		}

		if district != "" && division != "" {
			dkey := strings.ToLower(district)
			if districtDivisions[dkey] == nil {
				districtDivisions[dkey] = make(map[string]int)
				districtNames[dkey] = district
			}
			districtDivisions[dkey][division]++
		}
	}

	for key, st := range stats {
		codes := make([]string, 0, len(st.postals))
		for code := range st.postals {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool {
			if st.postals[codes[i]] != st.postals[codes[j]] {
				return st.postals[codes[i]] > st.postals[codes[j]]
			}
			return codes[i] < codes[j]
		})
		g.areas[key] = &models.AreaRecord{
			Name:         st.name,
			District:     mostCommon(st.districts),
			Division:     mostCommon(st.divisions),
			PostalCodes:  codes,
			PostalCounts: st.postals,
		}
	}

	for dkey, divisions := range districtDivisions {
		g.districts[dkey] = districtEntry{
			Name:     districtNames[dkey],
			Division: mostCommon(divisions),
		}
	}

	g.finalize()
}

// SeedFromHierarchy populates the area table from upazilas and unions
// when no corpus is available. Upazilas take precedence over unions.
func (g *Gazetteer) SeedFromHierarchy() {
	if g.store == nil {
		return
	}

	for key, u := range g.store.Upazilas() {
		var codes []string
		counts := map[string]int{}
		if u.PostalCode != "" {
			codes = []string{u.PostalCode}
			counts[u.PostalCode] = 1
		}
		g.areas[key] = &models.AreaRecord{
			Name:         u.Name,
			District:     u.District,
			Division:     u.Division,
			PostalCodes:  codes,
			PostalCounts: counts,
		}
		dkey := strings.ToLower(u.District)
		if _, ok := g.districts[dkey]; !ok {
			g.districts[dkey] = districtEntry{Name: u.District, Division: u.Division}
		}
	}

	for key, u := range g.store.Unions() {
		if _, exists := g.areas[key]; exists {
			continue
		}
		var codes []string
		counts := map[string]int{}
		if u.PostalCode != "" {
			codes = []string{u.PostalCode}
			counts[u.PostalCode] = 1
		}
		g.areas[key] = &models.AreaRecord{
			Name:         u.Name,
			District:     u.District,
			Division:     u.Division,
			PostalCodes:  codes,
			PostalCounts: counts,
		}
	}

	g.finalize()
}

func (g *Gazetteer) finalize() {
	g.areaNames = g.areaNames[:0]
	for key := range g.areas {
		g.areaNames = append(g.areaNames, key)
	}
	sort.Strings(g.areaNames)
}

func mostCommon(counts map[string]int) string {
	best, bestCount := "", 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

// Area returns the record for an area name, case-insensitively.
func (g *Gazetteer) Area(name string) (*models.AreaRecord, bool) {
	rec, ok := g.areas[strings.ToLower(name)]
	return rec, ok
}

// AreaNames returns every known area name in canonical form.
func (g *Gazetteer) AreaNames() []string {
	names := make([]string, 0, len(g.areaNames))
	for _, key := range g.areaNames {
		names = append(names, g.areas[key].Name)
	}
	return names
}

// Version identifies the data the gazetteer was built from. Cached
// extraction results carry it so a rebuild invalidates them.
func (g *Gazetteer) Version() string { return g.version }

// ExtractAreaFromAddress finds the most likely area mention. Strategies
// in descending priority: exact word between the road and the district,
// exact substring anywhere with position bonuses, fuzzy word match, and
// finally an upazila-name scan. Returns nil when nothing scores.
func (g *Gazetteer) ExtractAreaFromAddress(address, road, district string) *models.Evidence {
	addressLower := strings.ToLower(address)
	words := contentWords(addressLower)

	var best *models.Evidence
	bestScore := 0.0

	consider := func(value string, score, cap float64, strategy string) {
		if score <= bestScore {
			return
		}
		bestScore = score
		best = &models.Evidence{
			Value:      value,
			Confidence: min(score, cap),
			Source:     models.SourceGazetteerInferred,
			Detail:     strategy,
		}
	}

	roadPos, districtPos := -1, -1
	if road != "" {
		roadPos = strings.Index(addressLower, strings.ToLower(road))
	}
	if district != "" {
		districtPos = strings.Index(addressLower, strings.ToLower(district))
	}

	// Strategy 1: word sitting between the road and the district. The
	// district name can occur inside the road ("North Sylhet Road"),
	// leaving no span between them; the strategy then has nothing to scan.
	if roadPos != -1 && districtPos != -1 && roadPos < districtPos &&
		roadPos+len(road) <= districtPos {
		between := addressLower[roadPos+len(road) : districtPos]
		for _, word := range contentWords(between) {
			for _, key := range g.areaNames {
				if word == key {
					consider(g.areas[key].Name, 0.90, 0.90, "position_exact")
				} else if g.fuzzyMatchWord(key, word) {
					consider(g.areas[key].Name, 0.80, 0.80, "position_fuzzy")
				}
			}
		}
	}

	// Strategy 2: exact substring anywhere, scored by position.
	for _, key := range g.areaNames {
		areaPos := strings.Index(addressLower, key)
		if areaPos == -1 {
			continue
		}
		score := 0.6 + 0.2
		if roadPos != -1 && areaPos > roadPos {
			score += 0.2
		}
		if districtPos != -1 && areaPos < districtPos {
			score += 0.2
		}
		consider(g.areas[key].Name, score, 0.95, "exact_match")
	}

	// Strategy 3: fuzzy word match anywhere, small position bonus.
	for _, key := range g.areaNames {
		matched := ""
		for _, word := range words {
			if g.fuzzyMatchWord(key, word) {
				matched = word
				break
			}
		}
		if matched == "" {
			continue
		}
		score := 0.70
		wordPos := strings.Index(addressLower, matched)
		if roadPos != -1 && wordPos > roadPos {
			score += 0.1
		}
		if districtPos != -1 && wordPos < districtPos {
			score += 0.1
		}
		consider(g.areas[key].Name, score, 0.90, "fuzzy_match")
	}

	// Strategy 4: upazila-name scan when nothing else matched.
	if best == nil && g.store != nil {
		for _, word := range words {
			if len(word) <= 3 {
				continue
			}
			if u, ok := g.store.Upazila(word); ok {
				return &models.Evidence{
					Value:      u.Name,
					Confidence: 0.75,
					Source:     models.SourceGazetteerInferred,
					Detail:     "hierarchy_upazila",
				}
			}
		}
	}

	return best
}

// fuzzyMatchWord reports whether a word plausibly refers to an area
// name, tolerating common transliteration variants and typos. Verdicts
// are memoized.
func (g *Gazetteer) fuzzyMatchWord(areaKey, word string) bool {
	cacheKey := word + "\x00" + areaKey
	if v, ok := g.fuzzy.Get(cacheKey); ok {
		return v
	}
	v := fuzzyMatch(areaKey, word)
	g.fuzzy.Add(cacheKey, v)
	return v
}

func fuzzyMatch(area, word string) bool {
	if word == area {
		return true
	}

	// Transliteration variants, e.g. "gulisthan" for "gulshan".
	wordVariants := []string{
		word,
		strings.ReplaceAll(word, "than", "shan"),
		strings.ReplaceAll(word, "stan", "shan"),
		strings.ReplaceAll(word, "isthan", "shan"),
		strings.ReplaceAll(word, "ishan", "shan"),
	}
	areaVariants := []string{
		area,
		strings.ReplaceAll(area, "than", "shan"),
		strings.ReplaceAll(area, "stan", "shan"),
	}
	for _, wv := range wordVariants {
		for _, av := range areaVariants {
			if wv == av {
				return true
			}
		}
	}

	if len(word) < 4 || len(area) < 4 {
		return false
	}

	wordCore := word[:min(5, len(word))]
	areaCore := area[:min(5, len(area))]
	if wordCore == areaCore {
		return true
	}

	prefixLen := config.C.Fuzzy.PrefixLen
	if len(wordCore) >= prefixLen && len(areaCore) >= prefixLen &&
		wordCore[:prefixLen] == areaCore[:prefixLen] {
		return charJaccard(word, area) >= config.C.Fuzzy.MinJaccard
	}
	return false
}

func charJaccard(a, b string) float64 {
	setA := make(map[rune]bool)
	for _, r := range a {
		setA[r] = true
	}
	setB := make(map[rune]bool)
	for _, r := range b {
		setB[r] = true
	}
	common := 0
	for r := range setA {
		if setB[r] {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// Validate checks collected area/district/postal values against the
// gazetteer, which is authoritative: a district contradicting the area's
// record is corrected and the disagreement reported as a conflict.
func (g *Gazetteer) Validate(area, district, postal string) (map[string][]models.Evidence, []string) {
	results := make(map[string][]models.Evidence)
	var conflicts []string
	add := func(field string, ev models.Evidence) {
		results[field] = append(results[field], ev)
	}

	rec, known := (*models.AreaRecord)(nil), false
	if area != "" {
		rec, known = g.Area(area)
	}

	switch {
	case known:
		add(models.FieldArea, models.Evidence{
			Value:      rec.Name,
			Confidence: 0.98,
			Source:     models.SourceGazetteerValidated,
		})

		switch {
		case district == "" && rec.District != "":
			add(models.FieldDistrict, models.Evidence{
				Value:      rec.District,
				Confidence: 0.95,
				Source:     models.SourceInferredFromArea,
			})
		case district != "" && rec.District != "" && !strings.EqualFold(district, rec.District):
			conflicts = append(conflicts,
				fmt.Sprintf("District mismatch: expected %s, got %s", rec.District, district))
			add(models.FieldDistrict, models.Evidence{
				Value:      rec.District,
				Confidence: 0.90,
				Source:     models.SourceGazetteerCorrected,
			})
		case district != "":
			add(models.FieldDistrict, models.Evidence{
				Value:      district,
				Confidence: 0.98,
				Source:     models.SourceGazetteerValidated,
			})
		}

		if rec.Division != "" {
			add(models.FieldDivision, models.Evidence{
				Value:      rec.Division,
				Confidence: 0.95,
				Source:     models.SourceInferredFromArea,
			})
		}

		postalValidated := false
		if postal != "" && postalRe.MatchString(postal) {
			if contains(rec.PostalCodes, postal) {
				add(models.FieldPostalCode, models.Evidence{
					Value:      postal,
					Confidence: 0.99,
					Source:     models.SourceGazetteerValidated,
				})
			} else {
				add(models.FieldPostalCode, models.Evidence{
					Value:      postal,
					Confidence: 0.75,
					Source:     models.SourceUnvalidated,
				})
			}
			postalValidated = true
		}

		if !postalValidated && len(rec.PostalCodes) > 0 {
			add(models.FieldPostalCode, g.inferPostal(rec))
		} else if !postalValidated && g.store != nil {
			fallbackDistrict := district
			if fallbackDistrict == "" {
				fallbackDistrict = rec.District
			}
			if pred := g.store.PredictPostalCode(area, fallbackDistrict, rec.Division); pred != nil && pred.Confidence >= 0.90 {
				add(models.FieldPostalCode, models.Evidence{
					Value:      pred.PostalCode,
					Confidence: pred.Confidence,
					Source:     models.SourceInferredFromArea,
					Detail:     pred.Source,
				})
			}
		}

	case district != "":
		if entry, ok := g.districts[strings.ToLower(district)]; ok {
			add(models.FieldDistrict, models.Evidence{
				Value:      entry.Name,
				Confidence: 0.95,
				Source:     models.SourceGazetteerValidated,
			})
			if entry.Division != "" {
				add(models.FieldDivision, models.Evidence{
					Value:      entry.Division,
					Confidence: 0.95,
					Source:     models.SourceInferredFromDist,
				})
			}
			if postal == "" && g.store != nil {
				if pred := g.store.PredictPostalCode(area, district, entry.Division); pred != nil && pred.Confidence >= 0.90 {
					add(models.FieldPostalCode, models.Evidence{
						Value:      pred.PostalCode,
						Confidence: pred.Confidence,
						Source:     models.SourceInferredFromDist,
						Detail:     pred.Source,
					})
				}
			}
			break
		}
		fallthrough

	default:
		if g.store != nil && (area != "" || district != "") {
			if pred := g.store.PredictPostalCode(area, district, ""); pred != nil && pred.Confidence >= 0.95 {
				source := models.SourceInferredFromArea
				if area == "" {
					source = models.SourceInferredFromDist
				}
				add(models.FieldPostalCode, models.Evidence{
					Value:      pred.PostalCode,
					Confidence: pred.Confidence,
					Source:     source,
					Detail:     pred.Source,
				})
			}
		}
	}

	return results, conflicts
}

// inferPostal picks the area's most common postal code, with confidence
// scaled by how dominant it is in the samples.
func (g *Gazetteer) inferPostal(rec *models.AreaRecord) models.Evidence {
	code := rec.PostalCodes[0]
	count := rec.PostalCounts[code]
	total := 0
	for _, c := range rec.PostalCounts {
		total += c
	}

	confidence := 0.90
	switch {
	case len(rec.PostalCodes) == 1:
		confidence = 0.98
	case total > 0 && float64(count)/float64(total) >= 0.8:
		confidence = 0.98
	case total > 0 && float64(count)/float64(total) >= 0.6:
		confidence = 0.95
	}

	return models.Evidence{
		Value:      code,
		Confidence: confidence,
		Source:     models.SourceGazetteerInferred,
		Detail:     fmt.Sprintf("%d/%d samples", count, total),
	}
}

func contentWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	words := fields[:0]
	for _, w := range fields {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

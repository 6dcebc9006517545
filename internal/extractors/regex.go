package extractors

import (
	"regexp"
	"strings"

	"github.com/address-extractor/app/models"
)

// patternRule pairs a precompiled pattern with the confidence assigned to
// its matches. Patterns are ordered most-specific first; the first match
// wins per field.
type patternRule struct {
	re         *regexp.Regexp
	confidence float64
}

// RegexExtractor runs the per-field pattern tables over a normalized
// address and emits regex evidence. It is always enabled.
type RegexExtractor struct {
	house  []patternRule
	road   []patternRule
	postal []patternRule
	flat   []patternRule
	floor  []patternRule
	block  []patternRule
}

// minConfidence is the acceptance bar for a pattern match.
const minConfidence = 0.70

var housePatterns = []patternRule{
	{regexp.MustCompile(`(?i)\b(?:house|home|hous|bari|basha|basa)\s+(?:no\.?|number)\s*[-:]?\s*(\d{1,5}(?:/[A-Za-z0-9]+)*[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:holding)\s+(?:no\.?|number)\s*[-:]?\s*(\d+(?:/[A-Za-z0-9]+)*[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:plot)\s+(?:no\.?|number)?\s*[-:]?\s*(\d+(?:/\d+)?[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:building|bldg)\s+(?:no\.?|number)?\s*[-:]?\s*(\d{1,5}[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:house|home|hous|bari|basha|basa)\s*[-:]?\s*(\d{1,5}(?:/[A-Za-z0-9]+)*[A-Za-z]?)\b`), 0.96},
	{regexp.MustCompile(`(?i)\bh\s*[-:@]?\s*(\d{1,5}(?:/[A-Za-z0-9]+)?[A-Za-z]?)\b`), 0.95},
	// Bare slash-form holding numbers, e.g. "107/2-A" at the start of an address.
	{regexp.MustCompile(`^\s*(\d+[A-Za-z]?(?:[/-]\d+[A-Za-z]?)+)\s*[,\s]`), 0.90},
}

var roadPatterns = []patternRule{
	{regexp.MustCompile(`(?i)\b(?:road|rd)\s+(?:no\.?|number)\s*[-:]?\s*(\d+(?:/\d+)?[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:road|rd)\s*[-:]\s*(\d+(?:/\d+)?[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:lane|line)\s+(?:no\.?|number)?\s*[-:]?\s*(\d+(?:/\d+)?[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\bavenue\s+(\d+)\b`), 0.98},
	{regexp.MustCompile(`(?i)\br\s*[-:@]\s*(\d+(?:/\d+)?[A-Za-z]?)\b`), 0.95},
	{regexp.MustCompile(`(?i)\b(?:road|rd)\s+(\d+(?:/\d+)?[A-Za-z]?)\b`), 0.95},
	// Named roads keep the full name, e.g. "Mirpur Road", "Green Road".
	{regexp.MustCompile(`\b([A-Z][A-Za-z.]*(?:\s+[A-Z][A-Za-z.]*){0,3}\s+(?:Road|Rd|Avenue|Lane|Street))\b`), 0.90},
}

var postalPatterns = []patternRule{
	{regexp.MustCompile(`(?i)\bpost(?:al)?\s*(?:code|office)?\s*[:\s]\s*(?:G\.?P\.?O\.?\s+)?(\d{4})\b`), 1.00},
	{regexp.MustCompile(`(?i)\bp\.?o\.?\s*[:\s]\s*(?:G\.?P\.?O\.?\s+)?(\d{4})\b`), 1.00},
	{regexp.MustCompile(`(?i)\b(?:zip|pin\s+code)\s*[:\s]\s*(\d{4})\b`), 0.98},
	// City-dash form, e.g. "Dhaka-1216".
	{regexp.MustCompile(`(?i)\b(?:dhaka|mirpur|uttara|gulshan|banani|dhanmondi|chattogram|chittagong|sylhet|rajshahi|khulna|barisal|rangpur|mymensingh|comilla|gazipur|narayanganj|savar|tongi|bogura|jessore|kushtia|noakhali|feni|tangail|pabna)\s*-\s*(\d{4})\b`), 0.95},
}

var flatPatterns = []patternRule{
	{regexp.MustCompile(`(?i)\bflat\s+(?:no\.?|number)\s*[-:]?\s*(\d+[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\bflat\s*[-:]?\s*([A-Za-z]?\d+[A-Za-z]?)\b`), 0.98},
}

var floorPatterns = []patternRule{
	{regexp.MustCompile(`(?i)\bfloor\s+(?:no\.?|number)\s*[-:]?\s*(\d+[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:floor|level|lift)\s*[-:]?\s*(\d+[A-Za-z]?)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)\s+floor\b`), 0.98},
}

var blockPatterns = []patternRule{
	{regexp.MustCompile(`(?i)\b(?:block|blk)\s+(?:no\.?|number)\s*[-:]?\s*([A-Za-z0-9]+)\b`), 0.98},
	{regexp.MustCompile(`(?i)\b(?:block|blk)\s*[-:]?\s*([A-Za-z0-9]+)\b`), 0.98},
	{regexp.MustCompile(`(?i)\bsector\s*[-:]?\s*(\d+[A-Za-z]?)\b`), 0.98},
}

// districtDivisions maps district names (lowercased) to their division.
// Backs the district/division extractor and the tagger lexicon.
var districtDivisions = map[string]string{
	"dhaka":        "Dhaka",
	"gazipur":      "Dhaka",
	"narayanganj":  "Dhaka",
	"tangail":      "Dhaka",
	"kishoreganj":  "Dhaka",
	"manikganj":    "Dhaka",
	"munshiganj":   "Dhaka",
	"narsingdi":    "Dhaka",
	"faridpur":     "Dhaka",
	"chattogram":   "Chattogram",
	"comilla":      "Chattogram",
	"feni":         "Chattogram",
	"noakhali":     "Chattogram",
	"chandpur":     "Chattogram",
	"brahmanbaria": "Chattogram",
	"sylhet":       "Sylhet",
	"moulvibazar":  "Sylhet",
	"habiganj":     "Sylhet",
	"sunamganj":    "Sylhet",
	"rajshahi":     "Rajshahi",
	"bogura":       "Rajshahi",
	"pabna":        "Rajshahi",
	"sirajganj":    "Rajshahi",
	"natore":       "Rajshahi",
	"naogaon":      "Rajshahi",
	"khulna":       "Khulna",
	"jessore":      "Khulna",
	"kushtia":      "Khulna",
	"satkhira":     "Khulna",
	"bagerhat":     "Khulna",
	"barisal":      "Barisal",
	"patuakhali":   "Barisal",
	"bhola":        "Barisal",
	"pirojpur":     "Barisal",
	"rangpur":      "Rangpur",
	"dinajpur":     "Rangpur",
	"gaibandha":    "Rangpur",
	"kurigram":     "Rangpur",
	"nilphamari":   "Rangpur",
	"thakurgaon":   "Rangpur",
	"mymensingh":   "Mymensingh",
	"jamalpur":     "Mymensingh",
	"netrokona":    "Mymensingh",
	"sherpur":      "Mymensingh",
}

var districtRe = buildDistrictRe()

func buildDistrictRe() *regexp.Regexp {
	names := make([]string, 0, len(districtDivisions))
	for name := range districtDivisions {
		names = append(names, regexp.QuoteMeta(name))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		house:  housePatterns,
		road:   roadPatterns,
		postal: postalPatterns,
		flat:   flatPatterns,
		floor:  floorPatterns,
		block:  blockPatterns,
	}
}

// Extract runs every field's pattern table and returns the evidence map
// contributions from this stage.
func (x *RegexExtractor) Extract(address string) map[string]models.Evidence {
	results := make(map[string]models.Evidence)

	extract := func(field string, rules []patternRule) {
		for _, rule := range rules {
			m := rule.re.FindStringSubmatch(address)
			if m == nil || rule.confidence < minConfidence {
				continue
			}
			results[field] = models.Evidence{
				Value:      strings.TrimSpace(m[1]),
				Confidence: rule.confidence,
				Source:     models.SourceRegex,
			}
			return
		}
	}

	extract(models.FieldHouseNumber, x.house)
	extract(models.FieldRoad, x.road)
	extract(models.FieldPostalCode, x.postal)
	extract(models.FieldFlatNumber, x.flat)
	extract(models.FieldFloorNumber, x.floor)
	extract(models.FieldBlockNumber, x.block)

	if m := districtRe.FindStringSubmatch(address); m != nil {
		district := titleCase(m[1])
		results[models.FieldDistrict] = models.Evidence{
			Value:      district,
			Confidence: 0.90,
			Source:     models.SourceRegex,
		}
		if division, ok := districtDivisions[strings.ToLower(district)]; ok {
			results[models.FieldDivision] = models.Evidence{
				Value:      division,
				Confidence: 0.85,
				Source:     models.SourceRegex,
			}
		}
	}

	return results
}

// DivisionFor returns the division a known district belongs to.
func DivisionFor(district string) (string, bool) {
	div, ok := districtDivisions[strings.ToLower(district)]
	return div, ok
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

package extractors

import (
	"regexp"

	"github.com/address-extractor/app/models"
)

// fsmConfidence is the flat confidence for every FSM-extracted component.
const fsmConfidence = 0.75

// FSMParser is the keyword-anchored fallback parser. It is deliberately
// simpler than the regex tables: one pattern family per field, first
// match wins, flat confidence.
type FSMParser struct{}

var (
	fsmHouse = []*regexp.Regexp{
		regexp.MustCompile(`(?i)House\s+No\s+(\d+[A-Za-z]?)`),
		regexp.MustCompile(`(?i)House\s+No\s+(\d+/[A-Za-z])`),
		regexp.MustCompile(`(?i)House\s+(\d+)`),
		regexp.MustCompile(`(?i)\bH\s+(\d+)`),
	}
	fsmRoad = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Road\s+No\s+(\d+[A-Za-z]?)`),
		regexp.MustCompile(`(?i)Road\s+No\s+(\d+/[A-Za-z]?)`),
		regexp.MustCompile(`(?i)Road\s+(\d+)`),
		regexp.MustCompile(`(?i)\bR\s+(\d+)`),
	}
	fsmPostal = regexp.MustCompile(`\b(\d{4})\b`)
	fsmFlat   = regexp.MustCompile(`(?i)Flat\s+(\w+)`)
	fsmFloor  = regexp.MustCompile(`(?i)Floor\s+(\d+)`)
	fsmBlock  = regexp.MustCompile(`(?i)Block\s+([A-Z0-9]+)`)
)

func NewFSMParser() *FSMParser { return &FSMParser{} }

// Parse extracts the keyword-anchored components. A 4-digit group only
// counts as a postal code when it sits in the second half of the address.
func (p *FSMParser) Parse(address string) map[string]models.Evidence {
	results := make(map[string]models.Evidence)

	add := func(field, value string) {
		if value == "" {
			return
		}
		results[field] = models.Evidence{
			Value:      value,
			Confidence: fsmConfidence,
			Source:     models.SourceFSM,
		}
	}

	for _, re := range fsmHouse {
		if m := re.FindStringSubmatch(address); m != nil {
			add(models.FieldHouseNumber, m[1])
			break
		}
	}
	for _, re := range fsmRoad {
		if m := re.FindStringSubmatch(address); m != nil {
			add(models.FieldRoad, m[1])
			break
		}
	}

	if loc := fsmPostal.FindStringSubmatchIndex(address); loc != nil {
		if loc[1] > len(address)/2 {
			add(models.FieldPostalCode, address[loc[2]:loc[3]])
		}
	}

	if m := fsmFlat.FindStringSubmatch(address); m != nil {
		add(models.FieldFlatNumber, m[1])
	}
	if m := fsmFloor.FindStringSubmatch(address); m != nil {
		add(models.FieldFloorNumber, m[1])
	}
	if m := fsmBlock.FindStringSubmatch(address); m != nil {
		add(models.FieldBlockNumber, m[1])
	}

	return results
}

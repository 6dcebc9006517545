package extractors

import (
	"strings"

	"github.com/address-extractor/app/models"
)

// nerConfidence is the confidence assigned to tagger output.
const nerConfidence = 0.85

// EntityTagger is the seam for a learned place-name tagger. The pipeline
// degrades to empty output when no model is configured.
type EntityTagger interface {
	Tag(address string) map[string]models.Evidence
}

// NoopTagger is the disabled default.
type NoopTagger struct{}

func (NoopTagger) Tag(string) map[string]models.Evidence { return nil }

// LexiconTagger is a lexicon-backed tagger: it labels known area and
// district names found in the address. Stands in for a trained model
// with the same evidence contract.
type LexiconTagger struct {
	areas map[string]string // lowercased name -> canonical form
}

// NewLexiconTagger builds a tagger over the given area names.
func NewLexiconTagger(areaNames []string) *LexiconTagger {
	areas := make(map[string]string, len(areaNames))
	for _, name := range areaNames {
		if name != "" {
			areas[strings.ToLower(name)] = name
		}
	}
	return &LexiconTagger{areas: areas}
}

// Tag scans for lexicon entries as whole words.
func (t *LexiconTagger) Tag(address string) map[string]models.Evidence {
	results := make(map[string]models.Evidence)
	lower := strings.ToLower(address)

	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '(' || r == ')'
	}) {
		if canonical, ok := t.areas[word]; ok {
			if _, seen := results[models.FieldArea]; !seen {
				results[models.FieldArea] = models.Evidence{
					Value:      canonical,
					Confidence: nerConfidence,
					Source:     models.SourceNER,
				}
			}
		}
		if _, ok := districtDivisions[word]; ok {
			if _, seen := results[models.FieldDistrict]; !seen {
				results[models.FieldDistrict] = models.Evidence{
					Value:      titleCase(word),
					Confidence: nerConfidence,
					Source:     models.SourceNER,
				}
			}
		}
	}

	return results
}

package engine

import (
	"github.com/address-extractor/app/models"
)

// collectEvidence runs the extractor stages over the normalized text and
// assembles the per-field evidence lists. Stage order is fixed (FSM,
// regex, tagger); the resolver's first-seen tie-break depends on it.
func (e *Engine) collectEvidence(normalized string) models.EvidenceMap {
	evidence := models.EvidenceMap{}

	if e.cfg.FSMParsing {
		for field, ev := range e.fsm.Parse(normalized) {
			evidence.Add(field, ev)
		}
	}

	for field, ev := range e.regex.Extract(normalized) {
		evidence.Add(field, ev)
	}

	if e.cfg.Tagger {
		for field, ev := range e.tagger.Tag(normalized) {
			evidence.Add(field, ev)
		}
	}

	return evidence
}

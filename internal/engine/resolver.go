package engine

import (
	"regexp"

	"github.com/address-extractor/app/models"
)

var resolverPostalRe = regexp.MustCompile(`^\d{4}$`)

// Resolver fuses per-field evidence into final component verdicts by
// weighted voting. Agreement boosts confidence, disagreement picks the
// highest weighted score and penalizes it.
type Resolver struct{}

func NewResolver() *Resolver { return &Resolver{} }

// Resolve collapses each field's evidence list to one value. Postal code
// evidence that is not a 4-digit code is discarded before voting.
func (r *Resolver) Resolve(evidence models.EvidenceMap) map[string]models.ResolvedComponent {
	resolved := make(map[string]models.ResolvedComponent, len(evidence))

	for field, evs := range evidence {
		if field == models.FieldPostalCode {
			evs = filterPostal(evs)
		}
		if len(evs) == 0 {
			continue
		}
		resolved[field] = resolveField(evs)
	}

	return resolved
}

func filterPostal(evs []models.Evidence) []models.Evidence {
	out := evs[:0:0]
	for _, ev := range evs {
		if resolverPostalRe.MatchString(ev.Value) {
			out = append(out, ev)
		}
	}
	return out
}

func resolveField(evs []models.Evidence) models.ResolvedComponent {
	distinct := 0
	seen := map[string]bool{}
	for _, ev := range evs {
		if !seen[ev.Value] {
			seen[ev.Value] = true
			distinct++
		}
	}

	if distinct == 1 {
		return resolveConsensus(evs)
	}
	return resolveConflict(evs)
}

// resolveConsensus handles full agreement: average confidence with a
// small corroboration boost, capped below certainty.
func resolveConsensus(evs []models.Evidence) models.ResolvedComponent {
	sum := 0.0
	best := evs[0]
	for _, ev := range evs {
		sum += ev.Confidence
		if ev.Confidence > best.Confidence {
			best = ev
		}
	}
	confidence := min(sum/float64(len(evs))*1.05, 0.99)

	return models.ResolvedComponent{
		Value:         best.Value,
		Confidence:    confidence,
		Source:        best.Source,
		EvidenceCount: len(evs),
	}
}

// resolveConflict scores each candidate value by confidence x source
// weight. Ties go to the value observed first. The winner keeps its best
// evidence's confidence, discounted for the disagreement.
func resolveConflict(evs []models.Evidence) models.ResolvedComponent {
	scores := map[string]float64{}
	order := []string{}
	for _, ev := range evs {
		if _, ok := scores[ev.Value]; !ok {
			order = append(order, ev.Value)
		}
		scores[ev.Value] += ev.Confidence * ev.Source.Weight()
	}

	winner := order[0]
	for _, value := range order {
		if scores[value] > scores[winner] {
			winner = value
		}
	}

	var best models.Evidence
	for _, ev := range evs {
		if ev.Value == winner && ev.Confidence > best.Confidence {
			best = ev
		}
	}

	return models.ResolvedComponent{
		Value:         winner,
		Confidence:    best.Confidence * 0.90,
		Source:        best.Source,
		EvidenceCount: len(evs),
		Conflict:      true,
	}
}

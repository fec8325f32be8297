// Package confidence turns a run's gathered evidence into field scores,
// discrepancies, and the aggregate confidence signals. Everything here is
// pure computation: the engine sees only the record snapshot and the
// evidence list, so identical inputs always produce identical output.
package confidence

import (
	"sort"

	"veridex/internal/evidence"
	"veridex/internal/listing"
	"veridex/internal/similarity"
)

// trackedFields is the fixed evaluation order for per-field scoring.
var trackedFields = []listing.Field{
	listing.FieldRegistryID,
	listing.FieldLicenseNumber,
	listing.FieldPhone,
	listing.FieldAddress,
	listing.FieldAltPhone,
	listing.FieldName,
	listing.FieldWebsite,
	listing.FieldSpecialty,
	listing.FieldCredentials,
	listing.FieldServices,
}

// BlendWeights assigns each scored field its share of the overall
// confidence. Weights must sum to 1.0.
type BlendWeights map[listing.Field]float64

// DefaultBlendWeights returns the shipped per-field blend.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{
		listing.FieldRegistryID:    0.20,
		listing.FieldLicenseNumber: 0.15,
		listing.FieldPhone:         0.15,
		listing.FieldAddress:       0.20,
		listing.FieldAltPhone:      0.10,
		listing.FieldCredentials:   0.10,
		listing.FieldServices:      0.10,
	}
}

// FieldScore is the per-field confidence derived from every evidence entry
// touching that field.
type FieldScore struct {
	Field listing.Field `json:"field"`
	Score float64       `json:"score"`

	// Sources lists the contributing evidence entries by source name; every
	// name references an entry in the same run's evidence list.
	Sources []string `json:"sources"`
}

// Discrepancy is a field where the stored value and an evidence-suggested
// value differ beyond the similarity gate.
type Discrepancy struct {
	Field      listing.Field       `json:"field"`
	Current    string              `json:"current"`
	Suggested  string              `json:"suggested"`
	Source     string              `json:"source"`
	Confidence float64             `json:"confidence"`
	Severity   similarity.Severity `json:"severity"`
}

// Result carries everything the decision router needs from scoring.
type Result struct {
	Fields        map[listing.Field]FieldScore `json:"fields"`
	Discrepancies []Discrepancy                `json:"discrepancies"`

	// Overall is the fixed-weight blend of field scores, in [0,1]. This is
	// the signal the decision router thresholds (0.70/0.85) apply to.
	Overall float64 `json:"overall"`

	// MatchConfidence is the scoring-library final confidence (source,
	// address, phone blend plus boosts), classified against the 0.45
	// field-action threshold. It is a deliberately distinct signal from
	// Overall; see similarity.Config.AcceptThreshold.
	MatchConfidence float64             `json:"match_confidence"`
	MatchAction     similarity.Action   `json:"match_action"`
	MatchSeverity   similarity.Severity `json:"match_severity"`
}

// Engine computes Result values. Construct once and share; it is stateless.
type Engine struct {
	cfg   similarity.Config
	blend BlendWeights
}

func NewEngine(cfg similarity.Config, blend BlendWeights) *Engine {
	if blend == nil {
		blend = DefaultBlendWeights()
	}
	return &Engine{cfg: cfg, blend: blend}
}

// Score evaluates all evidence for one record.
func (e *Engine) Score(rec listing.Record, entries []evidence.Entry) Result {
	res := Result{Fields: make(map[listing.Field]FieldScore)}

	for _, field := range trackedFields {
		if score, ok := e.scoreField(rec, field, entries); ok {
			res.Fields[field] = score
		}
		if d, ok := e.findDiscrepancy(rec, field, entries); ok {
			res.Discrepancies = append(res.Discrepancies, d)
		}
	}

	res.Overall = e.blendFields(res.Fields)

	in := e.finalInputs(rec, res.Fields, entries)
	res.MatchConfidence = e.cfg.FinalConfidence(in)
	res.MatchAction = e.cfg.ActionFor(res.MatchConfidence)
	res.MatchSeverity = e.cfg.SeverityFor(res.MatchConfidence)
	return res
}

// FieldSimilarity picks the metric suited to a field's shape: composite for
// addresses, edit distance for normalized phones, Jaro-Winkler for short
// identifier-like values, cosine for free text.
func (e *Engine) FieldSimilarity(field listing.Field, current, suggested string) float64 {
	switch field {
	case listing.FieldAddress:
		return e.cfg.CompositeAddress(current, suggested)
	case listing.FieldPhone, listing.FieldAltPhone:
		if current == suggested {
			return 1
		}
		return similarity.LevenshteinSimilarity(current, suggested)
	case listing.FieldRegistryID, listing.FieldLicenseNumber, listing.FieldWebsite, listing.FieldJurisdiction:
		return similarity.JaroWinkler(current, suggested)
	default:
		return similarity.Cosine(current, suggested)
	}
}

func (e *Engine) scoreField(rec listing.Record, field listing.Field, entries []evidence.Entry) (FieldScore, bool) {
	current := rec.Value(field)
	matched := make(map[string]bool)
	weights := make(map[string]float64)
	var sources []string

	for _, entry := range entries {
		if entry.Outcome != evidence.OutcomeFound {
			continue
		}
		value, ok := entry.Field(field)
		if !ok {
			continue
		}
		weights[entry.Source] = entry.Weight
		matched[entry.Source] = current != "" &&
			e.FieldSimilarity(field, current, value) >= e.cfg.MatchThreshold
		sources = append(sources, entry.Source)
	}
	if len(sources) == 0 {
		return FieldScore{}, false
	}
	sort.Strings(sources)

	return FieldScore{
		Field:   field,
		Score:   similarity.WeightedVote(matched, weights),
		Sources: sources,
	}, true
}

func (e *Engine) findDiscrepancy(rec listing.Record, field listing.Field, entries []evidence.Entry) (Discrepancy, bool) {
	current := rec.Value(field)
	if current == "" {
		// A missing stored value is a gap, not a discrepancy; the anomaly
		// detectors account for it.
		return Discrepancy{}, false
	}

	// Highest-weight differing suggestion wins; entry order breaks ties so
	// the outcome is stable.
	var best *evidence.Entry
	var bestValue string
	for i, entry := range entries {
		if entry.Outcome != evidence.OutcomeFound {
			continue
		}
		value, ok := entry.Field(field)
		if !ok || value == current {
			continue
		}
		if best == nil || entry.Weight > best.Weight {
			best = &entries[i]
			bestValue = value
		}
	}
	if best == nil {
		return Discrepancy{}, false
	}

	if field == listing.FieldAddress {
		if !e.cfg.ShouldSuggestAddressChange(current, bestValue) {
			return Discrepancy{}, false
		}
	}
	sim := e.FieldSimilarity(field, current, bestValue)
	if sim >= e.cfg.SuggestionGate {
		// Formatting noise, not a real difference.
		return Discrepancy{}, false
	}

	return Discrepancy{
		Field:      field,
		Current:    current,
		Suggested:  bestValue,
		Source:     best.Source,
		Confidence: best.Weight,
		Severity:   discrepancySeverity(e.cfg, sim),
	}, true
}

// discrepancySeverity grades how far the suggested value drifts from the
// stored one.
func discrepancySeverity(cfg similarity.Config, sim float64) similarity.Severity {
	switch {
	case sim < cfg.AcceptThreshold:
		return similarity.SeverityHigh
	case sim < cfg.MatchThreshold:
		return similarity.SeverityMedium
	default:
		return similarity.SeverityLow
	}
}

func (e *Engine) blendFields(fields map[listing.Field]FieldScore) float64 {
	var overall float64
	for _, field := range trackedFields {
		weight, ok := e.blend[field]
		if !ok {
			continue
		}
		if score, ok := fields[field]; ok {
			overall += weight * score.Score
		}
	}
	return overall
}

func (e *Engine) finalInputs(rec listing.Record, fields map[listing.Field]FieldScore, entries []evidence.Entry) similarity.FinalInputs {
	in := similarity.FinalInputs{}

	if score, ok := fields[listing.FieldAddress]; ok {
		in.AddressScore = score.Score
	}
	if score, ok := fields[listing.FieldPhone]; ok {
		in.PhoneScore = score.Score
	}
	if alt, ok := fields[listing.FieldAltPhone]; ok && alt.Score > in.PhoneScore {
		in.PhoneScore = alt.Score
	}

	// Source-level agreement: a source votes yes when at least one of its
	// reported fields matches the stored value.
	matched := make(map[string]bool)
	weights := make(map[string]float64)
	for _, entry := range entries {
		if entry.Outcome != evidence.OutcomeFound {
			continue
		}
		weights[entry.Source] = entry.Weight
		agreed := e.sourceAgrees(rec, entry)
		matched[entry.Source] = matched[entry.Source] || agreed

		if agreed {
			in.IndependentAgreeing++
		}
		if entry.Authoritative {
			score := entry.Weight * e.sourceAgreement(rec, entry)
			in.AuthoritativeScore = &score
		}
	}
	in.SourceScore = similarity.WeightedVote(matched, weights)
	return in
}

func (e *Engine) sourceAgrees(rec listing.Record, entry evidence.Entry) bool {
	for _, field := range trackedFields {
		current := rec.Value(field)
		if current == "" {
			continue
		}
		if value, ok := entry.Field(field); ok {
			if e.FieldSimilarity(field, current, value) >= e.cfg.MatchThreshold {
				return true
			}
		}
	}
	return false
}

// sourceAgreement is the mean similarity across the fields a source and the
// record both carry. Used as the authoritative source's own score.
func (e *Engine) sourceAgreement(rec listing.Record, entry evidence.Entry) float64 {
	var sum float64
	var n int
	for _, field := range trackedFields {
		current := rec.Value(field)
		if current == "" {
			continue
		}
		if value, ok := entry.Field(field); ok {
			sum += e.FieldSimilarity(field, current, value)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

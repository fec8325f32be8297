package similarity

import "sort"

// Action classifies a proposed field-level change.
type Action string

const (
	ActionAutoAccept  Action = "AUTO_ACCEPT"
	ActionNeedsReview Action = "NEEDS_REVIEW"
)

// Severity grades a discrepancy, anomaly, or decision.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Config carries every tunable weight and threshold used by the scoring
// functions. All values have working defaults; operators override them
// through the scoring config file.
type Config struct {
	// Composite address similarity weights. Jaro-Winkler is weighted
	// highest because address tokens are short and ordering-sensitive.
	AddressCosineWeight      float64 `toml:"address_cosine_weight"`
	AddressJaroWeight        float64 `toml:"address_jaro_weight"`
	AddressLevenshteinWeight float64 `toml:"address_levenshtein_weight"`

	// Final confidence blend weights.
	SourceWeight  float64 `toml:"source_weight"`
	AddressWeight float64 `toml:"address_weight"`
	PhoneWeight   float64 `toml:"phone_weight"`

	// AuthoritativeBoost is the multiplicative boost applied when an
	// authoritative source is present. The result is floored at the
	// authoritative source's own score before boosting so a single
	// authoritative match is never diluted by weaker signals.
	AuthoritativeBoost float64 `toml:"authoritative_boost"`

	// MultiSourceBoost applies when two or more independent sources agree.
	MultiSourceBoost float64 `toml:"multi_source_boost"`

	// AcceptThreshold is the field-action threshold: confidence at or above
	// it auto-accepts the suggestion with LOW severity; below it the
	// suggestion needs review with HIGH severity.
	//
	// This is a deliberately different scale from the decision-router
	// thresholds (see decision.Thresholds): this one classifies a proposed
	// field change, the router ones route the whole record.
	AcceptThreshold float64 `toml:"accept_threshold"`

	// MatchThreshold is the similarity at or above which an evidence value
	// counts as agreeing with the record's current value.
	MatchThreshold float64 `toml:"match_threshold"`

	// SuggestionGate suppresses change suggestions whose composite
	// similarity is at or above this bound; such differences are treated
	// as formatting noise rather than real discrepancies.
	SuggestionGate float64 `toml:"suggestion_gate"`
}

// DefaultConfig returns the shipped scoring defaults.
func DefaultConfig() Config {
	return Config{
		AddressCosineWeight:      0.40,
		AddressJaroWeight:        0.45,
		AddressLevenshteinWeight: 0.15,
		SourceWeight:             0.5,
		AddressWeight:            0.3,
		PhoneWeight:              0.2,
		AuthoritativeBoost:       1.30,
		MultiSourceBoost:         1.15,
		AcceptThreshold:          0.45,
		MatchThreshold:           0.85,
		SuggestionGate:           0.99,
	}
}

// CompositeAddress blends cosine, Jaro-Winkler and normalized Levenshtein
// into one address similarity score.
func (c Config) CompositeAddress(a, b string) float64 {
	return c.AddressCosineWeight*Cosine(a, b) +
		c.AddressJaroWeight*JaroWinkler(a, b) +
		c.AddressLevenshteinWeight*LevenshteinSimilarity(a, b)
}

// WeightedVote computes sum(weight | matched) / sum(weight) over sources.
// Sources absent from weights contribute nothing. Returns 0 when no source
// carries weight. Sources are folded in name order so the float result is
// reproducible run to run.
func WeightedVote(matched map[string]bool, weights map[string]float64) float64 {
	sources := make([]string, 0, len(weights))
	for source := range weights {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var total, agreed float64
	for _, source := range sources {
		weight := weights[source]
		if weight <= 0 {
			continue
		}
		total += weight
		if matched[source] {
			agreed += weight
		}
	}
	if total == 0 {
		return 0
	}
	return agreed / total
}

// FinalInputs are the aggregate signals feeding FinalConfidence.
type FinalInputs struct {
	SourceScore  float64
	AddressScore float64
	PhoneScore   float64

	// AuthoritativeScore is the authoritative source's own score when such
	// a source produced evidence, nil otherwise.
	AuthoritativeScore *float64

	// IndependentAgreeing counts independent sources that agreed on at
	// least one field.
	IndependentAgreeing int
}

// FinalConfidence blends the aggregate signals into one confidence value:
// weighted blend, then authoritative floor and boost, then multi-source
// boost. Each boost is clamped so the result stays within [0,1].
func (c Config) FinalConfidence(in FinalInputs) float64 {
	conf := c.SourceWeight*in.SourceScore +
		c.AddressWeight*in.AddressScore +
		c.PhoneWeight*in.PhoneScore

	if in.AuthoritativeScore != nil {
		if conf < *in.AuthoritativeScore {
			conf = *in.AuthoritativeScore
		}
		conf = clamp01(conf * c.AuthoritativeBoost)
	}
	if in.IndependentAgreeing >= 2 {
		conf = clamp01(conf * c.MultiSourceBoost)
	}
	return clamp01(conf)
}

// ActionFor classifies a confidence against the field-action threshold.
func (c Config) ActionFor(confidence float64) Action {
	if confidence >= c.AcceptThreshold {
		return ActionAutoAccept
	}
	return ActionNeedsReview
}

// SeverityFor grades a confidence against the field-action threshold.
func (c Config) SeverityFor(confidence float64) Severity {
	if confidence >= c.AcceptThreshold {
		return SeverityLow
	}
	return SeverityHigh
}

// ShouldSuggestAddressChange gates address-like change suggestions: no
// suggestion when the values are identical or nearly so, which keeps
// cosmetic formatting differences out of review queues.
func (c Config) ShouldSuggestAddressChange(current, suggested string) bool {
	if current == suggested {
		return false
	}
	return c.CompositeAddress(current, suggested) < c.SuggestionGate
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

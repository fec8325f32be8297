package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedVote(t *testing.T) {
	weights := map[string]float64{
		"identifier_registry": 1.0,
		"license_registry":    0.9,
		"web_search":          0.3,
	}

	t.Run("all agree", func(t *testing.T) {
		matched := map[string]bool{
			"identifier_registry": true,
			"license_registry":    true,
			"web_search":          true,
		}
		assert.InDelta(t, 1.0, WeightedVote(matched, weights), 1e-9)
	})

	t.Run("weight proportional", func(t *testing.T) {
		matched := map[string]bool{"identifier_registry": true}
		assert.InDelta(t, 1.0/2.2, WeightedVote(matched, weights), 1e-9)
	})

	t.Run("no weights", func(t *testing.T) {
		assert.Equal(t, 0.0, WeightedVote(map[string]bool{"x": true}, nil))
	})

	t.Run("unknown sources ignored", func(t *testing.T) {
		matched := map[string]bool{"unknown": true}
		assert.Equal(t, 0.0, WeightedVote(matched, weights))
	})

	t.Run("zero weight excluded from denominator", func(t *testing.T) {
		w := map[string]float64{"a": 1.0, "b": 0}
		assert.InDelta(t, 1.0, WeightedVote(map[string]bool{"a": true}, w), 1e-9)
	})
}

func TestFinalConfidence(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("plain blend without boosts", func(t *testing.T) {
		got := cfg.FinalConfidence(FinalInputs{
			SourceScore:  0.8,
			AddressScore: 0.6,
			PhoneScore:   1.0,
		})
		assert.InDelta(t, 0.5*0.8+0.3*0.6+0.2*1.0, got, 1e-9)
	})

	t.Run("authoritative boost clamps at one", func(t *testing.T) {
		auth := 0.95
		got := cfg.FinalConfidence(FinalInputs{
			SourceScore:        0.95,
			AddressScore:       0.95,
			PhoneScore:         0.95,
			AuthoritativeScore: &auth,
		})
		assert.Equal(t, 1.0, got)
	})

	t.Run("authoritative floor lifts weak blend", func(t *testing.T) {
		auth := 0.9
		got := cfg.FinalConfidence(FinalInputs{
			SourceScore:        0.2,
			AddressScore:       0.1,
			PhoneScore:         0.0,
			AuthoritativeScore: &auth,
		})
		// Floored at 0.9, then boosted and clamped.
		assert.Equal(t, 1.0, got)
	})

	t.Run("multi source boost", func(t *testing.T) {
		got := cfg.FinalConfidence(FinalInputs{
			SourceScore:         0.48,
			AddressScore:        0.48,
			PhoneScore:          0.48,
			IndependentAgreeing: 2,
		})
		assert.InDelta(t, 0.552, got, 1e-9)
	})

	t.Run("single source gets no multi boost", func(t *testing.T) {
		in := FinalInputs{SourceScore: 0.48, AddressScore: 0.48, PhoneScore: 0.48}
		boosted := in
		boosted.IndependentAgreeing = 1
		assert.Equal(t, cfg.FinalConfidence(in), cfg.FinalConfidence(boosted))
	})

	t.Run("monotonic in source score", func(t *testing.T) {
		lo := cfg.FinalConfidence(FinalInputs{SourceScore: 0.3, AddressScore: 0.5, PhoneScore: 0.5})
		hi := cfg.FinalConfidence(FinalInputs{SourceScore: 0.6, AddressScore: 0.5, PhoneScore: 0.5})
		assert.Greater(t, hi, lo)
	})

	t.Run("never exceeds one", func(t *testing.T) {
		auth := 1.0
		got := cfg.FinalConfidence(FinalInputs{
			SourceScore:         1.0,
			AddressScore:        1.0,
			PhoneScore:          1.0,
			AuthoritativeScore:  &auth,
			IndependentAgreeing: 5,
		})
		assert.Equal(t, 1.0, got)
	})
}

func TestActionAndSeverityFor(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ActionAutoAccept, cfg.ActionFor(0.45))
	assert.Equal(t, ActionAutoAccept, cfg.ActionFor(0.92))
	assert.Equal(t, ActionNeedsReview, cfg.ActionFor(0.4499))

	assert.Equal(t, SeverityLow, cfg.SeverityFor(0.552))
	assert.Equal(t, SeverityHigh, cfg.SeverityFor(0.2))
}

func TestShouldSuggestAddressChange(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("identical values never suggested", func(t *testing.T) {
		assert.False(t, cfg.ShouldSuggestAddressChange("123 Main St", "123 Main St"))
	})

	t.Run("near identical gated as formatting noise", func(t *testing.T) {
		relaxed := cfg
		relaxed.SuggestionGate = 0.95
		assert.False(t, relaxed.ShouldSuggestAddressChange("123 main street", "123 Main Street"))
	})

	t.Run("real difference suggested", func(t *testing.T) {
		assert.True(t, cfg.ShouldSuggestAddressChange("123 Main St", "500 Oak Avenue"))
	})
}

func TestCompositeAddress(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("identical scores one", func(t *testing.T) {
		assert.InDelta(t, 1.0, cfg.CompositeAddress("42 Elm St, Springfield", "42 Elm St, Springfield"), 1e-9)
	})

	t.Run("weights sum applied", func(t *testing.T) {
		a, b := "123 Main Street", "123 Main Avenue"
		want := cfg.AddressCosineWeight*Cosine(a, b) +
			cfg.AddressJaroWeight*JaroWinkler(a, b) +
			cfg.AddressLevenshteinWeight*LevenshteinSimilarity(a, b)
		assert.InDelta(t, want, cfg.CompositeAddress(a, b), 1e-9)
	})
}

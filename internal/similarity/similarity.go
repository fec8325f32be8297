// Package similarity provides the pure string-similarity and confidence
// scoring functions used by the reconciliation engine. Nothing in this
// package performs I/O; every function is deterministic in its inputs.
package similarity

import (
	"math"
	"strings"
)

// Cosine computes tokenized cosine similarity over word-frequency vectors.
// Tokens are lowercased and split on whitespace, punctuation collapsed.
// Returns a value in [0,1]; two empty strings score 1, one empty scores 0.
func Cosine(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	freqA := termFrequencies(ta)
	freqB := termFrequencies(tb)

	var dot, normA, normB float64
	for term, fa := range freqA {
		if fb, ok := freqB[term]; ok {
			dot += fa * fb
		}
		normA += fa * fa
	}
	for _, fb := range freqB {
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		}
		return true
	})
}

func termFrequencies(tokens []string) map[string]float64 {
	freq := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// jaroWinklerPrefixScale is the standard Winkler prefix bonus scale.
const jaroWinklerPrefixScale = 0.1

// maxPrefixLength bounds the common prefix considered by the Winkler bonus.
const maxPrefixLength = 4

// JaroWinkler computes Jaro-Winkler similarity with prefix bonus, tuned for
// short identifier-like strings. Case-insensitive. Returns a value in [0,1].
func JaroWinkler(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	jaro := jaroSimilarity(a, b)
	if jaro == 0 {
		return 0
	}

	prefix := 0
	for prefix < len(a) && prefix < len(b) && prefix < maxPrefixLength {
		if a[prefix] != b[prefix] {
			break
		}
		prefix++
	}
	return jaro + float64(prefix)*jaroWinklerPrefixScale*(1-jaro)
}

func jaroSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	matchWindow := max(la, lb)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		lo := max(0, i-matchWindow)
		hi := min(lb-1, i+matchWindow)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3
}

// Levenshtein computes the edit distance between two strings.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity normalizes edit distance into [0,1]:
// 1 - distance/max(len(a), len(b)). Two empty strings score 1.
func LevenshteinSimilarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

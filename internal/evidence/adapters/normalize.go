package adapters

import (
	"strings"
)

// credentialSuffixes are stripped from names before comparison so "Jane
// Smith, MD" and "Jane Smith" compare equal across sources.
var credentialSuffixes = []string{
	"md", "do", "dds", "dmd", "phd", "rn", "np", "pa", "pa-c", "dpm",
	"od", "dc", "lcsw", "cpa", "esq", "jr", "sr", "ii", "iii",
}

// NormalizeName lowercases, strips honorifics and trailing credential
// abbreviations, and collapses whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "dr. ")
	name = strings.TrimPrefix(name, "dr ")

	// Credentials are usually comma-separated after the surname.
	parts := strings.Split(name, ",")
	kept := parts[:1]
	for _, part := range parts[1:] {
		if !isCredentialToken(strings.TrimSpace(part)) {
			kept = append(kept, part)
		}
	}
	name = strings.Join(kept, ",")
	return strings.Join(strings.Fields(name), " ")
}

func isCredentialToken(token string) bool {
	token = strings.ReplaceAll(strings.ToLower(token), ".", "")
	for _, suffix := range credentialSuffixes {
		if token == suffix {
			return true
		}
	}
	return false
}

// NormalizePhone reduces a phone number to bare digits and drops a leading
// country code 1 from 11-digit numbers.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d
}

// NormalizeWebsite lowercases and strips scheme, www prefix, and trailing
// slashes so listing and registry URLs compare equal.
func NormalizeWebsite(site string) string {
	site = strings.ToLower(strings.TrimSpace(site))
	site = strings.TrimPrefix(site, "https://")
	site = strings.TrimPrefix(site, "http://")
	site = strings.TrimPrefix(site, "www.")
	return strings.TrimRight(site, "/")
}

// NormalizeRegion upper-cases and trims a state/region code for
// jurisdiction comparison.
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

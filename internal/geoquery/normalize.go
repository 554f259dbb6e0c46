package geoquery

import (
	"regexp"
	"strings"
)

// suffixExpansions maps common street-suffix abbreviations (lowercase, without
// trailing period) to their spelled-out forms. Loose geocoders tolerate either
// form; the Census structured API matches better on the full word.
var suffixExpansions = map[string]string{
	"rd":   "Road",
	"st":   "Street",
	"ave":  "Avenue",
	"dr":   "Drive",
	"ln":   "Lane",
	"hwy":  "Highway",
	"blvd": "Boulevard",
	"ct":   "Court",
	"pl":   "Place",
	"cir":  "Circle",
	"pkwy": "Parkway",
	"ter":  "Terrace",
}

var (
	spaceRunRe = regexp.MustCompile(`\s+`)
	commaRunRe = regexp.MustCompile(`\s*,[\s,]*`)
)

// NormalizeUS prepares a US-looking query for the geocoding chain: comma and
// whitespace runs collapse, ZIP+4 reduces to ZIP5, and street-suffix
// abbreviations expand ("Rd" to "Road").
func NormalizeUS(query string) string {
	q := normalizeSeparators(query)
	q = zipPlus4Re.ReplaceAllString(q, "$1")

	words := strings.Split(q, " ")
	for i, w := range words {
		bare := strings.TrimSuffix(w, ".")
		trailingComma := strings.HasSuffix(bare, ",")
		bare = strings.TrimSuffix(bare, ",")
		// An all-caps two-letter token is read as a state abbreviation
		// ("CT", "PA"), not a street suffix ("Ct", "Pl").
		if bare == strings.ToUpper(bare) && IsStateAbbr(bare) {
			continue
		}
		if full, ok := suffixExpansions[strings.ToLower(bare)]; ok {
			if trailingComma {
				full += ","
			}
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// NormalizeIntl collapses whitespace and normalizes comma spacing without any
// abbreviation expansion.
func NormalizeIntl(query string) string {
	return normalizeSeparators(query)
}

// normalizeSeparators collapses whitespace runs to a single space and comma
// runs (with any surrounding whitespace) to a single ", ".
func normalizeSeparators(q string) string {
	q = commaRunRe.ReplaceAllString(q, ", ")
	q = spaceRunRe.ReplaceAllString(q, " ")
	return strings.Trim(q, ", ")
}

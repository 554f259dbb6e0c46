// Package geoquery classifies and normalizes free-text place queries before
// they enter the geocoding chain.
package geoquery

import (
	"regexp"
	"strings"
)

// usStates holds lowercase two-letter USPS abbreviations, including DC.
var usStates = map[string]bool{
	"al": true, "ak": true, "az": true, "ar": true, "ca": true, "co": true,
	"ct": true, "de": true, "fl": true, "ga": true, "hi": true, "id": true,
	"il": true, "in": true, "ia": true, "ks": true, "ky": true, "la": true,
	"me": true, "md": true, "ma": true, "mi": true, "mn": true, "ms": true,
	"mo": true, "mt": true, "ne": true, "nv": true, "nh": true, "nj": true,
	"nm": true, "ny": true, "nc": true, "nd": true, "oh": true, "ok": true,
	"or": true, "pa": true, "ri": true, "sc": true, "sd": true, "tn": true,
	"tx": true, "ut": true, "vt": true, "va": true, "wa": true, "wv": true,
	"wi": true, "wy": true, "dc": true,
}

var (
	zipRe      = regexp.MustCompile(`\b\d{5}(-\d{4})?\b`)
	zipPlus4Re = regexp.MustCompile(`\b(\d{5})-\d{4}\b`)
	wordRe     = regexp.MustCompile(`[A-Za-z]+`)
)

// IsLikelyUS reports whether the query looks like a US-domestic place search:
// it contains a 5-digit ZIP (optionally +4), a two-letter state abbreviation
// as a whole word, or a "USA"/"United States" token. Case-insensitive.
func IsLikelyUS(query string) bool {
	if zipRe.MatchString(query) {
		return true
	}
	lower := strings.ToLower(query)
	if strings.Contains(lower, "united states") {
		return true
	}
	for _, w := range wordRe.FindAllString(lower, -1) {
		if w == "usa" || (len(w) == 2 && usStates[w]) {
			return true
		}
	}
	return false
}

// IsStateAbbr reports whether token is a two-letter US state abbreviation.
func IsStateAbbr(token string) bool {
	return len(token) == 2 && usStates[strings.ToLower(token)]
}

package geoquery

import (
	"regexp"
	"strings"
)

// Parts is the structured decomposition of a US address query, suitable for
// the Census structured-parts endpoint. Empty fields were not recognized.
type Parts struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

var (
	houseNumberRe = regexp.MustCompile(`^\d+\b`)
	trailingZipRe = regexp.MustCompile(`^(\d{5})(-\d{4})?$`)
)

// SplitUSAddress breaks a one-line query into street/city/state/zip parts.
//
// The last whole-word two-letter state token anchors the split. A ZIP is
// recognized only when it follows the state and ends the string. Text before
// the state splits on commas (city is the final segment); with no comma and a
// leading house number, the last two words are taken as a two-word city.
// The heuristic is lossy: anything it cannot place stays in Street.
func SplitUSAddress(query string) Parts {
	q := normalizeSeparators(query)
	if q == "" {
		return Parts{}
	}

	words := strings.Split(q, " ")
	stateIdx := -1
	for i, w := range words {
		if IsStateAbbr(strings.Trim(w, ",.")) {
			stateIdx = i
		}
	}
	if stateIdx < 0 {
		return Parts{Street: q}
	}

	p := Parts{State: strings.ToUpper(strings.Trim(words[stateIdx], ",."))}

	// A ZIP counts only after the state and at the very end.
	rest := words[stateIdx+1:]
	if len(rest) > 0 {
		if m := trailingZipRe.FindStringSubmatch(strings.Trim(rest[len(rest)-1], ",.")); m != nil {
			p.Zip = m[1]
		}
	}

	before := strings.Trim(strings.Join(words[:stateIdx], " "), ", ")
	if before == "" {
		return p
	}

	if strings.Contains(before, ",") {
		segs := strings.Split(before, ",")
		p.City = strings.TrimSpace(segs[len(segs)-1])
		p.Street = strings.Trim(strings.Join(segs[:len(segs)-1], ","), ", ")
		return p
	}

	// No comma: with a leading house number and enough words, assume the last
	// two words are a two-word city ("123 Main St West Fork").
	bw := strings.Fields(before)
	if houseNumberRe.MatchString(before) && len(bw) > 3 {
		p.City = strings.Join(bw[len(bw)-2:], " ")
		p.Street = strings.Join(bw[:len(bw)-2], " ")
		return p
	}

	p.Street = before
	return p
}

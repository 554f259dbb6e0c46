// Package tips implements the annotation core: target-key derivation,
// draft/publish visibility, id-or-index resolution, and the tip service.
package tips

import (
	"fmt"
	"strings"
)

// Target key prefixes. A key is "usgs:<siteId>" for stream-gage sites and
// "custom:<markerIndex>" for user markers. Once assigned to a tip group, a
// key never changes.
const (
	KeyPrefixUSGS   = "usgs:"
	KeyPrefixCustom = "custom:"
)

// KeyInput is the heterogeneous shape callers use to identify a tip target:
// an explicit key, a USGS site id, or a marker index.
type KeyInput struct {
	Key         string `json:"key,omitempty"`
	SiteID      string `json:"siteId,omitempty"`
	MarkerIndex *int   `json:"markerIndex,omitempty"`
}

// ResolveKey derives the target key. An explicit key already containing the
// separator is used verbatim; otherwise siteId wins over markerIndex, and a
// markerIndex of 0 is valid. Returns false when nothing identifies a target.
func ResolveKey(in KeyInput) (string, bool) {
	if strings.Contains(in.Key, ":") {
		return in.Key, true
	}
	if in.SiteID != "" {
		return KeyPrefixUSGS + in.SiteID, true
	}
	if in.MarkerIndex != nil {
		return fmt.Sprintf("%s%d", KeyPrefixCustom, *in.MarkerIndex), true
	}
	return "", false
}

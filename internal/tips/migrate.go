package tips

import (
	"strings"

	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/model"
)

// looksLikeSiteID reports whether a bare legacy key reads as a USGS site
// number: all digits, 7 to 15 characters. Numeric custom marker indices stay
// short in practice, so the ranges do not collide.
func looksLikeSiteID(key string) bool {
	if len(key) < 7 || len(key) > 15 {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MigrateLegacyKeys rewrites unprefixed legacy tip keys into the prefixed
// form: bare site numbers become "usgs:<id>", everything else "custom:<key>".
// Already-prefixed keys pass through untouched, which makes the migration
// idempotent. When a rewritten key collides with an existing prefixed group,
// the legacy tips append after it. Returns the migrated map and the number
// of keys rewritten.
func MigrateLegacyKeys(byKey model.TipsByKey) (model.TipsByKey, int) {
	migrated := make(model.TipsByKey, len(byKey))
	moved := 0

	for key, group := range byKey {
		target := key
		if !strings.Contains(key, ":") {
			if looksLikeSiteID(key) {
				target = KeyPrefixUSGS + key
			} else {
				target = KeyPrefixCustom + key
			}
			moved++
			zap.L().Info("migrating legacy tip key",
				zap.String("from", key),
				zap.String("to", target),
			)
		}
		migrated[target] = append(migrated[target], group...)
	}
	return migrated, moved
}

// Package species provides species key normalization and rarity
// classification for Tropimon Stats.
package species

import "strings"

// Namespace is the canonical prefix every species key carries.
const Namespace = "cobblemon:"

// Normalize canonicalizes a raw species identifier. It trims surrounding
// whitespace, lower-cases the string, and prepends the namespace prefix
// when missing, so "geodude", "Geodude" and "CObbLEmon:geodude" all map to
// "cobblemon:geodude". It is total: any input, including the empty string,
// yields a key. Callers must reject empty raw identifiers before creating
// captures.
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(key, Namespace) {
		key = Namespace + key
	}
	return key
}

// legendaries is the static set of legendary species keys.
var legendaries = map[string]struct{}{
	"cobblemon:articuno":  {},
	"cobblemon:zaptos":    {},
	"cobblemon:moltres":   {},
	"cobblemon:suicune":   {},
	"cobblemon:entei":     {},
	"cobblemon:raikou":    {},
	"cobblemon:regigigas": {},
	"cobblemon:rayquaza":  {},
}

// mythicals is the static set of mythical species keys.
// Disjoint from legendaries; no species carries both flags.
var mythicals = map[string]struct{}{
	"cobblemon:mew":       {},
	"cobblemon:celebi":    {},
	"cobblemon:jirachi":   {},
	"cobblemon:manaphy":   {},
	"cobblemon:shaymin":   {},
	"cobblemon:arceus":    {},
	"cobblemon:victini":   {},
	"cobblemon:marshadow": {},
}

// IsLegendary reports whether key is in the legendary set.
// The key must already be canonical (see Normalize).
func IsLegendary(key string) bool {
	_, ok := legendaries[key]
	return ok
}

// IsMythical reports whether key is in the mythical set.
// The key must already be canonical (see Normalize).
func IsMythical(key string) bool {
	_, ok := mythicals[key]
	return ok
}

// Classify returns both rarity flags for a canonical key in one call.
func Classify(key string) (legendary, mythical bool) {
	return IsLegendary(key), IsMythical(key)
}

// Package catalog holds the curated list of fireworks shows the sync knows
// about: their provider entity IDs, the name fragments used when an ID is
// unknown, and the search queries used to find each soundtrack.
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jaki95/showtime-sync/internal/domain"
)

// Canonical show names.
const (
	HappilyEverAfter    = "Happily Ever After"
	MinniesChristmas    = "Minnie's Wonderful Christmastime Fireworks"
	DisneyEnchantment   = "Disney Enchantment"
	FantasyInTheSky     = "Fantasy in the Sky"
	fallbackQuerySuffix = "audio"
)

// nameRule matches a display name containing every fragment.
type nameRule struct {
	fragments []string
	name      string
}

// Catalog is an immutable lookup of known shows. The zero value is empty.
type Catalog struct {
	byID    map[string]string
	rules   []nameRule
	queries map[string]string
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	return &Catalog{
		byID: map[string]string{
			"22b78ed9-a692-47cb-b6a4-6d1224ff67e3": HappilyEverAfter,
			"bb28947d-a747-44f0-ac71-1fa8188f4cee": MinniesChristmas,
			"86c198b0-7c02-4354-814a-27ad70067d45": DisneyEnchantment,
			"fantasy-in-the-sky-id":                FantasyInTheSky,
		},
		// Order matters: the first rule that matches wins.
		rules: []nameRule{
			{fragments: []string{"Happily Ever After"}, name: HappilyEverAfter},
			{fragments: []string{"Minnie", "Fireworks"}, name: MinniesChristmas},
			{fragments: []string{"Enchantment"}, name: DisneyEnchantment},
		},
		queries: map[string]string{
			HappilyEverAfter:  "Happily Ever After Fireworks Full Audio Soundtrack",
			MinniesChristmas:  "Minnie's Wonderful Christmastime Fireworks Full Audio Soundtrack",
			DisneyEnchantment: "Disney Enchantment Fireworks Full Audio Soundtrack",
			FantasyInTheSky:   "Fantasy in the Sky Fireworks Magic Kingdom Audio",
		},
	}
})

// Default returns the built-in show catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// ByID returns the canonical name for a provider entity ID.
func (c *Catalog) ByID(id string) (string, bool) {
	name, ok := c.byID[id]
	return name, ok
}

// MatchName applies the case-sensitive fragment rules to a display name.
func (c *Catalog) MatchName(displayName string) (string, bool) {
	for _, rule := range c.rules {
		if containsAll(displayName, rule.fragments) {
			return rule.name, true
		}
	}
	return "", false
}

// Match resolves a live item, preferring its ID over its display name.
func (c *Catalog) Match(item domain.LiveItem) (string, bool) {
	if name, ok := c.ByID(item.ID); ok {
		return name, true
	}
	return c.MatchName(item.Name)
}

// Query returns the soundtrack search query for a canonical name.
func (c *Catalog) Query(canonicalName string) string {
	if query, ok := c.queries[canonicalName]; ok {
		return query
	}
	return fmt.Sprintf("%s %s", canonicalName, fallbackQuerySuffix)
}

// Descriptors lists the ID-keyed entries of the catalog.
func (c *Catalog) Descriptors() []domain.EventDescriptor {
	descriptors := make([]domain.EventDescriptor, 0, len(c.byID))
	for id, name := range c.byID {
		descriptors = append(descriptors, domain.EventDescriptor{ID: id, CanonicalName: name})
	}
	return descriptors
}

func containsAll(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if !strings.Contains(s, fragment) {
			return false
		}
	}
	return len(fragments) > 0
}

// internal/parser/resolver.go
package parser

import (
	"regexp"
	"strings"

	"github.com/simforge/studio3d/internal/models"
)

// Resolver maps a textual reference to an existing scene object id.
//
// Resolution is a pure scoring pass over the object list. Match classes,
// strongest first: object id in the text, object name, object type (via the
// alias table). Within a class the earliest occurrence in the text wins,
// then the longest match, then the most recently added object (highest
// insertion index). Pronouns resolve to the most recently created or
// referenced object of the same batch.
type Resolver struct{}

// NewResolver creates an entity resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

var rePronoun = regexp.MustCompile(`\b(it|that|this|them)\b`)

// matchClass orders the resolution stages.
const (
	matchID = iota + 1
	matchName
	matchType
)

// refMatch is one scored candidate.
type refMatch struct {
	class     int
	textIndex int
	length    int
	order     int // insertion index in the object list
	id        string
}

// better reports whether m should be preferred over cur.
func (m refMatch) better(cur refMatch) bool {
	if m.class != cur.class {
		return m.class > cur.class
	}
	if m.textIndex != cur.textIndex {
		return m.textIndex < cur.textIndex
	}
	if m.length != cur.length {
		return m.length > cur.length
	}
	return m.order > cur.order
}

// Resolve returns the best-matching object id for the clause text.
// recentID is the id most recently created or referenced within the same
// batch; pronoun references resolve to it. Failure is not fatal: the
// caller decides whether to drop or flag the clause.
func (r *Resolver) Resolve(text string, objects []models.SceneObject, recentID string) (string, bool) {
	text = normalize(text)

	var best refMatch
	for i, obj := range objects {
		if m, ok := r.scoreObject(text, obj, i); ok && (best.id == "" || m.better(best)) {
			best = m
		}
	}
	if best.id != "" {
		return best.id, true
	}

	// Alias-class fallback: the text names a type we know, even though no
	// object's own name or type string occurs verbatim.
	if objType, _, ok := extractObjectType(text); ok {
		for i := len(objects) - 1; i >= 0; i-- {
			if objects[i].Type == objType {
				return objects[i].ID, true
			}
		}
	}

	if recentID != "" && rePronoun.MatchString(text) {
		return recentID, true
	}

	return "", false
}

// scoreObject returns the strongest match of obj against the text.
func (r *Resolver) scoreObject(text string, obj models.SceneObject, order int) (refMatch, bool) {
	var best refMatch

	consider := func(class int, fragment string) {
		fragment = strings.ToLower(strings.TrimSpace(fragment))
		if fragment == "" {
			return
		}
		idx := strings.Index(text, fragment)
		if idx < 0 {
			return
		}
		m := refMatch{class: class, textIndex: idx, length: len(fragment), order: order, id: obj.ID}
		if best.id == "" || m.better(best) {
			best = m
		}
	}

	consider(matchID, obj.ID)
	consider(matchName, obj.Name)
	consider(matchType, strings.ReplaceAll(string(obj.Type), "_", " "))

	return best, best.id != ""
}

// normalize lowercases, trims and collapses whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// extractObjectType finds the object type named earliest in the text,
// preferring longer alias phrases at the same position.
func extractObjectType(text string) (models.ObjectType, string, bool) {
	bestIdx, bestLen := -1, 0
	var bestType models.ObjectType
	var bestPhrase string

	for _, alias := range objectAliases {
		idx := strings.Index(text, alias.Phrase)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx || (idx == bestIdx && len(alias.Phrase) > bestLen) {
			bestIdx, bestLen = idx, len(alias.Phrase)
			bestType, bestPhrase = alias.Type, alias.Phrase
		}
	}

	if bestIdx < 0 {
		return "", "", false
	}
	return bestType, bestPhrase, true
}

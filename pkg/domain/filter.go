package domain

import (
	"net/url"
	"strings"
)

// Dimension names recognised by the filter engine. Any other key supplied to
// CriteriaFromValues or CriteriaFromMap is ignored.
const (
	DimensionPersonalityTraits = "personalityTraits"
	DimensionDiet              = "diet"
	DimensionSpecies           = "species"
	DimensionName              = "name"
)

// Criteria holds the optional filter dimensions of a read request. Empty
// string fields and an empty trait list impose no constraint.
type Criteria struct {
	PersonalityTraits []string
	Diet              string
	Species           string
	Name              string
}

// IsEmpty reports whether the criteria constrain nothing.
func (c Criteria) IsEmpty() bool {
	return len(c.PersonalityTraits) == 0 && c.Diet == "" && c.Species == "" && c.Name == ""
}

// CriteriaFromValues builds criteria from query parameters. Repeated
// personalityTraits keys (with or without a trailing "[]") accumulate.
func CriteriaFromValues(values url.Values) Criteria {
	var c Criteria
	for key, vals := range values {
		switch strings.TrimSuffix(key, "[]") {
		case DimensionPersonalityTraits:
			for _, v := range vals {
				if v != "" {
					c.PersonalityTraits = append(c.PersonalityTraits, v)
				}
			}
		case DimensionDiet:
			c.Diet = first(vals)
		case DimensionSpecies:
			c.Species = first(vals)
		case DimensionName:
			c.Name = first(vals)
		}
	}
	return c
}

// CriteriaFromMap builds criteria from a decoded JSON object. The traits
// dimension accepts a string, a []string, or a []any of strings; non-string
// values are skipped.
func CriteriaFromMap(m map[string]any) Criteria {
	var c Criteria
	for key, raw := range m {
		switch key {
		case DimensionPersonalityTraits:
			c.PersonalityTraits = append(c.PersonalityTraits, stringsOf(raw)...)
		case DimensionDiet:
			c.Diet, _ = raw.(string)
		case DimensionSpecies:
			c.Species, _ = raw.(string)
		case DimensionName:
			c.Name, _ = raw.(string)
		}
	}
	return c
}

type predicate func(Animal) bool

// predicates returns one matcher per supplied dimension in a fixed order:
// traits, diet, species, name.
func (c Criteria) predicates() []predicate {
	var preds []predicate
	for _, trait := range c.PersonalityTraits {
		preds = append(preds, func(a Animal) bool { return a.HasTrait(trait) })
	}
	if c.Diet != "" {
		preds = append(preds, func(a Animal) bool { return a.Diet == c.Diet })
	}
	if c.Species != "" {
		preds = append(preds, func(a Animal) bool { return a.Species == c.Species })
	}
	if c.Name != "" {
		preds = append(preds, func(a Animal) bool { return a.Name == c.Name })
	}
	return preds
}

// Matches reports whether the animal satisfies every supplied dimension.
func (c Criteria) Matches(a Animal) bool {
	for _, p := range c.predicates() {
		if !p(a) {
			return false
		}
	}
	return true
}

// Filter returns the animals satisfying all supplied dimensions, in input
// order. Empty criteria return the input slice itself.
func Filter(c Criteria, animals []Animal) []Animal {
	preds := c.predicates()
	if len(preds) == 0 {
		return animals
	}
	out := make([]Animal, 0, len(animals))
next:
	for _, a := range animals {
		for _, p := range preds {
			if !p(a) {
				continue next
			}
		}
		out = append(out, a)
	}
	return out
}

// FindByID returns the first animal whose ID equals id.
func FindByID(id string, animals []Animal) (Animal, bool) {
	for _, a := range animals {
		if a.ID == id {
			return a, true
		}
	}
	return Animal{}, false
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func stringsOf(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Package domain defines the animal record, the filter engine that narrows
// collections of animals, and the persistence contract implemented by the
// storage backends.
package domain

// Animal is a single record in the registry.
type Animal struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Species           string   `json:"species" yaml:"species"`
	Diet              string   `json:"diet" yaml:"diet"`
	PersonalityTraits []string `json:"personalityTraits" yaml:"personalityTraits"`
}

// NewAnimal is a validated create payload. It carries no ID; the store assigns
// one at insertion.
type NewAnimal struct {
	Name              string
	Species           string
	Diet              string
	PersonalityTraits []string
}

// WithID materializes the payload as an Animal carrying the supplied ID. A nil
// trait list becomes an empty one.
func (n NewAnimal) WithID(id string) Animal {
	traits := make([]string, 0, len(n.PersonalityTraits))
	return Animal{
		ID:                id,
		Name:              n.Name,
		Species:           n.Species,
		Diet:              n.Diet,
		PersonalityTraits: append(traits, n.PersonalityTraits...),
	}
}

// Clone returns a deep copy so callers cannot alias the trait slice held by a store.
func (a Animal) Clone() Animal {
	cp := a
	if a.PersonalityTraits != nil {
		cp.PersonalityTraits = append([]string(nil), a.PersonalityTraits...)
	}
	return cp
}

// CloneAnimals deep-copies a slice of animals. A nil input yields an empty slice.
func CloneAnimals(animals []Animal) []Animal {
	out := make([]Animal, len(animals))
	for i, a := range animals {
		out[i] = a.Clone()
	}
	return out
}

// HasTrait reports whether trait appears at least once in the animal's trait list.
func (a Animal) HasTrait(trait string) bool {
	for _, t := range a.PersonalityTraits {
		if t == trait {
			return true
		}
	}
	return false
}

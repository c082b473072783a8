package domain

func zoo() []Animal {
	return []Animal{
		{ID: "0", Name: "Erica", Species: "gorilla", Diet: "omnivore", PersonalityTraits: []string{"quirky", "rash"}},
		{ID: "1", Name: "Noel", Species: "bear", Diet: "carnivore", PersonalityTraits: []string{"impish", "sassy", "brave"}},
		{ID: "2", Name: "Jacob", Species: "gorilla", Diet: "herbivore", PersonalityTraits: []string{"anxious", "goofy"}},
		{ID: "3", Name: "Felicia", Species: "bear", Diet: "omnivore", PersonalityTraits: []string{"hungry", "quirky", "rash"}},
		{ID: "4", Name: "Max", Species: "penguin", Diet: "carnivore", PersonalityTraits: []string{"brave", "rash"}},
	}
}

func ids(animals []Animal) []string {
	out := make([]string, 0, len(animals))
	for _, a := range animals {
		out = append(out, a.ID)
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

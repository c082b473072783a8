package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// RootField names the payload itself in a FieldError, used when the body is
// not a JSON object at all.
const RootField = "(root)"

// animalSchema requires the four caller-supplied fields with the right JSON
// types. String emptiness, trait element types and id are not checked.
const animalSchema = `{
	"type": "object",
	"required": ["name", "species", "diet", "personalityTraits"],
	"properties": {
		"name": {"type": "string"},
		"species": {"type": "string"},
		"diet": {"type": "string"},
		"personalityTraits": {"type": "array"}
	}
}`

var (
	compileOnce    sync.Once
	compiledSchema *gojsonschema.Schema
	compileErr     error
)

func schema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(animalSchema))
	})
	return compiledSchema, compileErr
}

// ValidateAnimal checks a decoded candidate (typically map[string]any from a
// JSON body) and returns a *ValidationError naming every failing field.
func ValidateAnimal(candidate any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile animal schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(candidate))
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: RootField, Reason: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}
	fields := make([]FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		fields = append(fields, fieldErrorFrom(re))
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Fields: fields}
}

// IsValid is the boolean form of ValidateAnimal.
func IsValid(candidate any) bool {
	return ValidateAnimal(candidate) == nil
}

func fieldErrorFrom(re gojsonschema.ResultError) FieldError {
	field := re.Field()
	if re.Type() == "required" {
		if prop, ok := re.Details()["property"].(string); ok {
			field = prop
		}
		return FieldError{Field: field, Reason: "missing"}
	}
	return FieldError{Field: field, Reason: strings.ToLower(re.Description())}
}

// DecodeAnimal parses and validates a JSON create payload. Any "id" in the
// payload is ignored.
func DecodeAnimal(data []byte) (NewAnimal, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return NewAnimal{}, &ValidationError{Fields: []FieldError{{Field: RootField, Reason: "malformed json"}}}
	}
	return ParseAnimal(doc)
}

// ParseAnimal validates an already decoded candidate and converts it to a
// NewAnimal. Non-string trait elements are kept in their printed form.
func ParseAnimal(candidate any) (NewAnimal, error) {
	m, err := asObject(candidate)
	if err != nil {
		return NewAnimal{}, err
	}
	if err := ValidateAnimal(m); err != nil {
		return NewAnimal{}, err
	}
	n := NewAnimal{
		Name:    m["name"].(string),
		Species: m["species"].(string),
		Diet:    m["diet"].(string),
	}
	n.PersonalityTraits = make([]string, 0)
	switch traits := m["personalityTraits"].(type) {
	case []any:
		for _, t := range traits {
			if s, ok := t.(string); ok {
				n.PersonalityTraits = append(n.PersonalityTraits, s)
				continue
			}
			n.PersonalityTraits = append(n.PersonalityTraits, fmt.Sprint(t))
		}
	case []string:
		n.PersonalityTraits = append(n.PersonalityTraits, traits...)
	}
	return n, nil
}

// asObject normalizes candidate to the generic JSON object shape so the type
// assertions after validation cannot fail on named types.
func asObject(candidate any) (map[string]any, error) {
	if m, ok := candidate.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: RootField, Reason: "unencodable payload"}}}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: RootField, Reason: "invalid type. expected: object"}}}
	}
	return m, nil
}

// AnimalFromValues converts a form-encoded body into a NewAnimal. Traits may
// be repeated under personalityTraits or personalityTraits[]; a trait key
// with no values still counts as a supplied (empty) list.
func AnimalFromValues(values url.Values) (NewAnimal, error) {
	candidate := make(map[string]any, 4)
	for _, key := range []string{DimensionName, DimensionSpecies, DimensionDiet} {
		if vals, ok := values[key]; ok {
			candidate[key] = first(vals)
		}
	}
	var traits []any
	seen := false
	for _, key := range []string{DimensionPersonalityTraits, DimensionPersonalityTraits + "[]"} {
		vals, ok := values[key]
		if !ok {
			continue
		}
		seen = true
		for _, v := range vals {
			traits = append(traits, v)
		}
	}
	if seen {
		if traits == nil {
			traits = []any{}
		}
		candidate[DimensionPersonalityTraits] = traits
	}
	return ParseAnimal(candidate)
}

// Copyright The kg-inference Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ontology

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// Definition is the structured form of an ontology, as supplied by whatever
// authored it. Names may be full IRIs in angle brackets, qnames with one of
// the rdf, rdfs, owl or xsd prefixes, or bare names.
type Definition struct {
	Classes    []string             `json:"classes"`
	Properties []PropertyDefinition `json:"properties"`
	Axioms     []AxiomDefinition    `json:"axioms"`
}

// PropertyDefinition describes a property and its characteristics.
type PropertyDefinition struct {
	IRI string `json:"iri"`
	// Kind is "object" or "datatype". It defaults to "object".
	Kind              string   `json:"kind,omitempty"`
	Transitive        bool     `json:"transitive,omitempty"`
	Symmetric         bool     `json:"symmetric,omitempty"`
	Functional        bool     `json:"functional,omitempty"`
	InverseFunctional bool     `json:"inverseFunctional,omitempty"`
	SubPropertyOf     []string `json:"subPropertyOf,omitempty"`
	InverseOf         []string `json:"inverseOf,omitempty"`
	Domain            []string `json:"domain,omitempty"`
	Range             []string `json:"range,omitempty"`
}

// AxiomDefinition describes one axiom. Kind is an AxiomKind name, such as
// "SubClassOf" or "PropertyChain", matched without regard to case.
type AxiomDefinition struct {
	Kind     string   `json:"kind"`
	Operands []string `json:"operands"`
}

// LoadDefinition decodes a JSON definition from r. Unknown fields are an
// error.
func LoadDefinition(r io.Reader) (*Definition, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	def := new(Definition)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("error decoding ontology definition: %v", err)
	}
	if def == nil {
		return nil, fmt.Errorf("ontology definition is null")
	}
	if decoder.More() {
		return nil, fmt.Errorf("found unexpected data after ontology definition")
	}
	return def, nil
}

func parsePropertyKind(kind string) (PropertyKind, error) {
	switch strings.ToLower(kind) {
	case "", "object", "objectproperty":
		return ObjectProperty, nil
	case "datatype", "datatypeproperty":
		return DatatypeProperty, nil
	}
	return 0, &MalformedInputError{Reason: fmt.Sprintf("unknown property kind %q", kind)}
}

func resolveAll(names []string) []rdf.Term {
	res := make([]rdf.Term, len(names))
	for i, n := range names {
		res[i] = rdf.ResolveIRI(n)
	}
	return res
}

// FromDefinition builds a model from def. Classes are declared first, then
// every property without characteristics, so that declarations may refer to
// each other in any order. Then the property characteristics and finally the
// axioms are applied. The first rejected declaration is returned.
func FromDefinition(def *Definition) (*Model, error) {
	m := NewModel()
	// The model is discarded on error, so there's nothing to roll back.
	m.inPlace = true
	defer func() { m.inPlace = false }()
	for _, c := range def.Classes {
		if err := m.DeclareClass(rdf.ResolveIRI(c)); err != nil {
			return nil, err
		}
	}
	kinds := make([]PropertyKind, len(def.Properties))
	for i, p := range def.Properties {
		kind, err := parsePropertyKind(p.Kind)
		if err != nil {
			return nil, err
		}
		kinds[i] = kind
		if err := m.DeclareProperty(rdf.ResolveIRI(p.IRI), kind); err != nil {
			return nil, err
		}
	}
	for i, p := range def.Properties {
		var chars []Characteristic
		if p.Transitive {
			chars = append(chars, Transitive)
		}
		if p.Symmetric {
			chars = append(chars, Symmetric)
		}
		if p.Functional {
			chars = append(chars, Functional)
		}
		if p.InverseFunctional {
			chars = append(chars, InverseFunctional)
		}
		for _, t := range resolveAll(p.SubPropertyOf) {
			chars = append(chars, ParentProperty(t))
		}
		for _, t := range resolveAll(p.InverseOf) {
			chars = append(chars, InverseProperty(t))
		}
		for _, t := range resolveAll(p.Domain) {
			chars = append(chars, Domain(t))
		}
		for _, t := range resolveAll(p.Range) {
			chars = append(chars, Range(t))
		}
		if len(chars) == 0 {
			continue
		}
		if err := m.DeclareProperty(rdf.ResolveIRI(p.IRI), kinds[i], chars...); err != nil {
			return nil, err
		}
	}
	for _, a := range def.Axioms {
		kind, ok := ParseAxiomKind(a.Kind)
		if !ok {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("unknown axiom kind %q", a.Kind)}
		}
		if err := m.DeclareAxiom(kind, resolveAll(a.Operands)...); err != nil {
			return nil, err
		}
	}
	return m, nil
}

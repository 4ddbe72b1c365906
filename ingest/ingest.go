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

// Package ingest turns the output of an entity and relationship extractor into
// base facts for a knowledge base.
//
// An extraction is a JSON document listing entities (a text mention, its type
// from the ontology, and optionally a grounded ontology ID) and relationships
// between entity mentions. Each entity yields an rdf:type fact and each
// relationship yields a fact using the named property. Types and properties
// are matched against the ontology by IRI or by local name, ignoring case.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/util/unicode"
	log "github.com/sirupsen/logrus"
)

// Extraction is the result of running an extractor over some text.
type Extraction struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	SchemaName    string         `json:"schema_name,omitempty"`
	Timestamp     string         `json:"timestamp,omitempty"`
}

// Entity is a mention of something in the text.
type Entity struct {
	Text       string `json:"text"`
	EntityType string `json:"entity_type"`
	// OntologyID names the entity when the extractor grounded it, for
	// example "MONDO:0005148". Otherwise the entity is named after Text.
	OntologyID    string  `json:"ontology_id,omitempty"`
	OntologyLabel string  `json:"ontology_label,omitempty"`
	IsGrounded    bool    `json:"is_grounded,omitempty"`
	Confidence    float64 `json:"confidence"`
	// Properties holds values of datatype properties, keyed by property
	// name.
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Relationship relates two entity mentions.
type Relationship struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Text      string `json:"text,omitempty"`
}

// Load decodes an extraction from r. Entities without a confidence are taken
// to have a confidence of 1. Fields other than those of Extraction, such as
// the character spans some extractors report, are ignored.
func Load(r io.Reader) (*Extraction, error) {
	var raw struct {
		Extraction
		Entities []struct {
			Entity
			Confidence *float64 `json:"confidence"`
		} `json:"entities"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("error decoding extraction: %v", err)
	}
	res := raw.Extraction
	res.Entities = make([]Entity, len(raw.Entities))
	for i, e := range raw.Entities {
		res.Entities[i] = e.Entity
		res.Entities[i].Confidence = 1
		if e.Confidence != nil {
			res.Entities[i].Confidence = *e.Confidence
		}
	}
	return &res, nil
}

// Options control how an extraction becomes facts.
type Options struct {
	// Namespace is prepended to the names of entities that weren't grounded.
	// It may be empty.
	Namespace string
	// Entities with a lower confidence are dropped, together with the
	// relationships that mention them.
	MinConfidence float64
}

// resolver finds ontology terms by IRI or local name.
type resolver struct {
	schema  *ontology.Schema
	classes map[string]rdf.Term
	props   map[string]rdf.Term
}

func newResolver(schema *ontology.Schema) *resolver {
	r := &resolver{
		schema:  schema,
		classes: make(map[string]rdf.Term),
		props:   make(map[string]rdf.Term),
	}
	for _, c := range schema.Classes() {
		r.classes[strings.ToLower(c.LocalName())] = c
	}
	for _, p := range schema.Properties() {
		r.props[strings.ToLower(p.LocalName())] = p
	}
	return r
}

func (r *resolver) class(name string) (rdf.Term, bool) {
	if iri := rdf.ResolveIRI(name); r.schema.IsClass(iri) {
		return iri, true
	}
	c, ok := r.classes[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (r *resolver) property(name string) (rdf.Term, bool) {
	if iri := rdf.ResolveIRI(name); r.schema.Property(iri) != nil {
		return iri, true
	}
	p, ok := r.props[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// EntityIRI returns the IRI naming an entity.
func EntityIRI(e *Entity, namespace string) rdf.Term {
	if e.OntologyID != "" {
		return rdf.ResolveIRI(unicode.Normalize(e.OntologyID))
	}
	return MintIRI(e.Text, namespace)
}

// MintIRI names an entity that has no ontology ID after its text.
func MintIRI(text, namespace string) rdf.Term {
	name := strings.Join(strings.Fields(unicode.Normalize(text)), "_")
	return rdf.IRI(namespace + name)
}

// Triples returns the facts that the extraction states about the schema's
// classes and properties. Entities and relationships that use unknown types or
// properties are errors, reported as *ontology.MalformedInputError.
func (x *Extraction) Triples(schema *ontology.Schema, opts Options) ([]rdf.Triple, error) {
	r := newResolver(schema)
	var res []rdf.Triple
	byText := make(map[string]rdf.Term, len(x.Entities))
	dropped := make(map[string]struct{})
	for i := range x.Entities {
		e := &x.Entities[i]
		subject := EntityIRI(e, opts.Namespace)
		if e.Confidence < opts.MinConfidence {
			log.WithFields(log.Fields{
				"entity":     e.Text,
				"confidence": e.Confidence,
			}).Debug("Dropping low confidence entity")
			dropped[e.Text] = struct{}{}
			continue
		}
		byText[e.Text] = subject
		class, ok := r.class(e.EntityType)
		if !ok {
			t := rdf.Triple{Subject: subject, Predicate: rdf.Type, Object: rdf.ResolveIRI(e.EntityType)}
			return nil, &ontology.MalformedInputError{
				Triple: &t,
				Reason: fmt.Sprintf("entity type '%s' of '%s' is not a class in the ontology", e.EntityType, e.Text),
			}
		}
		res = append(res, rdf.Triple{Subject: subject, Predicate: rdf.Type, Object: class})
		names := make([]string, 0, len(e.Properties))
		for name := range e.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value := e.Properties[name]
			prop, ok := r.property(name)
			if !ok {
				log.WithFields(log.Fields{
					"entity":   e.Text,
					"property": name,
				}).Debug("Ignoring unknown entity property")
				continue
			}
			object, err := literal(value)
			if err != nil {
				t := rdf.Triple{Subject: subject, Predicate: prop, Object: rdf.String(fmt.Sprint(value))}
				return nil, &ontology.MalformedInputError{Triple: &t, Reason: err.Error()}
			}
			res = append(res, rdf.Triple{Subject: subject, Predicate: prop, Object: object})
		}
	}
	for _, rel := range x.Relationships {
		_, subjectDropped := dropped[rel.Subject]
		_, objectDropped := dropped[rel.Object]
		if subjectDropped || objectDropped {
			continue
		}
		subject, ok := byText[rel.Subject]
		if !ok {
			subject = MintIRI(rel.Subject, opts.Namespace)
		}
		object, ok := byText[rel.Object]
		if !ok {
			object = MintIRI(rel.Object, opts.Namespace)
		}
		prop, ok := r.property(rel.Predicate)
		if !ok {
			t := rdf.Triple{Subject: subject, Predicate: rdf.ResolveIRI(rel.Predicate), Object: object}
			return nil, &ontology.MalformedInputError{
				Triple: &t,
				Reason: fmt.Sprintf("relationship '%s' is not a property in the ontology", rel.Predicate),
			}
		}
		res = append(res, rdf.Triple{Subject: subject, Predicate: prop, Object: object})
	}
	return res, nil
}

// literal converts a decoded JSON value into a literal term.
func literal(value interface{}) (rdf.Term, error) {
	switch v := value.(type) {
	case string:
		return rdf.String(unicode.Normalize(v)), nil
	case bool:
		return rdf.Literal(strconv.FormatBool(v), rdf.XSDBoolean), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return rdf.Int(int64(v)), nil
		}
		return rdf.Literal(strconv.FormatFloat(v, 'g', -1, 64), rdf.XSDDecimal), nil
	}
	return rdf.Any, fmt.Errorf("property value %v of type %T can't be a literal", value, value)
}

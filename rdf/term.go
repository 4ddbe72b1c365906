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

// Package rdf defines the terms and triples that the knowledge base reasons
// over. A term is either an IRI-like opaque identifier or a literal value;
// the zero Term is the wildcard used in query patterns.
package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// TermKind identifies what a Term holds.
type TermKind uint8

// The kinds of terms. KindAny is the zero value and is only meaningful in a
// pattern.
const (
	KindAny TermKind = iota
	KindIRI
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	}
	return fmt.Sprintf("TermKind(%d)", uint8(k))
}

// Term is a single position in a Triple. Terms are values and are comparable,
// so they can be used as map keys.
type Term struct {
	Kind  TermKind
	Value string
	// Datatype is the IRI of the literal's datatype. It's always empty for
	// IRIs.
	Datatype string
}

// Any is the wildcard term. It matches every term in a pattern.
var Any = Term{}

// IRI returns a term for the supplied identifier.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Literal returns a literal term with the supplied datatype. An empty datatype
// is treated as xsd:string.
func Literal(value, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// String returns an xsd:string literal.
func String(value string) Term {
	return Literal(value, XSDString)
}

// Int returns an xsd:integer literal.
func Int(value int64) Term {
	return Literal(strconv.FormatInt(value, 10), XSDInteger)
}

// IsAny returns true if this is the wildcard term.
func (t Term) IsAny() bool {
	return t.Kind == KindAny
}

// IsIRI returns true if this term is an identifier.
func (t Term) IsIRI() bool {
	return t.Kind == KindIRI
}

// IsLiteral returns true if this term is a literal value.
func (t Term) IsLiteral() bool {
	return t.Kind == KindLiteral
}

// Matches returns true if 'other' satisfies this term when it is used in a
// pattern.
func (t Term) Matches(other Term) bool {
	return t.IsAny() || t == other
}

// String returns a human readable form of the term. IRIs in a well known
// namespace are compacted into a qname, other IRIs are written as <iri>, and
// literals are quoted with their datatype appended when it's not xsd:string.
func (t Term) String() string {
	switch t.Kind {
	case KindAny:
		return "?"
	case KindIRI:
		if q, ok := Compact(t.Value); ok {
			return q
		}
		return "<" + t.Value + ">"
	case KindLiteral:
		s := strconv.Quote(t.Value)
		if t.Datatype == XSDString {
			return s
		}
		if q, ok := Compact(t.Datatype); ok {
			return s + "^^" + q
		}
		return s + "^^<" + t.Datatype + ">"
	}
	return fmt.Sprintf("Term{%v %q %q}", t.Kind, t.Value, t.Datatype)
}

// Less orders terms, first by kind, then value, then datatype. It gives a
// total order used to produce stable output.
func (t Term) Less(other Term) bool {
	if t.Kind != other.Kind {
		return t.Kind < other.Kind
	}
	if t.Value != other.Value {
		return t.Value < other.Value
	}
	return t.Datatype < other.Datatype
}

// LocalName returns the part of an IRI after the last '#', '/' or ':'. It's
// used when presenting terms to people.
func (t Term) LocalName() string {
	if !t.IsIRI() {
		return t.Value
	}
	if i := strings.LastIndexAny(t.Value, "#/:"); i >= 0 && i < len(t.Value)-1 {
		return t.Value[i+1:]
	}
	return t.Value
}

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
	"fmt"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// MalformedInputError is returned when an axiom or fact refers to something
// that hasn't been declared, or has operands of the wrong number or kind.
type MalformedInputError struct {
	// Exactly one of Axiom and Triple is set.
	Axiom  *Axiom
	Triple *rdf.Triple
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Triple != nil {
		return fmt.Sprintf("malformed fact %v: %s", *e.Triple, e.Reason)
	}
	if e.Axiom != nil {
		return fmt.Sprintf("malformed axiom %v: %s", *e.Axiom, e.Reason)
	}
	return "malformed input: " + e.Reason
}

// AxiomConflictError is returned when a declaration contradicts the axioms
// already in the model.
type AxiomConflictError struct {
	Axiom  Axiom
	Reason string
}

func (e *AxiomConflictError) Error() string {
	return fmt.Sprintf("axiom %v conflicts with the ontology: %s", e.Axiom, e.Reason)
}

// UnsupportedConstructError is returned for axioms outside the fragment the
// rule engine can saturate, such as those that would require inventing new
// individuals.
type UnsupportedConstructError struct {
	Axiom  Axiom
	Reason string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct %v: %s", e.Axiom, e.Reason)
}

func malformedAxiom(a Axiom, format string, args ...interface{}) error {
	return &MalformedInputError{Axiom: &a, Reason: fmt.Sprintf(format, args...)}
}

func malformedFact(t rdf.Triple, format string, args ...interface{}) error {
	return &MalformedInputError{Triple: &t, Reason: fmt.Sprintf(format, args...)}
}

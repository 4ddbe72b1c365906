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

package rdf

import (
	"errors"
	"fmt"
)

// Triple is a single subject-predicate-object statement. When used as a
// pattern, any of its terms may be Any.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// T is a shorthand for building a triple whose terms are all IRIs.
func T(subject, predicate, object string) Triple {
	return Triple{
		Subject:   IRI(subject),
		Predicate: IRI(predicate),
		Object:    IRI(object),
	}
}

func (t Triple) String() string {
	return fmt.Sprintf("%v %v %v", t.Subject, t.Predicate, t.Object)
}

// Validate checks that the triple is a well-formed fact: no wildcards, the
// subject and predicate are IRIs.
func (t Triple) Validate() error {
	switch {
	case t.Subject.IsAny() || t.Predicate.IsAny() || t.Object.IsAny():
		return errors.New("triple may not contain a wildcard")
	case !t.Subject.IsIRI():
		return fmt.Errorf("subject %v must be an IRI", t.Subject)
	case !t.Predicate.IsIRI():
		return fmt.Errorf("predicate %v must be an IRI", t.Predicate)
	}
	return nil
}

// Matches returns true if 'other' satisfies this triple used as a pattern.
func (t Triple) Matches(other Triple) bool {
	return t.Subject.Matches(other.Subject) &&
		t.Predicate.Matches(other.Predicate) &&
		t.Object.Matches(other.Object)
}

// Less orders triples by subject, predicate, then object.
func (t Triple) Less(other Triple) bool {
	if t.Subject != other.Subject {
		return t.Subject.Less(other.Subject)
	}
	if t.Predicate != other.Predicate {
		return t.Predicate.Less(other.Predicate)
	}
	return t.Object.Less(other.Object)
}

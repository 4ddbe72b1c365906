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

package rules

import (
	"github.com/i-d-lytvynenko/kg-inference/store"
)

// Derivation records one way a triple was concluded.
type Derivation struct {
	Rule       ID
	Conclusion store.IDTriple
	// Premises are in the order the rule's premise pattern lists them.
	Premises []store.IDTriple
}

// Violation is a consistency violation found by one of the check rules.
type Violation struct {
	Rule ID
	// Subject is the offending individual. For an inverse functional
	// property, it's the value shared by two different subjects.
	Subject store.ID
	// Property is the functional or inverse functional property. It's
	// Wildcard for a disjointness violation.
	Property store.ID
	// Values holds the two disjoint classes, or the two values of the
	// property, in ID order.
	Values   [2]store.ID
	Premises []store.IDTriple
}

// ViolationKey identifies a violation regardless of which premises found it.
type ViolationKey struct {
	Rule     ID
	Subject  store.ID
	Property store.ID
	Values   [2]store.ID
}

// Key returns the identity of the violation.
func (v *Violation) Key() ViolationKey {
	return ViolationKey{Rule: v.Rule, Subject: v.Subject, Property: v.Property, Values: v.Values}
}

// Output collects what rules produce. It's not safe for concurrent use; each
// goroutine firing rules should have its own.
type Output struct {
	ctx         *Context
	rule        ID
	Derivations []Derivation
	Violations  []Violation
}

// NewOutput returns an empty output for rules fired with ctx.
func NewOutput(ctx *Context) *Output {
	return &Output{ctx: ctx}
}

// Reset discards everything collected so far.
func (out *Output) Reset() {
	out.Derivations = out.Derivations[:0]
	out.Violations = out.Violations[:0]
}

// derive records a conclusion, unless it's already in the store, it's one of
// its own premises, or it would make a literal the subject of a triple.
func (out *Output) derive(conclusion store.IDTriple, premises ...store.IDTriple) {
	for _, p := range premises {
		if p == conclusion {
			return
		}
	}
	if out.ctx.Store.ContainsID(conclusion) || out.ctx.Store.Dict().IsLiteral(conclusion.S) {
		return
	}
	out.Derivations = append(out.Derivations, Derivation{
		Rule:       out.rule,
		Conclusion: conclusion,
		Premises:   append([]store.IDTriple(nil), premises...),
	})
}

func (out *Output) violation(subject, property, a, b store.ID, premises ...store.IDTriple) {
	if b < a {
		a, b = b, a
	}
	out.Violations = append(out.Violations, Violation{
		Rule:     out.rule,
		Subject:  subject,
		Property: property,
		Values:   [2]store.ID{a, b},
		Premises: append([]store.IDTriple(nil), premises...),
	})
}

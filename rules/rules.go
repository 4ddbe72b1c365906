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

// Package rules holds the fixed catalogue of entailment rules. Each rule
// matches one or more triples against a pattern and concludes new triples, or
// records a consistency violation.
//
// Rules are evaluated semi-naively: a rule is fired with one triple from the
// latest delta, which it tries in every premise position it could occupy,
// joining the other premises against the full store. Every rule is monotonic
// and only concludes triples over terms that already exist, so repeatedly
// firing the catalogue over a finite store reaches a fixpoint.
package rules

import (
	"fmt"

	"github.com/i-d-lytvynenko/kg-inference/store"
)

// ID identifies a rule. It's recorded in every derivation.
type ID string

// The rule IDs.
const (
	SubClassTransitivity       ID = "subclass-transitivity"
	SubClassTypePropagation    ID = "subclass-type-propagation"
	SubPropertyTransitivity    ID = "subproperty-transitivity"
	SubPropertyFactPropagation ID = "subproperty-fact-propagation"
	DomainTyping               ID = "domain-typing"
	RangeTyping                ID = "range-typing"
	SymmetricProperty          ID = "symmetric"
	InverseProperty            ID = "inverse"
	TransitiveProperty         ID = "transitive-property"
	EquivalentClass            ID = "equivalent-class"
	EquivalentClassClosure     ID = "equivalent-class-closure"
	EquivalentProperty         ID = "equivalent-property"
	PropertyChain              ID = "property-chain"
	DisjointCheck              ID = "disjoint-check"
	FunctionalCheck            ID = "functional-check"
	InverseFunctionalCheck     ID = "inverse-functional-check"
)

// Rule is one entry in the catalogue.
type Rule struct {
	ID ID
	// Premises and Conclusion describe the rule for people.
	Premises   string
	Conclusion string
	fire       func(ctx *Context, t store.IDTriple, out *Output)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s: %s => %s", r.ID, r.Premises, r.Conclusion)
}

// Fire evaluates the rule with delta in each premise position, writing
// conclusions and violations to out.
func (r Rule) Fire(ctx *Context, delta store.IDTriple, out *Output) {
	out.rule = r.ID
	r.fire(ctx, delta, out)
}

// Lookup returns the catalogue entry with the given ID.
func Lookup(id ID) (Rule, bool) {
	for _, r := range Catalogue {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Chain is a property chain with its terms resolved to store IDs.
type Chain struct {
	Result store.ID
	Steps  []store.ID
}

type chainStep struct {
	chain *Chain
	pos   int
}

// Context is what rules read while firing. The store must not be modified
// while any rule is firing against it; a Context may then be shared by any
// number of goroutines.
type Context struct {
	Store  store.Reader
	chains []Chain
	// byStep indexes the chains by the predicates they step through.
	byStep map[store.ID][]chainStep
}

// NewContext returns a Context over the store with the given property chains.
func NewContext(s store.Reader, chains []Chain) *Context {
	ctx := &Context{
		Store:  s,
		chains: append([]Chain(nil), chains...),
		byStep: make(map[store.ID][]chainStep),
	}
	for i := range ctx.chains {
		c := &ctx.chains[i]
		for pos, step := range c.Steps {
			ctx.byStep[step] = append(ctx.byStep[step], chainStep{chain: c, pos: pos})
		}
	}
	return ctx
}

// each calls fn with every triple matching the pattern.
func (ctx *Context) each(s, p, o store.ID, fn func(store.IDTriple)) {
	ctx.Store.MatchIDs(s, p, o, func(t store.IDTriple) bool {
		fn(t)
		return true
	})
}

func (ctx *Context) has(s, p, o store.ID) bool {
	return ctx.Store.ContainsID(store.IDTriple{S: s, P: p, O: o})
}

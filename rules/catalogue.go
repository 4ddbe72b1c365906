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

// Catalogue lists every rule, in the order the saturator fires them by
// default. The fixpoint doesn't depend on this order.
var Catalogue = []Rule{
	{SubClassTransitivity, "A subClassOf B, B subClassOf C", "A subClassOf C",
		transitivity(store.IDSubClassOf)},
	{SubClassTypePropagation, "X type A, A subClassOf B", "X type B",
		subClassTypePropagation},
	{SubPropertyTransitivity, "P subPropertyOf Q, Q subPropertyOf R", "P subPropertyOf R",
		transitivity(store.IDSubPropertyOf)},
	{SubPropertyFactPropagation, "X P Y, P subPropertyOf Q", "X Q Y",
		subPropertyFactPropagation},
	{DomainTyping, "X P Y, P domain C", "X type C",
		propertyTyping(store.IDDomain, false)},
	{RangeTyping, "X P Y, P range C", "Y type C",
		propertyTyping(store.IDRange, true)},
	{SymmetricProperty, "X P Y, P type SymmetricProperty", "Y P X",
		symmetric},
	{InverseProperty, "X P Y, P inverseOf Q", "Y Q X",
		inverse},
	{TransitiveProperty, "X P Y, Y P Z, P type TransitiveProperty", "X P Z",
		transitiveProperty},
	{EquivalentClass, "A equivalentClass B", "A subClassOf B, B subClassOf A",
		equivalence(store.IDEquivalentClass, store.IDSubClassOf)},
	{EquivalentClassClosure, "A equivalentClass B, B equivalentClass C", "B equivalentClass A, A equivalentClass C",
		equivalentClassClosure},
	{EquivalentProperty, "P equivalentProperty Q", "P subPropertyOf Q, Q subPropertyOf P",
		equivalence(store.IDEquivalentProperty, store.IDSubPropertyOf)},
	{PropertyChain, "X P1 Y1, ..., Yn-1 Pn Z, chain(P1 ... Pn) implies R", "X R Z",
		propertyChain},
	{DisjointCheck, "X type A, X type B, A disjointWith B", "violation",
		disjointCheck},
	{FunctionalCheck, "X P Y1, X P Y2, P type FunctionalProperty", "violation if Y1 != Y2",
		functionalCheck},
	{InverseFunctionalCheck, "X1 P Y, X2 P Y, P type InverseFunctionalProperty", "violation if X1 != X2",
		inverseFunctionalCheck},
}

func tr(s, p, o store.ID) store.IDTriple {
	return store.IDTriple{S: s, P: p, O: o}
}

// transitivity returns a rule for a transitive schema predicate.
func transitivity(pred store.ID) func(*Context, store.IDTriple, *Output) {
	return func(ctx *Context, t store.IDTriple, out *Output) {
		// A reflexive premise only ever concludes the other premise.
		if t.P != pred || t.S == t.O {
			return
		}
		ctx.each(t.O, pred, store.Wildcard, func(next store.IDTriple) {
			out.derive(tr(t.S, pred, next.O), t, next)
		})
		ctx.each(store.Wildcard, pred, t.S, func(prev store.IDTriple) {
			out.derive(tr(prev.S, pred, t.O), prev, t)
		})
	}
}

func subClassTypePropagation(ctx *Context, t store.IDTriple, out *Output) {
	switch {
	case t.P == store.IDType:
		ctx.each(t.O, store.IDSubClassOf, store.Wildcard, func(sco store.IDTriple) {
			out.derive(tr(t.S, store.IDType, sco.O), t, sco)
		})
	case t.P == store.IDSubClassOf && t.S != t.O:
		ctx.each(store.Wildcard, store.IDType, t.S, func(typ store.IDTriple) {
			out.derive(tr(typ.S, store.IDType, t.O), typ, t)
		})
	}
}

func subPropertyFactPropagation(ctx *Context, t store.IDTriple, out *Output) {
	ctx.each(t.P, store.IDSubPropertyOf, store.Wildcard, func(spo store.IDTriple) {
		out.derive(tr(t.S, spo.O, t.O), t, spo)
	})
	if t.P == store.IDSubPropertyOf && t.S != t.O {
		ctx.each(store.Wildcard, t.S, store.Wildcard, func(fact store.IDTriple) {
			out.derive(tr(fact.S, t.O, fact.O), fact, t)
		})
	}
}

// propertyTyping returns the domain or range typing rule.
func propertyTyping(pred store.ID, object bool) func(*Context, store.IDTriple, *Output) {
	typed := func(fact store.IDTriple) store.ID {
		if object {
			return fact.O
		}
		return fact.S
	}
	return func(ctx *Context, t store.IDTriple, out *Output) {
		ctx.each(t.P, pred, store.Wildcard, func(decl store.IDTriple) {
			out.derive(tr(typed(t), store.IDType, decl.O), t, decl)
		})
		if t.P == pred {
			ctx.each(store.Wildcard, t.S, store.Wildcard, func(fact store.IDTriple) {
				out.derive(tr(typed(fact), store.IDType, t.O), fact, t)
			})
		}
	}
}

func symmetric(ctx *Context, t store.IDTriple, out *Output) {
	if decl := tr(t.P, store.IDType, store.IDSymmetricProperty); ctx.Store.ContainsID(decl) {
		out.derive(tr(t.O, t.P, t.S), t, decl)
	}
	if t.P == store.IDType && t.O == store.IDSymmetricProperty {
		ctx.each(store.Wildcard, t.S, store.Wildcard, func(fact store.IDTriple) {
			out.derive(tr(fact.O, fact.P, fact.S), fact, t)
		})
	}
}

func inverse(ctx *Context, t store.IDTriple, out *Output) {
	ctx.each(t.P, store.IDInverseOf, store.Wildcard, func(decl store.IDTriple) {
		out.derive(tr(t.O, decl.O, t.S), t, decl)
	})
	ctx.each(store.Wildcard, store.IDInverseOf, t.P, func(decl store.IDTriple) {
		out.derive(tr(t.O, decl.S, t.S), t, decl)
	})
	if t.P == store.IDInverseOf {
		ctx.each(store.Wildcard, t.S, store.Wildcard, func(fact store.IDTriple) {
			out.derive(tr(fact.O, t.O, fact.S), fact, t)
		})
		ctx.each(store.Wildcard, t.O, store.Wildcard, func(fact store.IDTriple) {
			out.derive(tr(fact.O, t.S, fact.S), fact, t)
		})
	}
}

func transitiveProperty(ctx *Context, t store.IDTriple, out *Output) {
	if decl := tr(t.P, store.IDType, store.IDTransitiveProperty); ctx.Store.ContainsID(decl) && t.S != t.O {
		ctx.each(t.O, t.P, store.Wildcard, func(next store.IDTriple) {
			out.derive(tr(t.S, t.P, next.O), t, next, decl)
		})
		ctx.each(store.Wildcard, t.P, t.S, func(prev store.IDTriple) {
			out.derive(tr(prev.S, t.P, t.O), prev, t, decl)
		})
	}
	if t.P == store.IDType && t.O == store.IDTransitiveProperty {
		p := t.S
		ctx.each(store.Wildcard, p, store.Wildcard, func(first store.IDTriple) {
			ctx.each(first.O, p, store.Wildcard, func(second store.IDTriple) {
				out.derive(tr(first.S, p, second.O), first, second, t)
			})
		})
	}
}

// equivalence returns a rule that splits an equivalence into a pair of
// subsumptions.
func equivalence(pred, sub store.ID) func(*Context, store.IDTriple, *Output) {
	return func(ctx *Context, t store.IDTriple, out *Output) {
		if t.P != pred {
			return
		}
		out.derive(tr(t.S, sub, t.O), t)
		out.derive(tr(t.O, sub, t.S), t)
	}
}

func equivalentClassClosure(ctx *Context, t store.IDTriple, out *Output) {
	if t.P != store.IDEquivalentClass {
		return
	}
	out.derive(tr(t.O, store.IDEquivalentClass, t.S), t)
	ctx.each(t.O, store.IDEquivalentClass, store.Wildcard, func(next store.IDTriple) {
		if next.O != t.S {
			out.derive(tr(t.S, store.IDEquivalentClass, next.O), t, next)
		}
	})
	ctx.each(store.Wildcard, store.IDEquivalentClass, t.S, func(prev store.IDTriple) {
		if prev.S != t.O {
			out.derive(tr(prev.S, store.IDEquivalentClass, t.O), prev, t)
		}
	})
}

// propertyChain fires with the delta triple in each step of each chain that
// uses its predicate, then walks the rest of the chain out from either end.
func propertyChain(ctx *Context, t store.IDTriple, out *Output) {
	for _, cs := range ctx.byStep[t.P] {
		steps := cs.chain.Steps
		result := cs.chain.Result
		walkBackward(ctx, steps[:cs.pos], t.S, nil, func(start store.ID, before []store.IDTriple) {
			walkForward(ctx, steps[cs.pos+1:], t.O, nil, func(end store.ID, after []store.IDTriple) {
				premises := make([]store.IDTriple, 0, len(steps))
				premises = append(premises, before...)
				premises = append(premises, t)
				premises = append(premises, after...)
				out.derive(tr(start, result, end), premises...)
			})
		})
	}
}

// walkForward follows steps from 'from', calling fn with the end of each
// path and the triples along it.
func walkForward(ctx *Context, steps []store.ID, from store.ID, path []store.IDTriple,
	fn func(end store.ID, path []store.IDTriple)) {
	if len(steps) == 0 {
		fn(from, path)
		return
	}
	ctx.each(from, steps[0], store.Wildcard, func(next store.IDTriple) {
		walkForward(ctx, steps[1:], next.O, append(path[:len(path):len(path)], next), fn)
	})
}

// walkBackward follows steps in reverse into 'to', calling fn with the start
// of each path and the triples along it, in path order.
func walkBackward(ctx *Context, steps []store.ID, to store.ID, path []store.IDTriple,
	fn func(start store.ID, path []store.IDTriple)) {
	if len(steps) == 0 {
		fn(to, path)
		return
	}
	last := steps[len(steps)-1]
	ctx.each(store.Wildcard, last, to, func(prev store.IDTriple) {
		extended := make([]store.IDTriple, 0, len(path)+1)
		extended = append(extended, prev)
		extended = append(extended, path...)
		walkBackward(ctx, steps[:len(steps)-1], prev.S, extended, fn)
	})
}

func disjointCheck(ctx *Context, t store.IDTriple, out *Output) {
	switch t.P {
	case store.IDType:
		x, a := t.S, t.O
		check := func(decl store.IDTriple, b store.ID) {
			if other := tr(x, store.IDType, b); ctx.Store.ContainsID(other) {
				if a < b {
					out.violation(x, store.Wildcard, a, b, t, other, decl)
				} else {
					out.violation(x, store.Wildcard, a, b, other, t, decl)
				}
			}
		}
		ctx.each(a, store.IDDisjointWith, store.Wildcard, func(decl store.IDTriple) {
			check(decl, decl.O)
		})
		ctx.each(store.Wildcard, store.IDDisjointWith, a, func(decl store.IDTriple) {
			check(decl, decl.S)
		})
	case store.IDDisjointWith:
		a, b := t.S, t.O
		ctx.each(store.Wildcard, store.IDType, a, func(typeA store.IDTriple) {
			if typeB := tr(typeA.S, store.IDType, b); ctx.Store.ContainsID(typeB) {
				if a < b {
					out.violation(typeA.S, store.Wildcard, a, b, typeA, typeB, t)
				} else {
					out.violation(typeA.S, store.Wildcard, a, b, typeB, typeA, t)
				}
			}
		})
	}
}

func functionalCheck(ctx *Context, t store.IDTriple, out *Output) {
	if decl := tr(t.P, store.IDType, store.IDFunctionalProperty); ctx.Store.ContainsID(decl) {
		ctx.each(t.S, t.P, store.Wildcard, func(other store.IDTriple) {
			if other.O != t.O {
				out.violation(t.S, t.P, t.O, other.O, ordered(t, other, t.O < other.O, decl)...)
			}
		})
	}
	if t.P == store.IDType && t.O == store.IDFunctionalProperty {
		p := t.S
		ctx.each(store.Wildcard, p, store.Wildcard, func(first store.IDTriple) {
			ctx.each(first.S, p, store.Wildcard, func(second store.IDTriple) {
				if first.O < second.O {
					out.violation(first.S, p, first.O, second.O, first, second, t)
				}
			})
		})
	}
}

func inverseFunctionalCheck(ctx *Context, t store.IDTriple, out *Output) {
	if decl := tr(t.P, store.IDType, store.IDInverseFunctionalProperty); ctx.Store.ContainsID(decl) {
		ctx.each(store.Wildcard, t.P, t.O, func(other store.IDTriple) {
			if other.S != t.S {
				out.violation(t.O, t.P, t.S, other.S, ordered(t, other, t.S < other.S, decl)...)
			}
		})
	}
	if t.P == store.IDType && t.O == store.IDInverseFunctionalProperty {
		p := t.S
		ctx.each(store.Wildcard, p, store.Wildcard, func(first store.IDTriple) {
			ctx.each(store.Wildcard, p, first.O, func(second store.IDTriple) {
				if first.S < second.S {
					out.violation(first.O, p, first.S, second.S, first, second, t)
				}
			})
		})
	}
}

// ordered returns the two facts, in value order, followed by the declaration.
func ordered(a, b store.IDTriple, aFirst bool, decl store.IDTriple) []store.IDTriple {
	if aFirst {
		return []store.IDTriple{a, b, decl}
	}
	return []store.IDTriple{b, a, decl}
}

// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
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

// Package stats contains a pretty-printer for statistics about a saturated
// graph.
package stats

import (
	"bufio"
	"io"

	"github.com/i-d-lytvynenko/kg-inference/graph"
	"github.com/i-d-lytvynenko/kg-inference/util/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

func count(c int) string {
	return fmtr.Sprintf("%d", c)
}

// PrettyPrint writes the stats as a series of tables to the supplied writer.
// Predicates and rules are listed most frequent first, as in s.
func PrettyPrint(w io.Writer, s graph.Stats) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	t := [][]string{
		{"Graph", "Value"},
		{"Version", count(int(s.Version))},
		{"Triples", count(s.Triples)},
		{"Asserted", count(s.Asserted)},
		{"Derived", count(s.Derived)},
		{"Rounds", count(s.Rounds)},
		{"Violations", count(s.Violations)},
	}
	table.PrettyPrint(bw, t, table.HeaderRow|table.AlignValues)
	bw.WriteRune('\n')

	t = [][]string{{"Predicate", "Asserted", "Derived", "Total"}}
	for _, p := range s.Predicates {
		t = append(t, []string{p.Predicate.String(), count(p.Asserted), count(p.Derived), count(p.Total())})
	}
	table.PrettyPrint(bw, t, table.HeaderRow|table.SkipEmpty|table.AlignValues)
	bw.WriteRune('\n')

	t = [][]string{{"Rule", "Derived"}}
	for _, r := range s.Rules {
		t = append(t, []string{string(r.Rule), count(r.Derived)})
	}
	table.PrettyPrint(bw, t, table.HeaderRow|table.SkipEmpty|table.AlignValues)
}

// PrintViolations writes one row per violation. It writes nothing if there
// are no violations.
func PrintViolations(w io.Writer, violations []graph.Violation) {
	t := [][]string{{"Kind", "Individual", "Property", "Values"}}
	for _, v := range violations {
		prop := ""
		if !v.Property.IsAny() {
			prop = v.Property.String()
		}
		t = append(t, []string{v.Kind.String(), v.Individual.String(), prop,
			v.Values[0].String() + "\n" + v.Values[1].String()})
	}
	table.PrettyPrint(w, t, table.HeaderRow|table.SkipEmpty)
}

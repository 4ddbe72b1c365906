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

// Package parser reads triples written one per line, in a relaxed N-Triples
// style:
//
//	<http://example.com/John> <http://example.com/uses> <http://example.com/Stapler> .
//	John uses Stapler
//	Pen rdf:type WritingTool
//	John name "John Smith"
//	John age 42
//	Meeting on "2019-04-01"^^xsd:date
//
// A term is an <iri>, a qname using one of the well known prefixes, a bare
// name (taken as an IRI), a quoted string with an optional ^^datatype, a
// number, or true/false. Strings use Go's escape sequences, such as \t, \n,
// \" and \x01. In a pattern, a term may also be a wildcard written
// as '*', '?', or a named variable such as ?who. The trailing '.' is optional. Blank lines are
// skipped and '#' starts a comment that runs to the end of the line. Input is
// normalized to Unicode NFC.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/util/unicode"
	p "github.com/vektah/goparsify"
)

var (
	// term extracts a single term.
	term p.Parser
	// tripleLine extracts a triple from a line.
	tripleLine p.Parser
)

func init() {
	// The inside of an IRI may hold '#', which lineWS would take for a comment.
	iri := p.Seq("<", p.Cut(), p.NoAutoWS(p.Seq(p.NotChars(">"), ">"))).Map(func(n *p.Result) { // <http://example.com/a#b>
		n.Result = rdf.IRI(n.Child[2].Child[0].Token)
	})
	word := p.NotChars(" \t\r\n\"<>", 1).Map(func(n *p.Result) { // rdf:type || John || 42
		n.Result = classifyWord(n.Token)
	})
	datatype := p.Seq("^^", p.Cut(), p.Any(iri, word)).Map(func(n *p.Result) { // ^^xsd:date
		n.Result = n.Child[2].Result
	})
	// Escapes are decoded as in Go string literals, which is how rdf.Term
	// writes them.
	quoted := p.Regex(`"(?:[^"\\\n]|\\.)*"`)
	literalString := p.Seq(quoted, p.Maybe(datatype)).Map(literalString) // "John Smith"
	id := p.Chars("A-Za-z0-9_", 1)
	wildcard := p.Any(p.Seq("?", p.NoAutoWS(p.Maybe(id))), "*").Map(func(n *p.Result) { // ?who || *
		n.Result = rdf.Any
	})
	term = p.Any(iri, literalString, wildcard, word)
	tripleLine = p.Seq(term, term, term, p.Maybe(".")).Map(func(n *p.Result) {
		n.Result = []p.Result{n.Child[0], n.Child[1], n.Child[2]}
	})
}

// lineWS skips spaces, tabs, and comments.
func lineWS(s *p.State) {
	for s.Pos < len(s.Input) {
		switch s.Input[s.Pos] {
		case ' ', '\t', '\r':
			s.Pos++
		case '#':
			s.Pos = len(s.Input)
		default:
			return
		}
	}
}

// classifyWord turns an unquoted word into a term. It returns an error value
// for words that can't be a term.
func classifyWord(w string) interface{} {
	w = strings.TrimSuffix(w, ".")
	switch {
	case w == "":
		return errors.New("empty term")
	case w == "true" || w == "false":
		return rdf.Literal(w, rdf.XSDBoolean)
	}
	if i, err := strconv.ParseInt(w, 10, 64); err == nil {
		return rdf.Int(i)
	}
	if _, err := strconv.ParseFloat(w, 64); err == nil && strings.ContainsAny(w[:1], "+-.0123456789") {
		return rdf.Literal(w, rdf.XSDDecimal)
	}
	return rdf.ResolveIRI(w)
}

func literalString(n *p.Result) {
	value, err := strconv.Unquote(n.Child[0].Token)
	if err != nil {
		n.Result = fmt.Errorf("invalid string literal %s: %v", n.Child[0].Token, err)
		return
	}
	value = unicode.Normalize(value)
	if n.Child[1].Result == nil {
		n.Result = rdf.String(value)
		return
	}
	switch dt := n.Child[1].Result.(type) {
	case rdf.Term:
		if !dt.IsIRI() {
			n.Result = fmt.Errorf("datatype of %q must be an IRI, got %v", value, dt)
			return
		}
		n.Result = rdf.Literal(value, dt.Value)
	case error:
		n.Result = dt
	}
}

func asTerm(res interface{}) (rdf.Term, error) {
	switch v := res.(type) {
	case rdf.Term:
		return v, nil
	case error:
		return rdf.Any, v
	}
	return rdf.Any, fmt.Errorf("unexpected parse result %T", res)
}

// ParseTerm parses a single term. Wildcards and the empty string give rdf.Any,
// so that ParseTerm can be used to read query patterns.
func ParseTerm(input string) (rdf.Term, error) {
	input = strings.TrimSpace(unicode.Normalize(input))
	if input == "" {
		return rdf.Any, nil
	}
	res, err := p.Run(term, input, lineWS)
	if err != nil {
		return rdf.Any, fmt.Errorf("parser: invalid term '%s': %v", input, err)
	}
	t, err := asTerm(res)
	if err != nil {
		return rdf.Any, fmt.Errorf("parser: invalid term '%s': %v", input, err)
	}
	return t, nil
}

// ParseTriple parses a single line holding one triple. Wildcards aren't
// allowed.
func ParseTriple(line string) (rdf.Triple, error) {
	t, err := ParsePattern(line)
	if err != nil {
		return rdf.Triple{}, err
	}
	return t, t.Validate()
}

// ParsePattern parses a single line holding a triple pattern, in which any
// term may be a wildcard.
func ParsePattern(line string) (rdf.Triple, error) {
	res, err := p.Run(tripleLine, unicode.Normalize(line), lineWS)
	if err != nil {
		return rdf.Triple{}, err
	}
	children := res.([]p.Result)
	var terms [3]rdf.Term
	for i := range terms {
		terms[i], err = asTerm(children[i].Result)
		if err != nil {
			return rdf.Triple{}, err
		}
	}
	return rdf.Triple{Subject: terms[0], Predicate: terms[1], Object: terms[2]}, nil
}

// ReadTriples parses every line of r. Errors identify the offending line.
func ReadTriples(r io.Reader) ([]rdf.Triple, error) {
	var res []rdf.Triple
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		t, err := ParseTriple(line)
		if err != nil {
			return nil, fmt.Errorf("parser: line %d: %v", lineNo, err)
		}
		res = append(res, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: error reading input: %v", err)
	}
	return res, nil
}

// ParseTriples parses every line of input.
func ParseTriples(input string) ([]rdf.Triple, error) {
	return ReadTriples(strings.NewReader(input))
}

// Format returns t as a line that ParseTriple reads back.
func Format(t rdf.Triple) string {
	return fmt.Sprintf("%v %v %v .", t.Subject, t.Predicate, t.Object)
}

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

// Package table lays out rows of strings as a text table for a terminal.
package table

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/i-d-lytvynenko/kg-inference/util/cmp"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Options control how PrettyPrint lays out a table.
type Options int

const (
	// HeaderRow separates the first row from the rest with a divider.
	HeaderRow Options = 1 << iota
	// SkipEmpty writes nothing when the table has no rows besides the header.
	SkipEmpty
	// AlignValues right justifies every column except the first, which holds
	// row labels. Without it every column is left justified.
	AlignValues
)

// PrettyPrint writes rows to dest as a table, with a '|' after each column. A
// cell may span several lines, separated by '\n'. Rows shorter than the
// longest row are padded with empty cells.
func PrettyPrint(dest io.Writer, rows [][]string, opts Options) {
	header := 0
	if opts&HeaderRow != 0 {
		header = 1
	}
	if len(rows) == 0 || (opts&SkipEmpty != 0 && len(rows) <= header) {
		return
	}
	// cells is indexed by row, column, then line.
	cells := make([][][]string, len(rows))
	var widths []int
	for r, row := range rows {
		cells[r] = make([][]string, len(row))
		for c, s := range row {
			cells[r][c] = strings.Split(s, "\n")
			if c == len(widths) {
				widths = append(widths, 0)
			}
			for _, line := range cells[r][c] {
				widths[c] = cmp.MaxInt(widths[c], Width(line))
			}
		}
	}
	w := bufio.NewWriter(dest)
	defer w.Flush()
	for r, row := range cells {
		height := 1
		for _, lines := range row {
			height = cmp.MaxInt(height, len(lines))
		}
		for l := 0; l < height; l++ {
			for c, colWidth := range widths {
				text := ""
				if c < len(row) && l < len(row[c]) {
					text = row[c][l]
				}
				pad := strings.Repeat(" ", colWidth-Width(text))
				w.WriteByte(' ')
				if opts&AlignValues != 0 && c > 0 {
					w.WriteString(pad)
					w.WriteString(text)
				} else {
					w.WriteString(text)
					w.WriteString(pad)
				}
				w.WriteString(" |")
			}
			w.WriteByte('\n')
		}
		if r+1 == header {
			for _, colWidth := range widths {
				w.WriteByte(' ')
				w.WriteString(strings.Repeat("-", colWidth))
				w.WriteString(" |")
			}
			w.WriteByte('\n')
		}
	}
}

// Width estimates how many columns s takes up on a terminal. Combining marks
// take none, and East Asian wide and fullwidth characters take two.
func Width(s string) int {
	n := 0
	for _, r := range norm.NFC.String(s) {
		switch {
		case unicode.In(r, unicode.Mn, unicode.Me):
		case isWide(r):
			n += 2
		default:
			n++
		}
	}
	return n
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table implements a simple two-dimensional table with a header row,
// the tabular form of the API responses.
package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/stockparfait/errors"
	"golang.org/x/exp/slices"
)

// Value is an arbitrary value of a table cell. Cells parsed from JSON hold
// the types produced by encoding/json with UseNumber: nil, bool, json.Number,
// string, []any and map[string]any. Cells parsed from CSV are always strings.
type Value = interface{}

// Row of table cells, in the order of the table header.
type Row []Value

// CSV returns an encoding/csv compatible representation of the row.
func (r Row) CSV() []string {
	res := make([]string, len(r))
	for i, v := range r {
		res[i] = FormatValue(v)
	}
	return res
}

// FormatValue prints a cell value as text.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Record is a single JSON object with its keys in the document order.
type Record struct {
	Keys   []string
	Values map[string]Value
}

// Table container.
//
// A typical use:
//   t := NewTable("symbol", "price")
//   t.AddRow(Row{"AAPL", 150.0}, Row{"MSFT", 300.0})
//   t.WriteText(os.Stdout, Params{})
type Table struct {
	Header []string // may be nil for an empty table
	Rows   []Row
}

// NewTable creates a new Table instance with optional column headers.  It is
// expected that, when present, the number of column headers is the same as the
// number of elements in each Row.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// AddRow adds one or more rows to the table.
func (t *Table) AddRow(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Len is the number of rows, not counting the header.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named column, or -1 if there is none.
func (t *Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

// Values of the named column, top to bottom.
func (t *Table) Values(column string) ([]Value, error) {
	j := t.Column(column)
	if j < 0 {
		return nil, errors.Reason("no such column: '%s'", column)
	}
	res := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		if j < len(r) {
			res[i] = r[j]
		}
	}
	return res, nil
}

// unionHeader merges column names in the order they are first seen.
func unionHeader(headers ...[]string) []string {
	seen := make(map[string]bool)
	var res []string
	for _, h := range headers {
		for _, name := range h {
			if seen[name] {
				continue
			}
			seen[name] = true
			res = append(res, name)
		}
	}
	return res
}

// FromRecords creates a table with a row per record. The columns are the union
// of the record keys in the order they are first seen; cells for keys missing
// in a record are nil.
func FromRecords(records []Record) *Table {
	keys := make([][]string, len(records))
	for i, r := range records {
		keys[i] = r.Keys
	}
	t := NewTable(unionHeader(keys...)...)
	for _, r := range records {
		row := make(Row, len(t.Header))
		for j, name := range t.Header {
			row[j] = r.Values[name]
		}
		t.AddRow(row)
	}
	return t
}

// FromCSV creates a table from raw CSV rows, where the first row is the header
// and the rest are the data. Rows shorter than the header are padded with
// empty strings.
func FromCSV(rows [][]string) *Table {
	if len(rows) == 0 {
		return NewTable()
	}
	t := NewTable(rows[0]...)
	for _, r := range rows[1:] {
		n := len(r)
		if n < len(t.Header) {
			n = len(t.Header)
		}
		row := make(Row, n)
		for j := range row {
			row[j] = ""
			if j < len(r) {
				row[j] = r[j]
			}
		}
		t.AddRow(row)
	}
	return t
}

// Merge concatenates the rows of several tables. The header is the union of
// the headers in the order of first appearance.
func Merge(tables ...*Table) *Table {
	headers := make([][]string, len(tables))
	for i, t := range tables {
		headers[i] = t.Header
	}
	res := NewTable(unionHeader(headers...)...)
	for _, t := range tables {
		for _, r := range t.Rows {
			row := make(Row, len(res.Header))
			for j, name := range t.Header {
				if j < len(r) {
					row[res.Column(name)] = r[j]
				}
			}
			res.AddRow(row)
		}
	}
	return res
}

// Params are parameters for pretty-printing or CSV export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// printed is the prefix of the rows allowed by p.Rows.
func (t *Table) printed(p Params) []Row {
	if p.Rows > 0 && p.Rows < len(t.Rows) {
		return t.Rows[:p.Rows]
	}
	return t.Rows
}

// WriteCSV writes the table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader && len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for _, r := range t.printed(p) {
		if err := cw.Write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// truncate cells longer than maxWidth runes, marking them with "..". No-op
// when maxWidth is 0.
func truncate(cells []string, maxWidth int) []string {
	if maxWidth <= 0 {
		return cells
	}
	for i, s := range cells {
		if r := []rune(s); len(r) > maxWidth {
			cells[i] = string(r[:maxWidth-2]) + ".."
		}
	}
	return cells
}

// Text is the row's cells as text of at most maxWidth runes (0 = unlimited).
func (r Row) Text(maxWidth int) []string {
	return truncate(r.CSV(), maxWidth)
}

// columnWidths is the width in runes of each column of the text lines, which
// must all have the same number of cells.
func columnWidths(lines [][]string) ([]int, error) {
	var widths []int
	for i, line := range lines {
		if i == 0 {
			widths = make([]int, len(line))
		}
		if len(line) != len(widths) {
			return nil, errors.Reason("line %d has %d cells, expected %d",
				i, len(line), len(widths))
		}
		for j, s := range line {
			if n := utf8.RuneCountInString(s); n > widths[j] {
				widths[j] = n
			}
		}
	}
	return widths, nil
}

// WriteText writes the table as right-aligned text columns separated by " | ",
// with a dashed line under the header.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	header := !p.NoHeader && len(t.Header) > 0
	var lines [][]string
	if header {
		lines = append(lines, truncate(append([]string{}, t.Header...), p.MaxColWidth))
	}
	for _, r := range t.printed(p) {
		lines = append(lines, r.Text(p.MaxColWidth))
	}
	widths, err := columnWidths(lines)
	if err != nil {
		return errors.Annotate(err, "inconsistent table")
	}
	if header {
		dashes := make([]string, len(widths))
		for j, n := range widths {
			dashes[j] = strings.Repeat("-", n)
		}
		lines = append(lines[:1], append([][]string{dashes}, lines[1:]...)...)
	}
	for _, line := range lines {
		for j, s := range line {
			line[j] = strings.Repeat(" ", widths[j]-utf8.RuneCountInString(s)) + s
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, " | ")); err != nil {
			return errors.Annotate(err, "failed to write text")
		}
	}
	return nil
}

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

package table

import (
	"encoding/json"
	"strconv"

	"github.com/stockparfait/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary statistics of a numerical column.
type Summary struct {
	Column string
	Count  int // number of numerical cells
	Mean   float64
	Std    float64 // sample standard deviation; NaN when Count < 2
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

// toFloat converts a numerical cell, or a string holding a number (as in CSV
// tables), to float64.
func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// Describe computes summary statistics of the named column. Cells which are
// not numbers are skipped. It is an error if no cell is a number.
func (t *Table) Describe(column string) (*Summary, error) {
	values, err := t.Values(column)
	if err != nil {
		return nil, errors.Annotate(err, "cannot describe column")
	}
	var xs []float64
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return nil, errors.Reason("column '%s' has no numerical values", column)
	}
	slices.Sort(xs)
	s := Summary{
		Column: column,
		Count:  len(xs),
		Mean:   stat.Mean(xs, nil),
		Std:    stat.StdDev(xs, nil),
		Min:    floats.Min(xs),
		P25:    stat.Quantile(0.25, stat.Empirical, xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, xs, nil),
		Max:    floats.Max(xs),
	}
	return &s, nil
}

// Table presents the summary as a two-column table.
func (s *Summary) Table() *Table {
	t := NewTable("Statistic", s.Column)
	t.AddRow(
		Row{"count", float64(s.Count)},
		Row{"mean", s.Mean},
		Row{"std", s.Std},
		Row{"min", s.Min},
		Row{"25%", s.P25},
		Row{"50%", s.Median},
		Row{"75%", s.P75},
		Row{"max", s.Max},
	)
	return t
}

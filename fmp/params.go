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

package fmp

import (
	"time"
	_ "time/tzdata" // for America/New_York on systems without zoneinfo

	"github.com/stockparfait/errors"
)

// Period of the financial statements.
type Period string

// Values of Period. The zero value leaves the choice to the API, which
// currently defaults to annual.
const (
	Annual  = Period("annual")
	Quarter = Period("quarter")
)

// StatementParams are the optional parameters of the financial statement
// endpoints. Zero values are not sent.
type StatementParams struct {
	Period Period
	Limit  int // maximum number of periods; 0 = API default
}

// DateFormat is the layout of dates in requests and responses.
const DateFormat = "2006-01-02"

// EarliestDate is the start of the "full" price history.
var EarliestDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateRange for historical queries. A zero From is not sent; a zero To means
// today in New York, evaluated at call time.
type DateRange struct {
	From time.Time
	To   time.Time
}

var newYork *time.Location

func init() {
	var err error
	tz := "America/New_York"
	if newYork, err = time.LoadLocation(tz); err != nil {
		panic(errors.Annotate(err, "failed to load timezone %s", tz))
	}
}

// DateInNY returns the calendar date in New York at the given time, at
// midnight UTC.
func DateInNY(now time.Time) time.Time {
	t := now.In(newYork)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, errors.Annotate(err, "failed to parse date '%s'", s)
	}
	return t, nil
}

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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fmp/table"

	. "github.com/smartystreets/goconvey/convey"
)

func ok(body string) *Response {
	return &Response{StatusCode: 200, Body: []byte(body)}
}

func kindOf(err error) ErrorKind {
	e, isErr := err.(*Error)
	if !isErr {
		return 0
	}
	return e.Kind
}

func TestProcess(t *testing.T) {
	t.Parallel()

	quotes := `[
  {"symbol": "AAPL", "price": 150.5, "exchange": "NASDAQ"},
  {"symbol": "BRK-A", "exchange": "NYSE", "price": 450000, "active": true},
  {"name": "Microsoft", "symbol": "MSFT"}
]`

	Convey("Status classification", t, func() {
		Convey("429 is RateLimited regardless of the body", func() {
			for _, body := range []string{"", "[]", `{"Error Message": "Limit Reach"}`, "a,b\n"} {
				for _, wire := range []WireFormat{JSONFormat, CSVFormat} {
					_, err := Process(&Response{StatusCode: 429, Body: []byte(body)}, wire, TableShape)
					So(kindOf(err), ShouldEqual, RateLimited)
					So(IsKind(err, RateLimited), ShouldBeTrue)
				}
			}
			_, err := ProcessField(&Response{StatusCode: 429, Body: []byte("{}")}, "historical", RecordsShape)
			So(kindOf(err), ShouldEqual, RateLimited)
		})

		Convey("other non-200 statuses are RequestFailed", func() {
			for _, status := range []int{201, 204, 301, 400, 401, 403, 404, 500, 502, 503} {
				_, err := Process(&Response{StatusCode: status, Body: []byte("[]")}, JSONFormat, RecordsShape)
				So(kindOf(err), ShouldEqual, RequestFailed)
				So(err.(*Error).StatusCode, ShouldEqual, status)
			}
			_, err := Process(&Response{StatusCode: 500}, JSONFormat, RecordsShape)
			So(err.Error(), ShouldEqual, "FMP: request failed (HTTP 500)")
		})
	})

	Convey("JSON", t, func() {
		Convey("records are the parsed body unchanged", func() {
			for _, body := range []string{quotes, "[]", `{"isTheStockMarketOpen": true}`, `[1, "a", null]`, `"str"`} {
				var expected Value
				dec := json.NewDecoder(bytes.NewReader([]byte(body)))
				dec.UseNumber()
				So(dec.Decode(&expected), ShouldBeNil)
				res, err := Process(ok(body), JSONFormat, RecordsShape)
				So(err, ShouldBeNil)
				So(res.Shape, ShouldEqual, RecordsShape)
				So(res.Records, ShouldResemble, expected)
				So(res.Table, ShouldBeNil)
			}
		})

		Convey("table columns are the union of keys in first-seen order", func() {
			res, err := Process(ok(quotes), JSONFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Shape, ShouldEqual, TableShape)
			So(res.Records, ShouldBeNil)
			So(res.Table.Header, ShouldResemble,
				[]string{"symbol", "price", "exchange", "active", "name"})
			So(res.Table.Rows, ShouldResemble, []table.Row{
				{"AAPL", json.Number("150.5"), "NASDAQ", nil, nil},
				{"BRK-A", json.Number("450000"), "NYSE", true, nil},
				{"MSFT", nil, nil, nil, "Microsoft"},
			})
			So(res.Len(), ShouldEqual, 3)
		})

		Convey("nested values are kept in cells", func() {
			res, err := Process(ok(`[{"a": {"b": [1, 2]}}]`), JSONFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Rows[0][0], ShouldResemble, map[string]Value{"b": []Value{json.Number("1"), json.Number("2")}})
		})

		Convey("a single object is a one-row table", func() {
			res, err := Process(ok(`{"symbol": "AAPL", "mktCap": 2.5e12}`), JSONFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Header, ShouldResemble, []string{"symbol", "mktCap"})
			So(res.Table.Len(), ShouldEqual, 1)
		})

		Convey("empty array and object are empty tables", func() {
			for _, body := range []string{"[]", "{}"} {
				res, err := Process(ok(body), JSONFormat, TableShape)
				So(err, ShouldBeNil)
				So(res.Table.Len(), ShouldEqual, 0)
				So(len(res.Table.Header), ShouldEqual, 0)
			}
		})

		Convey("large integers are not rounded", func() {
			body := `[{"volume": 9007199254740993}]`
			res, err := Process(ok(body), JSONFormat, RecordsShape)
			So(err, ShouldBeNil)
			b, err := json.Marshal(res.Records)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `[{"volume":9007199254740993}]`)

			res, err = Process(ok(body), JSONFormat, TableShape)
			So(err, ShouldBeNil)
			So(table.FormatValue(res.Table.Rows[0][0]), ShouldEqual, "9007199254740993")
		})

		Convey("non-records cannot be tables", func() {
			for _, body := range []string{`[1, 2]`, `"str"`, `[{"a": 1}, 2]`, `null`} {
				_, err := Process(ok(body), JSONFormat, TableShape)
				So(kindOf(err), ShouldEqual, UnsupportedConversion)
			}
		})

		Convey("malformed JSON is an error", func() {
			_, err := Process(ok(`[{"a": `), JSONFormat, RecordsShape)
			So(err, ShouldNotBeNil)
			So(kindOf(err), ShouldEqual, ErrorKind(0))

			_, err = Process(ok(`[] []`), JSONFormat, RecordsShape)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("CSV", t, func() {
		eod := "symbol,date,open,close\nAAPL,2022-01-03,177.83,182.01\nMSFT,2022-01-03,335.35,334.75\nIBM,2022-01-03,134.07,136.04\n"

		Convey("table consumes the header row", func() {
			res, err := Process(ok(eod), CSVFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Header, ShouldResemble, []string{"symbol", "date", "open", "close"})
			So(res.Table.Len(), ShouldEqual, 3)
			So(res.Table.Rows[0], ShouldResemble,
				table.Row{"AAPL", "2022-01-03", "177.83", "182.01"})
		})

		Convey("CRLF line endings and header only", func() {
			res, err := Process(ok("a,b\r\n1,2\r\n"), CSVFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Header, ShouldResemble, []string{"a", "b"})
			So(res.Table.Rows, ShouldResemble, []table.Row{{"1", "2"}})

			res, err = Process(ok("a,b\n"), CSVFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Len(), ShouldEqual, 0)
		})

		Convey("short rows are padded", func() {
			res, err := Process(ok("symbol,date,close\nAAPL,2022-01-03,182.01\nMSFT,2022-01-03\n"),
				CSVFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Len(), ShouldEqual, 2)
			So(res.Table.Rows[1], ShouldResemble, table.Row{"MSFT", "2022-01-03", ""})
		})

		Convey("bare quotes are kept", func() {
			res, err := Process(ok("symbol,name\nX,Foo \"Bar\" Inc\n"), CSVFormat, TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Rows, ShouldResemble, []table.Row{{"X", `Foo "Bar" Inc`}})
		})

		Convey("records are never supported", func() {
			for _, body := range []string{eod, "", "garbage"} {
				_, err := Process(ok(body), CSVFormat, RecordsShape)
				So(kindOf(err), ShouldEqual, UnsupportedConversion)
			}
		})
	})

	Convey("ProcessField", t, func() {
		history := `{"symbol": "AAPL", "historical": [
  {"date": "2022-01-04", "close": 179.7},
  {"date": "2022-01-03", "close": 182.01}
]}`

		Convey("empty object is an empty result", func() {
			res, err := ProcessField(ok("{}"), "historical", RecordsShape)
			So(err, ShouldBeNil)
			So(res.Records, ShouldResemble, []Value{})
			So(res.Len(), ShouldEqual, 0)

			res, err = ProcessField(ok("{}"), "historical", TableShape)
			So(err, ShouldBeNil)
			So(res.Table, ShouldNotBeNil)
			So(res.Table.Len(), ShouldEqual, 0)
		})

		Convey("null field is an empty result", func() {
			res, err := ProcessField(ok(`{"symbol": "XXXX", "historical": null}`), "historical", RecordsShape)
			So(err, ShouldBeNil)
			So(res.Records, ShouldResemble, []Value{})

			res, err = ProcessField(ok(`{"historical": null}`), "historical", TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Len(), ShouldEqual, 0)
		})

		Convey("extracts the field", func() {
			res, err := ProcessField(ok(history), "historical", RecordsShape)
			So(err, ShouldBeNil)
			So(res.Records, ShouldResemble, []Value{
				map[string]Value{"date": "2022-01-04", "close": json.Number("179.7")},
				map[string]Value{"date": "2022-01-03", "close": json.Number("182.01")},
			})

			res, err = ProcessField(ok(history), "historical", TableShape)
			So(err, ShouldBeNil)
			So(res.Table.Header, ShouldResemble, []string{"date", "close"})
			So(res.Table.Len(), ShouldEqual, 2)
		})

		Convey("non-object body is an error", func() {
			_, err := ProcessField(ok("[]"), "historical", RecordsShape)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Errors", t, func() {
		So((&Error{Kind: RateLimited}).Error(), ShouldEqual, "FMP: rate limited")
		So(newError(InvalidArgument, "bad %s", "input").Error(), ShouldEqual,
			"FMP: invalid argument: bad input")
		So(IsKind(nil, RateLimited), ShouldBeFalse)
		wrapped := errors.Annotate(&Error{Kind: RateLimited}, "failed to fetch quotes")
		So(IsKind(wrapped, RateLimited), ShouldBeTrue)
		So(IsKind(wrapped, RequestFailed), ShouldBeFalse)
		So(ErrorKind(42).String(), ShouldEqual, "ErrorKind(42)")
	})
}

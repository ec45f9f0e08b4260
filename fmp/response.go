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
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fmp/table"
)

// WireFormat is the format of the response body declared by an endpoint.
type WireFormat int

const (
	JSONFormat WireFormat = iota
	CSVFormat
)

func (f WireFormat) String() string {
	switch f {
	case JSONFormat:
		return "json"
	case CSVFormat:
		return "csv"
	}
	return "unknown"
}

// Shape is the form of the Result requested by the caller.
type Shape int

const (
	// RecordsShape returns the parsed JSON as is.
	RecordsShape Shape = iota
	// TableShape returns a *table.Table.
	TableShape
)

func (s Shape) String() string {
	switch s {
	case RecordsShape:
		return "records"
	case TableShape:
		return "table"
	}
	return "unknown"
}

// Value is an arbitrary value parsed from JSON.
type Value = table.Value

// Response is the raw HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Result of an API call, in exactly one of the two shapes.
type Result struct {
	Shape Shape
	// Records is the parsed JSON body: typically []any of map[string]any, or a
	// single map[string]any. Numbers are json.Number. Set only for RecordsShape.
	Records Value
	// Table is set only for TableShape.
	Table *table.Table
}

// Len is the number of records or table rows.
func (r *Result) Len() int {
	if r.Shape == TableShape {
		return r.Table.Len()
	}
	switch x := r.Records.(type) {
	case []Value:
		return len(x)
	case nil:
		return 0
	}
	return 1
}

func emptyResult(shape Shape) *Result {
	if shape == TableShape {
		return &Result{Shape: shape, Table: table.NewTable()}
	}
	return &Result{Shape: shape, Records: []Value{}}
}

// checkStatus classifies the HTTP status code.
func checkStatus(resp *Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return &Error{Kind: RateLimited}
	}
	return &Error{Kind: RequestFailed, StatusCode: resp.StatusCode}
}

// Process validates the response status, parses the body in the given wire
// format and converts it to the requested shape.
func Process(resp *Response, wire WireFormat, shape Shape) (*Result, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	switch wire {
	case JSONFormat:
		return convertJSON(resp.Body, shape)
	case CSVFormat:
		return convertCSV(resp.Body, shape)
	}
	return nil, newError(UnsupportedConversion, "unknown wire format %d", int(wire))
}

// ProcessField is Process for a JSON object whose data is under a named field,
// such as "historical". An empty object means no data and produces an empty
// Result of the requested shape, as does a missing or null field.
func ProcessField(resp *Response, field string, shape Shape) (*Result, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	if shape != RecordsShape && shape != TableShape {
		return nil, newError(UnsupportedConversion, "unknown shape %d", int(shape))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &obj); err != nil {
		return nil, errors.Annotate(err, "expected a JSON object with field '%s'", field)
	}
	raw, ok := obj[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return emptyResult(shape), nil
	}
	return convertJSON(raw, shape)
}

// decodeJSON parses a single JSON value. Numbers are kept as json.Number, so
// large integers survive unchanged.
func decodeJSON(body []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v Value
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Reason("unexpected data after the JSON value")
	}
	return v, nil
}

func convertJSON(body []byte, shape Shape) (*Result, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse JSON")
	}
	switch shape {
	case RecordsShape:
		return &Result{Shape: shape, Records: v}, nil
	case TableShape:
		records, err := orderedRecords(body, v)
		if err != nil {
			return nil, err
		}
		return &Result{Shape: shape, Table: table.FromRecords(records)}, nil
	}
	return nil, newError(UnsupportedConversion, "unknown shape %d", int(shape))
}

func convertCSV(body []byte, shape Shape) (*Result, error) {
	if shape != TableShape {
		return nil, newError(UnsupportedConversion,
			"CSV response cannot be converted to %s", shape)
	}
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1 // rows may be shorter than the header
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse CSV")
	}
	return &Result{Shape: shape, Table: table.FromCSV(rows)}, nil
}

// orderedRecords pairs the parsed JSON objects with their keys in the document
// order. The value must be a single object or an array of objects.
func orderedRecords(body []byte, v Value) ([]table.Record, error) {
	var objs []map[string]Value
	switch x := v.(type) {
	case map[string]Value:
		if len(x) == 0 {
			return nil, nil
		}
		objs = []map[string]Value{x}
	case []Value:
		for i, e := range x {
			m, ok := e.(map[string]Value)
			if !ok {
				return nil, newError(UnsupportedConversion,
					"element %d of JSON array is not an object: %T", i, e)
			}
			objs = append(objs, m)
		}
	default:
		return nil, newError(UnsupportedConversion,
			"JSON value of type %T cannot be converted to a table", v)
	}
	keys, err := recordKeys(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read JSON keys")
	}
	if len(keys) != len(objs) {
		return nil, errors.Reason("found keys for %d objects, expected %d",
			len(keys), len(objs))
	}
	records := make([]table.Record, len(objs))
	for i, m := range objs {
		records[i] = table.Record{Keys: keys[i], Values: m}
	}
	return records, nil
}

// recordKeys returns the keys of each top-level object in body in the order
// they appear. The body is a single object or an array of objects.
func recordKeys(body []byte) ([][]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read the first token")
	}
	switch tok {
	case json.Delim('{'):
		keys, err := objectKeys(dec)
		if err != nil {
			return nil, err
		}
		return [][]string{keys}, nil
	case json.Delim('['):
		var res [][]string
		for dec.More() {
			if tok, err = dec.Token(); err != nil {
				return nil, errors.Annotate(err, "failed to read array element")
			}
			if tok != json.Delim('{') {
				return nil, errors.Reason("array element %d is not an object", len(res))
			}
			keys, err := objectKeys(dec)
			if err != nil {
				return nil, errors.Annotate(err, "failed to read object %d", len(res))
			}
			res = append(res, keys)
		}
		return res, nil
	}
	return nil, errors.Reason("expected an object or an array, got %v", tok)
}

// objectKeys reads the rest of an object after its opening brace.
func objectKeys(dec *json.Decoder) ([]string, error) {
	keys := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Annotate(err, "failed to read object key")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Reason("object key is not a string: %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, errors.Annotate(err, "failed to read value of '%s'", key)
		}
		keys = append(keys, key)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, errors.Annotate(err, "failed to read the end of object")
	}
	return keys, nil
}

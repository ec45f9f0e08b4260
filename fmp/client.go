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
	"context"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// DefaultURL is the base URL of the API, without the version.
const DefaultURL = "https://financialmodelingprep.com/api"

// APIKeyEnv is the environment variable holding the API key when none is
// given to NewClient.
const APIKeyEnv = "FMP_API_KEY"

// DefaultTimeout of a single HTTP request.
const DefaultTimeout = 60 * time.Second

// apiVersion is the version prefix of an endpoint path.
type apiVersion string

const (
	v3 = apiVersion("/v3")
	v4 = apiVersion("/v4")
)

// Client for the Financial Modeling Prep API. It holds no mutable state and
// may be shared between goroutines.
type Client struct {
	baseURL string // the base URL of the server
	apiKey  string // your very own secret key
	http    *resty.Client
	now     func() time.Time
}

// NewClient creates a new client. When apiKey is empty, it is read from the
// FMP_API_KEY environment variable. If that is also empty, the requests are
// sent without a key and will be rejected by the server.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	return &Client{
		baseURL: DefaultURL,
		apiKey:  apiKey,
		http:    resty.New().SetTimeout(DefaultTimeout),
		now:     time.Now,
	}
}

func (c *Client) copy() *Client {
	c2 := *c
	return &c2
}

// WithBaseURL returns a copy of the client using a different server, e.g. a
// test server. The URL must not include the API version.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c2 := c.copy()
	c2.baseURL = baseURL
	return c2
}

// WithHTTPClient returns a copy of the client sending requests through hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c2 := c.copy()
	c2.http = resty.NewWithClient(hc)
	return c2
}

// WithClock returns a copy of the client using now for the default dates.
func (c *Client) WithClock(now func() time.Time) *Client {
	c2 := c.copy()
	c2.now = now
	return c2
}

// today is the current date in New York, which is the calendar of the US
// exchanges. It is evaluated on every call.
func (c *Client) today() time.Time {
	return DateInNY(c.now())
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient injects the client into the context.
func UseClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}

// Request describes a single API call: the endpoint path and its query
// parameters, without the API key.
type Request struct {
	Path  string // relative to the base URL, including the API version
	Query url.Values
}

func newRequest(version apiVersion, path string) *Request {
	return &Request{Path: string(version) + "/" + path, Query: make(url.Values)}
}

// Set adds a query parameter, unless value is empty.
func (r *Request) Set(name, value string) *Request {
	if value != "" {
		r.Query.Set(name, value)
	}
	return r
}

// SetInt adds a numerical query parameter, unless value is 0.
func (r *Request) SetInt(name string, value int) *Request {
	if value != 0 {
		r.Query.Set(name, strconv.Itoa(value))
	}
	return r
}

// SetDate adds a date query parameter, unless the date is zero.
func (r *Request) SetDate(name string, date time.Time) *Request {
	if !date.IsZero() {
		r.Query.Set(name, date.Format(DateFormat))
	}
	return r
}

// Values returns the query parameters as sent to the server, i.e. including
// the API key. Each call creates a new object.
func (c *Client) Values(r *Request) url.Values {
	v := make(url.Values)
	for k, vs := range r.Query {
		v[k] = append([]string{}, vs...)
	}
	v.Set("apikey", c.apiKey)
	return v
}

// httpClient is the HTTP client injected into the context by fetch.UseClient,
// if any, or else the client's own.
func (c *Client) httpClient(ctx context.Context) *resty.Client {
	if hc := fetch.GetClient(ctx); hc != nil {
		return resty.NewWithClient(hc)
	}
	return c.http
}

// Get sends the request and returns the raw response. Only transport failures
// are errors; the status code is left for Process to classify.
func (c *Client) Get(ctx context.Context, r *Request) (*Response, error) {
	logging.Debugf(ctx, "FMP: GET %s %v", r.Path, r.Query)
	resp, err := c.httpClient(ctx).R().
		SetContext(ctx).
		SetQueryParamsFromValues(c.Values(r)).
		Get(c.baseURL + r.Path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch %s", r.Path)
	}
	logging.Debugf(ctx, "FMP: %s returned HTTP %d, %d bytes",
		r.Path, resp.StatusCode(), len(resp.Body()))
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// fetch sends the request and processes the response.
func (c *Client) fetch(ctx context.Context, r *Request, wire WireFormat, shape Shape) (*Result, error) {
	resp, err := c.Get(ctx, r)
	if err != nil {
		return nil, err
	}
	return Process(resp, wire, shape)
}

// fetchField is fetch for the endpoints returning data in a named JSON field.
func (c *Client) fetchField(ctx context.Context, r *Request, field string, shape Shape) (*Result, error) {
	resp, err := c.Get(ctx, r)
	if err != nil {
		return nil, err
	}
	return ProcessField(resp, field, shape)
}

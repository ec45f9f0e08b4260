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

// Package fmp implements a client for the Financial Modeling Prep (FMP) API.
//
// Official documentation is at
// https://site.financialmodelingprep.com/developer/docs .
//
// Each Client method corresponds to a single API endpoint. The response is
// returned either as records, which is the parsed JSON exactly as sent by the
// server, or as a table.Table. The endpoints which send CSV can only return
// tables, since the column names are in the first row.
//
// The API key is passed to NewClient, or read from the FMP_API_KEY environment
// variable. A typical use:
//
//   c := fmp.NewClient("")
//   res, err := c.Quote(ctx, fmp.SymbolList("AAPL", "MSFT"), fmp.TableShape)
//   if err != nil {
//     if fmp.IsKind(err, fmp.RateLimited) {
//       // back off and try again later
//     }
//     return err
//   }
//   res.Table.WriteText(os.Stdout, table.Params{})
//
// The client never retries. HTTP 429 results in an error of kind RateLimited,
// and any other status except 200 in RequestFailed.
package fmp

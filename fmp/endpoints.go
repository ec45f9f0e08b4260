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
	"time"
)

// symbolPath creates a request for an endpoint taking the symbol as the last
// path element.
func symbolPath(version apiVersion, path, symbol string) (*Request, error) {
	if symbol == "" {
		return nil, newError(InvalidArgument, "empty symbol for %s", path)
	}
	return newRequest(version, path+"/"+symbol), nil
}

// symbolQuery creates a request for an endpoint taking the symbol as a query
// parameter.
func symbolQuery(version apiVersion, path, symbol string) (*Request, error) {
	if symbol == "" {
		return nil, newError(InvalidArgument, "empty symbol for %s", path)
	}
	return newRequest(version, path).Set("symbol", symbol), nil
}

// symbolsPath creates a request for an endpoint taking a comma-separated list
// of symbols as the last path element.
func symbolsPath(version apiVersion, path string, symbols Symbols) (*Request, error) {
	s, err := symbols.Join()
	if err != nil {
		return nil, err
	}
	return newRequest(version, path+"/"+s), nil
}

func (c *Client) statement(ctx context.Context, path, symbol string, p StatementParams, shape Shape) (*Result, error) {
	r, err := symbolPath(v3, path, symbol)
	if err != nil {
		return nil, err
	}
	r.Set("period", string(p.Period)).SetInt("limit", p.Limit)
	return c.fetch(ctx, r, JSONFormat, shape)
}

func (c *Client) bySymbolPath(ctx context.Context, version apiVersion, path, symbol string, shape Shape) (*Result, error) {
	r, err := symbolPath(version, path, symbol)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, r, JSONFormat, shape)
}

func (c *Client) bySymbolQuery(ctx context.Context, version apiVersion, path, symbol string, shape Shape) (*Result, error) {
	r, err := symbolQuery(version, path, symbol)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, r, JSONFormat, shape)
}

func (c *Client) bySymbols(ctx context.Context, version apiVersion, path string, symbols Symbols, shape Shape) (*Result, error) {
	r, err := symbolsPath(version, path, symbols)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, r, JSONFormat, shape)
}

func (c *Client) list(ctx context.Context, version apiVersion, path string, shape Shape) (*Result, error) {
	return c.fetch(ctx, newRequest(version, path), JSONFormat, shape)
}

// Stock fundamentals.

// FinancialStatementSymbolLists lists the symbols which have financial
// statements.
func (c *Client) FinancialStatementSymbolLists(ctx context.Context, shape Shape) (*Result, error) {
	return c.list(ctx, v3, "financial-statement-symbol-lists", shape)
}

// IncomeStatement returns historical income statements for the symbol.
func (c *Client) IncomeStatement(ctx context.Context, symbol string, p StatementParams, shape Shape) (*Result, error) {
	return c.statement(ctx, "income-statement", symbol, p, shape)
}

// BalanceSheetStatement returns historical balance sheets for the symbol.
func (c *Client) BalanceSheetStatement(ctx context.Context, symbol string, p StatementParams, shape Shape) (*Result, error) {
	return c.statement(ctx, "balance-sheet-statement", symbol, p, shape)
}

// CashFlowStatement returns historical cash flow statements for the symbol.
func (c *Client) CashFlowStatement(ctx context.Context, symbol string, p StatementParams, shape Shape) (*Result, error) {
	return c.statement(ctx, "cash-flow-statement", symbol, p, shape)
}

// KeyMetrics returns historical key metrics (per share values, valuation
// multiples) for the symbol.
func (c *Client) KeyMetrics(ctx context.Context, symbol string, p StatementParams, shape Shape) (*Result, error) {
	return c.statement(ctx, "key-metrics", symbol, p, shape)
}

// FinancialRatios returns historical financial ratios for the symbol.
func (c *Client) FinancialRatios(ctx context.Context, symbol string, p StatementParams, shape Shape) (*Result, error) {
	return c.statement(ctx, "ratios", symbol, p, shape)
}

// EnterpriseValues returns historical enterprise values for the symbol.
func (c *Client) EnterpriseValues(ctx context.Context, symbol string, p StatementParams, shape Shape) (*Result, error) {
	return c.statement(ctx, "enterprise-values", symbol, p, shape)
}

// FinancialReportDates lists the dates and links of the symbol's financial
// reports.
func (c *Client) FinancialReportDates(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.bySymbolQuery(ctx, v4, "financial-reports-dates", symbol, shape)
}

// Company information.

// CompanyProfile returns the company's profile: sector, industry, description,
// price, market capitalization, etc.
func (c *Client) CompanyProfile(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.bySymbolPath(ctx, v3, "profile", symbol, shape)
}

// KeyExecutives of the company.
func (c *Client) KeyExecutives(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.bySymbolPath(ctx, v3, "key-executives", symbol, shape)
}

// MarketCapitalization is the current market capitalization.
func (c *Client) MarketCapitalization(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.bySymbolPath(ctx, v3, "market-capitalization", symbol, shape)
}

// HistoricalMarketCapitalization is the daily market capitalization history,
// up to limit days (0 = API default).
func (c *Client) HistoricalMarketCapitalization(ctx context.Context, symbol string, limit int, shape Shape) (*Result, error) {
	r, err := symbolPath(v3, "historical-market-capitalization", symbol)
	if err != nil {
		return nil, err
	}
	r.SetInt("limit", limit)
	return c.fetch(ctx, r, JSONFormat, shape)
}

// CompanyOutlook combines the profile, metrics, ratios, insider trades and
// more into a single nested object, thus only available as records.
func (c *Client) CompanyOutlook(ctx context.Context, symbol string) (*Result, error) {
	return c.bySymbolQuery(ctx, v4, "company-outlook", symbol, RecordsShape)
}

// StockPeers lists the companies trading on the same exchange, in the same
// sector and with a similar market capitalization.
func (c *Client) StockPeers(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.bySymbolQuery(ctx, v4, "stock_peers", symbol, shape)
}

// IsTheMarketOpen returns the current state of the market and its holidays.
// The result is a single nested object, thus only available as records.
func (c *Client) IsTheMarketOpen(ctx context.Context) (*Result, error) {
	return c.list(ctx, v3, "is-the-market-open", RecordsShape)
}

// CompanyCoreInformation returns the CIK, exchange, SIC code, addresses and
// other registration data.
func (c *Client) CompanyCoreInformation(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.bySymbolQuery(ctx, v4, "company-core-information", symbol, shape)
}

// Stock prices.

// Quote returns the real time quotes for the symbols.
func (c *Client) Quote(ctx context.Context, symbols Symbols, shape Shape) (*Result, error) {
	return c.bySymbols(ctx, v3, "quote", symbols, shape)
}

// OTCQuote returns the real time prices of OTC symbols.
func (c *Client) OTCQuote(ctx context.Context, symbols Symbols, shape Shape) (*Result, error) {
	return c.bySymbols(ctx, v3, "otc/real-time-price", symbols, shape)
}

// HistoricalPriceInterval returns the daily prices of the symbol in the date
// range. A zero r.To means today. When the API has no data for the range, the
// result is empty.
func (c *Client) HistoricalPriceInterval(ctx context.Context, symbol string, r DateRange, shape Shape) (*Result, error) {
	req, err := symbolPath(v3, "historical-price-full", symbol)
	if err != nil {
		return nil, err
	}
	to := r.To
	if to.IsZero() {
		to = c.today()
	}
	req.SetDate("from", r.From).SetDate("to", to)
	return c.fetchField(ctx, req, "historical", shape)
}

// HistoricalPriceFull returns all the daily prices of the symbol.
func (c *Client) HistoricalPriceFull(ctx context.Context, symbol string, shape Shape) (*Result, error) {
	return c.HistoricalPriceInterval(ctx, symbol, DateRange{From: EarliestDate}, shape)
}

// Stock lists.

// SymbolsList lists all the available symbols with their names, exchanges and
// prices.
func (c *Client) SymbolsList(ctx context.Context, shape Shape) (*Result, error) {
	return c.list(ctx, v3, "stock/list", shape)
}

// TradableSymbolsList lists the symbols which are currently traded.
func (c *Client) TradableSymbolsList(ctx context.Context, shape Shape) (*Result, error) {
	return c.list(ctx, v3, "available-traded/list", shape)
}

// ETFList lists all the ETF symbols.
func (c *Client) ETFList(ctx context.Context, shape Shape) (*Result, error) {
	return c.list(ctx, v3, "etf/list", shape)
}

// Bulk and batch.

// BatchQuotePrices returns the quotes of several symbols in one call.
func (c *Client) BatchQuotePrices(ctx context.Context, symbols Symbols, shape Shape) (*Result, error) {
	return c.Quote(ctx, symbols, shape)
}

// BatchEndOfDayPrices returns the end of day prices of all the symbols on the
// date. The API sends CSV, so the result is always a table.
func (c *Client) BatchEndOfDayPrices(ctx context.Context, date time.Time) (*Result, error) {
	if date.IsZero() {
		return nil, newError(InvalidArgument, "date is required")
	}
	r := newRequest(v4, "batch-request-end-of-day-prices").SetDate("date", date)
	return c.fetch(ctx, r, CSVFormat, TableShape)
}

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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fmp/fmp"
	"github.com/stockparfait/fmp/table"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	Config   string // optional TOML config file
	EnvFile  string // optional .env file with FMP_API_KEY
	LogLevel logging.Level
	CSV      bool   // dump CSV format; default: text.
	Records  bool   // print JSON records instead of a table
	Describe string // print summary statistics of this column instead
	// Exactly one of the following must be present.
	Income     string
	Balance    string
	CashFlow   string
	Profile    string // comma-separated symbols
	Quote      string // comma-separated symbols
	History    string
	EOD        string // date of the batch end of day prices
	MarketOpen bool
	Symbols    bool
	ETFs       bool
	// Modifiers.
	Period string
	Limit  int
	From   string
	To     string
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("fmp", flag.ExitOnError)
	fs.StringVar(&flags.Config, "conf", "", "TOML config file with the API key")
	fs.StringVar(&flags.EnvFile, "env", ".env", "file with environment variables, if present")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.BoolVar(&flags.Records, "records", false, "print JSON records instead of a table")
	fs.StringVar(&flags.Describe, "describe", "", "print statistics of this column")
	fs.StringVar(&flags.Income, "income", "", "income statements of a symbol")
	fs.StringVar(&flags.Balance, "balance", "", "balance sheets of a symbol")
	fs.StringVar(&flags.CashFlow, "cashflow", "", "cash flow statements of a symbol")
	fs.StringVar(&flags.Profile, "profile", "", "company profiles of comma-separated symbols")
	fs.StringVar(&flags.Quote, "quote", "", "quotes of comma-separated symbols")
	fs.StringVar(&flags.History, "history", "", "daily price history of a symbol")
	fs.StringVar(&flags.EOD, "eod", "", "end of day prices of all symbols on YYYY-MM-DD")
	fs.BoolVar(&flags.MarketOpen, "market-open", false, "whether the market is open")
	fs.BoolVar(&flags.Symbols, "symbols", false, "list all symbols")
	fs.BoolVar(&flags.ETFs, "etfs", false, "list all ETFs")
	fs.StringVar(&flags.Period, "period", "", "statement period: annual or quarter")
	fs.IntVar(&flags.Limit, "limit", 0, "max. number of statements")
	fs.StringVar(&flags.From, "from", "", "start date of -history, YYYY-MM-DD")
	fs.StringVar(&flags.To, "to", "", "end date of -history, YYYY-MM-DD; default: today")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	kinds := 0
	for _, s := range []string{flags.Income, flags.Balance, flags.CashFlow,
		flags.Profile, flags.Quote, flags.History, flags.EOD} {
		if s != "" {
			kinds++
		}
	}
	for _, b := range []bool{flags.MarketOpen, flags.Symbols, flags.ETFs} {
		if b {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.Reason("expected exactly one of -income, -balance, " +
			"-cashflow, -profile, -quote, -history, -eod, -market-open, -symbols or -etfs")
	}
	switch fmp.Period(flags.Period) {
	case "", fmp.Annual, fmp.Quarter:
	default:
		return nil, errors.Reason("-period must be annual or quarter, got '%s'", flags.Period)
	}
	if flags.Records && flags.Describe != "" {
		return nil, errors.Reason("-records and -describe are mutually exclusive")
	}
	if flags.Records && flags.CSV {
		return nil, errors.Reason("-records and -csv are mutually exclusive")
	}
	return &flags, nil
}

type Config struct {
	Key     string `toml:"key"`      // user key for the FMP API
	BaseURL string `toml:"base_url"` // default: fmp.DefaultURL
}

func parseConfig(filePath string) (*Config, error) {
	var c Config
	if filePath == "" {
		return &c, nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	return &c, nil
}

// newClient creates the API client from the config file and the environment.
// The key in the config file takes precedence over FMP_API_KEY.
func newClient(ctx context.Context, flags *Flags) (*fmp.Client, error) {
	if flags.EnvFile != "" {
		if _, err := os.Stat(flags.EnvFile); err == nil {
			if err := godotenv.Load(flags.EnvFile); err != nil {
				return nil, errors.Annotate(err, "failed to load %s", flags.EnvFile)
			}
			logging.Debugf(ctx, "loaded environment from %s", flags.EnvFile)
		}
	}
	config, err := parseConfig(flags.Config)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse config")
	}
	c := fmp.NewClient(config.Key)
	if config.BaseURL != "" {
		c = c.WithBaseURL(config.BaseURL)
	}
	return c, nil
}

func splitSymbols(s string) []string {
	var res []string
	for _, sym := range strings.Split(s, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			res = append(res, sym)
		}
	}
	return res
}

type indexedResult struct {
	Index  int
	Result *fmp.Result
	Err    error
}

// profiles fetches the company profiles in parallel and merges them in the
// order of the symbols.
func profiles(ctx context.Context, c *fmp.Client, symbols []string, shape fmp.Shape) (*fmp.Result, error) {
	indices := make([]int, len(symbols))
	for i := range indices {
		indices[i] = i
	}
	f := func(i int) indexedResult {
		res, err := c.CompanyProfile(ctx, symbols[i], shape)
		return indexedResult{Index: i, Result: res, Err: err}
	}
	// Results arrive in the order the jobs finish.
	results := iterator.ParallelMapSlice(ctx, 2*runtime.NumCPU(), indices, f)
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	if shape == fmp.TableShape {
		tables := make([]*table.Table, len(results))
		for i, r := range results {
			if r.Err != nil {
				return nil, errors.Annotate(r.Err, "failed to fetch profile of %s", symbols[r.Index])
			}
			tables[i] = r.Result.Table
		}
		return &fmp.Result{Shape: shape, Table: table.Merge(tables...)}, nil
	}
	records := []fmp.Value{}
	for _, r := range results {
		if r.Err != nil {
			return nil, errors.Annotate(r.Err, "failed to fetch profile of %s", symbols[r.Index])
		}
		if list, ok := r.Result.Records.([]fmp.Value); ok {
			records = append(records, list...)
		} else {
			records = append(records, r.Result.Records)
		}
	}
	return &fmp.Result{Shape: shape, Records: records}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return fmp.ParseDate(s)
}

func fetchData(ctx context.Context, c *fmp.Client, flags *Flags) (*fmp.Result, error) {
	shape := fmp.TableShape
	if flags.Records {
		shape = fmp.RecordsShape
	}
	p := fmp.StatementParams{Period: fmp.Period(flags.Period), Limit: flags.Limit}
	switch {
	case flags.Income != "":
		return c.IncomeStatement(ctx, flags.Income, p, shape)
	case flags.Balance != "":
		return c.BalanceSheetStatement(ctx, flags.Balance, p, shape)
	case flags.CashFlow != "":
		return c.CashFlowStatement(ctx, flags.CashFlow, p, shape)
	case flags.Profile != "":
		return profiles(ctx, c, splitSymbols(flags.Profile), shape)
	case flags.Quote != "":
		return c.Quote(ctx, fmp.SymbolList(splitSymbols(flags.Quote)...), shape)
	case flags.History != "":
		from, err := parseDate(flags.From)
		if err != nil {
			return nil, errors.Annotate(err, "invalid -from")
		}
		to, err := parseDate(flags.To)
		if err != nil {
			return nil, errors.Annotate(err, "invalid -to")
		}
		return c.HistoricalPriceInterval(ctx, flags.History, fmp.DateRange{From: from, To: to}, shape)
	case flags.EOD != "":
		if flags.Records {
			return nil, errors.Reason("-eod is only available as a table")
		}
		date, err := fmp.ParseDate(flags.EOD)
		if err != nil {
			return nil, errors.Annotate(err, "invalid -eod")
		}
		return c.BatchEndOfDayPrices(ctx, date)
	case flags.MarketOpen:
		res, err := c.IsTheMarketOpen(ctx)
		if err != nil || shape == fmp.RecordsShape {
			return res, err
		}
		return marketOpenTable(res)
	case flags.Symbols:
		return c.SymbolsList(ctx, shape)
	case flags.ETFs:
		return c.ETFList(ctx, shape)
	}
	return nil, errors.Reason("nothing to fetch")
}

// marketOpenTable converts the top-level scalar fields of the market state into
// a two-column table. Nested fields, such as holidays, are skipped.
func marketOpenTable(res *fmp.Result) (*fmp.Result, error) {
	m, ok := res.Records.(map[string]fmp.Value)
	if !ok {
		return nil, errors.Reason("unexpected market state type: %T", res.Records)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tbl := table.NewTable("Field", "Value")
	for _, k := range keys {
		switch m[k].(type) {
		case map[string]fmp.Value, []fmp.Value:
			continue
		}
		tbl.AddRow(table.Row{k, m[k]})
	}
	return &fmp.Result{Shape: fmp.TableShape, Table: tbl}, nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	c, err := newClient(ctx, flags)
	if err != nil {
		return errors.Annotate(err, "failed to create client")
	}
	res, err := fetchData(ctx, c, flags)
	if err != nil {
		return errors.Annotate(err, "failed to fetch data")
	}
	logging.Infof(ctx, "fetched %d rows", res.Len())
	if res.Shape == fmp.RecordsShape {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Records); err != nil {
			return errors.Annotate(err, "failed to print JSON")
		}
		return nil
	}
	tbl := res.Table
	if flags.Describe != "" {
		s, err := tbl.Describe(flags.Describe)
		if err != nil {
			return errors.Annotate(err, "failed to describe '%s'", flags.Describe)
		}
		tbl = s.Table()
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{MaxColWidth: 40}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printData(ctx, flags, os.Stdout); err != nil {
		if fmp.IsKind(err, fmp.RateLimited) {
			logging.Errorf(ctx, "FMP rate limit exceeded, try again later")
		}
		logging.Errorf(ctx, "%s", err.Error())
		os.Exit(1)
	}
}

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
	"strings"
)

type symbolsKind int

const (
	noSymbols symbolsKind = iota
	oneSymbol
	symbolList
)

// Symbols is the argument of multi-symbol endpoints: either a single
// identifier, possibly already comma-separated, or an ordered list of
// identifiers. The zero value is invalid.
type Symbols struct {
	kind symbolsKind
	one  string
	list []string
}

// Symbol creates Symbols with a single identifier.
func Symbol(s string) Symbols {
	return Symbols{kind: oneSymbol, one: s}
}

// SymbolList creates Symbols from an ordered list of identifiers.
func SymbolList(symbols ...string) Symbols {
	list := make([]string, len(symbols))
	copy(list, symbols)
	return Symbols{kind: symbolList, list: list}
}

// Join returns the identifiers as a single comma-separated path segment,
// preserving the order.
func (s Symbols) Join() (string, error) {
	switch s.kind {
	case oneSymbol:
		if s.one == "" {
			return "", newError(InvalidArgument, "empty symbol")
		}
		return s.one, nil
	case symbolList:
		if len(s.list) == 0 {
			return "", newError(InvalidArgument, "empty symbol list")
		}
		for i, sym := range s.list {
			if sym == "" {
				return "", newError(InvalidArgument, "empty symbol at index %d", i)
			}
		}
		return strings.Join(s.list, ","), nil
	}
	return "", newError(InvalidArgument, "symbols are neither a symbol nor a list")
}

// String implements fmt.Stringer.
func (s Symbols) String() string {
	j, err := s.Join()
	if err != nil {
		return "<invalid>"
	}
	return j
}

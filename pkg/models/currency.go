// Package models defines the core data structures shared by the fxdash
// packages and exposed over the API.
package models

import (
	"sort"
	"strings"
	"time"
)

// ReferenceCurrency is the quote currency every rate is expressed in.
const ReferenceCurrency = "BRL"

// Currency describes a currency the dashboard knows how to fetch.
type Currency struct {
	Code   string `json:"code"`   // e.g., "USD"
	Name   string `json:"name"`   // e.g., "Dólar Americano"
	Symbol string `json:"symbol"` // e.g., "US$"
}

// supported is the catalog of currencies with an upstream series.
var supported = map[string]Currency{
	"USD": {Code: "USD", Name: "Dólar Americano", Symbol: "US$"},
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€"},
	"GBP": {Code: "GBP", Name: "Libra Esterlina", Symbol: "£"},
	"JPY": {Code: "JPY", Name: "Iene Japonês", Symbol: "¥"},
	"BRL": {Code: "BRL", Name: "Real Brasileiro", Symbol: "R$"},
}

// DefaultSelection is the currency set used when a request names none.
var DefaultSelection = []string{"USD", "EUR", "BRL"}

// SupportedCurrencies returns the catalog sorted by code.
func SupportedCurrencies() []Currency {
	out := make([]Currency, 0, len(supported))
	for _, c := range supported {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// LookupCurrency resolves a code case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := supported[NormalizeCode(code)]
	return c, ok
}

// IsSupported reports whether code is in the catalog.
func IsSupported(code string) bool {
	_, ok := LookupCurrency(code)
	return ok
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RatePoint is one observation: units of the reference currency per unit
// of Currency on Date.
type RatePoint struct {
	Date     time.Time `json:"date"`
	Currency string    `json:"currency"`
	Rate     float64   `json:"rate"`
}

// Quote is the latest known rate for a currency against the reference.
type Quote struct {
	Currency  string    `json:"currency"`
	Name      string    `json:"name,omitempty"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	ChangePct float64   `json:"change_pct"`
	Timestamp time.Time `json:"timestamp"`
	Available bool      `json:"available"` // false when the upstream had nothing
}

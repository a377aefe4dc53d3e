package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMetricsRecordJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(MetricsRecord{CurrentValue: 5.1, DataPoints: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, key := range []string{"current_value", "change_7d", "change_30d", "change_90d", "volatility", "data_points"} {
		if !strings.Contains(s, `"`+key+`"`) {
			t.Errorf("missing key %q in %s", key, s)
		}
	}
}

func TestCorrelationMatrixAt(t *testing.T) {
	m := &CorrelationMatrix{
		Currencies: []string{"EUR", "USD"},
		Values:     [][]float64{{1, 0.8}, {0.8, 1}},
	}

	if v, ok := m.At("USD", "EUR"); !ok || v != 0.8 {
		t.Errorf("At(USD, EUR): got %v, %v", v, ok)
	}
	if v, ok := m.At("EUR", "EUR"); !ok || v != 1 {
		t.Errorf("At(EUR, EUR): got %v, %v", v, ok)
	}
	if _, ok := m.At("USD", "GBP"); ok {
		t.Error("At(USD, GBP) should be absent")
	}

	var nilMatrix *CorrelationMatrix
	if _, ok := nilMatrix.At("USD", "EUR"); ok {
		t.Error("nil matrix should report absent")
	}
}

func TestLookupCurrency(t *testing.T) {
	tests := []struct {
		in     string
		code   string
		symbol string
		ok     bool
	}{
		{"usd", "USD", "US$", true},
		{" EUR ", "EUR", "€", true},
		{"jpy", "JPY", "¥", true},
		{"BRL", "BRL", "R$", true},
		{"XYZ", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := LookupCurrency(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if c.Code != tt.code || c.Symbol != tt.symbol {
				t.Errorf("got %+v", c)
			}
		})
	}
}

func TestSupportedCurrenciesSorted(t *testing.T) {
	list := SupportedCurrencies()
	if len(list) != 5 {
		t.Fatalf("got %d currencies, want 5", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Code >= list[i].Code {
			t.Errorf("not sorted at %d: %s >= %s", i, list[i-1].Code, list[i].Code)
		}
	}
	for _, code := range DefaultSelection {
		if !IsSupported(code) {
			t.Errorf("default selection %s is not supported", code)
		}
	}
}

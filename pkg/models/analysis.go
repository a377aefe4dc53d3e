package models

// MetricsRecord holds the descriptive statistics of one currency's series.
// Change fields are percentages; Volatility is annualized and in percent.
type MetricsRecord struct {
	CurrentValue float64 `json:"current_value"`
	Change7d     float64 `json:"change_7d"`
	Change30d    float64 `json:"change_30d"`
	Change90d    float64 `json:"change_90d"`
	Volatility   float64 `json:"volatility"`
	DataPoints   int     `json:"data_points"`
}

// CorrelationMatrix is a square Pearson matrix. Values[i][j] is the
// correlation between Currencies[i] and Currencies[j].
type CorrelationMatrix struct {
	Currencies []string    `json:"currencies"`
	Values     [][]float64 `json:"values"`
}

// At returns the coefficient for the pair (a, b).
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	i, j := -1, -1
	for k, c := range m.Currencies {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// VolatilityRank is one entry of the volatility ranking.
type VolatilityRank struct {
	Currency   string  `json:"currency"`
	Volatility float64 `json:"volatility"`
}

// Conversion is the result of the quick converter.
type Conversion struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Rate      string `json:"rate"`
	Converted string `json:"converted"`
	Formatted string `json:"formatted"`
}

package dashboard

import (
	"strconv"
	"strings"
)

// DefaultPeriodDays is used when a period label is empty or unknown.
const DefaultPeriodDays = 90

// Period is a selectable lookback window.
type Period struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Days  int    `json:"days"`
}

var periods = []Period{
	{Label: "7d", Name: "7 dias", Days: 7},
	{Label: "30d", Name: "30 dias", Days: 30},
	{Label: "90d", Name: "90 dias", Days: 90},
	{Label: "6m", Name: "6 meses", Days: 180},
}

// Periods returns the selectable windows, shortest first.
func Periods() []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	return out
}

// ParsePeriod maps a label ("30d", "30 dias", "6m", "180d", "6 meses") or a
// plain day count to a number of days. Unknown labels fall back to
// DefaultPeriodDays.
func ParsePeriod(label string) int {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return DefaultPeriodDays
	}
	for _, p := range periods {
		if s == p.Label || s == p.Name {
			return p.Days
		}
	}
	s = strings.TrimSuffix(s, "d")
	if n, err := strconv.Atoi(s); err == nil {
		for _, p := range periods {
			if n == p.Days {
				return p.Days
			}
		}
	}
	return DefaultPeriodDays
}

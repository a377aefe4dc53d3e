// Package datasource fetches exchange-rate series and quotes from the
// upstream HTTP API. It defines a Source interface, the AwesomeAPI
// implementation and a Fetcher that fans requests out concurrently behind
// injected TTL caches.
package datasource

import (
	"context"
	"errors"

	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
)

// Source is an upstream provider of rates against the reference currency.
type Source interface {
	// Name returns the human-readable name of this source.
	Name() string

	// GetDaily returns up to days daily observations for code, oldest first.
	GetDaily(ctx context.Context, code string, days int) (series.Series, error)

	// GetLatest returns the most recent quote for code.
	GetLatest(ctx context.Context, code string) (models.Quote, error)
}

// --- Sentinel errors ---

// ErrNoData is returned when a payload decodes to zero usable records.
var ErrNoData = errors.New("upstream returned no usable records")

// ErrInvalidWindow is returned for a non-positive lookback.
var ErrInvalidWindow = errors.New("lookback window must be positive")

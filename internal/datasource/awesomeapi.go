package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seenimoa/fxdash/internal/infra"
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// AwesomeAPI implements Source using economia.awesomeapi.com.br.
type AwesomeAPI struct {
	baseURL   string
	reference string
	apiKey    string
	client    *http.Client
	limiter   *infra.RateLimiter
}

// AwesomeAPIOptions configures an AwesomeAPI client.
type AwesomeAPIOptions struct {
	BaseURL    string
	Reference  string // quote currency, e.g. "BRL"
	APIKey     string // optional
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
}

// NewAwesomeAPI creates a new AwesomeAPI source.
func NewAwesomeAPI(opts AwesomeAPIOptions) *AwesomeAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://economia.awesomeapi.com.br"
	}
	if opts.Reference == "" {
		opts.Reference = models.ReferenceCurrency
	}
	return &AwesomeAPI{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		reference: strings.ToUpper(opts.Reference),
		apiKey:    opts.APIKey,
		client:    infra.NewHTTPClient(opts.Timeout),
		limiter:   infra.NewRateLimiter(opts.RatePerSec, opts.Burst),
	}
}

// Name returns the data source name.
func (a *AwesomeAPI) Name() string { return "AwesomeAPI" }

// --- AwesomeAPI payload types ---

// flexString accepts both JSON strings and numbers; the API is not
// consistent about which one it sends.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type awDailyRecord struct {
	Bid       flexString `json:"bid"`
	Timestamp flexString `json:"timestamp"`
}

type awQuote struct {
	Code       string     `json:"code"`
	CodeIn     string     `json:"codein"`
	Name       string     `json:"name"`
	High       flexString `json:"high"`
	Low        flexString `json:"low"`
	Bid        flexString `json:"bid"`
	Ask        flexString `json:"ask"`
	PctChange  flexString `json:"pctChange"`
	Timestamp  flexString `json:"timestamp"`
	CreateDate string     `json:"create_date"`
}

// --- Public methods ---

// GetDaily returns the daily bid series for code over the last days.
// Records with an unparseable bid or timestamp are dropped.
func (a *AwesomeAPI) GetDaily(ctx context.Context, code string, days int) (series.Series, error) {
	if days <= 0 {
		return nil, ErrInvalidWindow
	}
	code = models.NormalizeCode(code)
	url := fmt.Sprintf("%s/json/daily/%s-%s/%d", a.baseURL, code, a.reference, days)

	var records []awDailyRecord
	if err := a.getJSON(ctx, url, &records); err != nil {
		return nil, fmt.Errorf("daily %s: %w", code, err)
	}

	points := make([]models.RatePoint, 0, len(records))
	for _, r := range records {
		bid, ok := series.ParseValue(string(r.Bid))
		if !ok {
			continue
		}
		ts, err := utils.ParseUnixSeconds(string(r.Timestamp))
		if err != nil {
			continue
		}
		points = append(points, models.RatePoint{Date: ts, Currency: code, Rate: bid})
	}
	out := series.FromRatePoints(points)[code]
	if len(out) == 0 {
		return nil, fmt.Errorf("daily %s: %w", code, ErrNoData)
	}
	return out, nil
}

// GetLatest returns the current quote for code.
func (a *AwesomeAPI) GetLatest(ctx context.Context, code string) (models.Quote, error) {
	code = models.NormalizeCode(code)
	url := fmt.Sprintf("%s/json/last/%s-%s", a.baseURL, code, a.reference)

	var payload map[string]awQuote
	if err := a.getJSON(ctx, url, &payload); err != nil {
		return models.Quote{}, fmt.Errorf("last %s: %w", code, err)
	}

	raw, ok := payload[code+a.reference]
	if !ok {
		return models.Quote{}, fmt.Errorf("last %s: %w", code, ErrNoData)
	}
	bid, ok := series.ParseValue(string(raw.Bid))
	if !ok {
		return models.Quote{}, fmt.Errorf("last %s: bid %q: %w", code, raw.Bid, ErrNoData)
	}

	q := models.Quote{
		Currency:  code,
		Name:      raw.Name,
		Bid:       bid,
		Available: true,
	}
	q.Ask, _ = series.ParseValue(string(raw.Ask))
	q.High, _ = series.ParseValue(string(raw.High))
	q.Low, _ = series.ParseValue(string(raw.Low))
	q.ChangePct, _ = series.ParseValue(string(raw.PctChange))
	if ts, err := utils.ParseUnixSeconds(string(raw.Timestamp)); err == nil {
		q.Timestamp = ts
	}
	return q, nil
}

func (a *AwesomeAPI) getJSON(ctx context.Context, url string, v any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	var headers map[string]string
	if a.apiKey != "" {
		headers = map[string]string{"x-api-key": a.apiKey}
	}
	return infra.GetJSON(ctx, a.client, url, headers, v)
}

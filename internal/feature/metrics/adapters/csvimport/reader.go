package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"altdata_backend/internal/feature/metrics/domain/entity"
	"altdata_backend/internal/feature/metrics/usecase"
)

// columnMetrics maps vendor export headers to stored metrics. Other columns are ignored.
var columnMetrics = map[string]entity.Metric{
	"financials_price":     entity.MetricPrice,
	"job_posts":            entity.MetricJobPosts,
	"reddit_mentions":      entity.MetricRedditMentions,
	"twitter_mentions":     entity.MetricTwitterMentions,
	"reddit_sentiment":     entity.MetricRedditSentiment,
	"twitter_followers":    entity.MetricTwitterFollowers,
	"employees_linkedin":   entity.MetricEmployeesLinkedin,
	"ai_scores_employment": entity.MetricAIScoreEmployment,
	"ai_scores_score":      entity.MetricAIScoreOverall,
	"stocktwits_sentiment": entity.MetricStocktwitsSentiment,
	"news_mentions":        entity.MetricNewsMentions,
}

// countMetrics are whole-number columns; values are rounded.
var countMetrics = map[entity.Metric]bool{
	entity.MetricJobPosts:          true,
	entity.MetricRedditMentions:    true,
	entity.MetricTwitterMentions:   true,
	entity.MetricTwitterFollowers:  true,
	entity.MetricEmployeesLinkedin: true,
	entity.MetricNewsMentions:      true,
}

// scoreCeiling caps sentiment and score values.
const scoreCeiling = 99.999999

var scoreMetrics = map[entity.Metric]bool{
	entity.MetricRedditSentiment:     true,
	entity.MetricStocktwitsSentiment: true,
	entity.MetricAIScoreOverall:      true,
	entity.MetricAIScoreEmployment:   true,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
}

// Reader は Config.Directory 配下の <TICKER>.csv を読み込みます。
type Reader struct {
	dir string
}

var _ usecase.AltDataSource = (*Reader)(nil)

// NewReader は新しいReaderを生成します。
func NewReader(cfg Config) *Reader {
	return &Reader{dir: cfg.Directory}
}

// ReadTicker reads <dir>/<ticker>.csv. A missing file yields usecase.ErrNoSource.
func (r *Reader) ReadTicker(ctx context.Context, ticker entity.Ticker) ([]entity.MetricRow, error) {
	path := filepath.Join(r.dir, string(ticker)+".csv")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, usecase.ErrNoSource)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := Parse(f, ticker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Parse reads one ticker's export. The header must contain a date column.
// Cells that are blank or not numeric become nil. A date that appears
// more than once keeps its last row.
func Parse(r io.Reader, ticker entity.Ticker) ([]entity.MetricRow, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}

	dateIdx := -1
	cols := map[int]entity.Metric{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "date" {
			dateIdx = i
			continue
		}
		if m, ok := columnMetrics[h]; ok {
			cols[i] = m
		}
	}
	if dateIdx < 0 {
		return nil, errors.New("missing date column")
	}

	var out []entity.MetricRow
	byDate := map[time.Time]int{}
	dups := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if dateIdx >= len(rec) {
			return nil, fmt.Errorf("line %d: missing date", line)
		}
		date, err := parseDate(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := entity.MetricRow{Ticker: ticker, Date: date, Values: make(map[entity.Metric]*float64, len(cols))}
		for i, m := range cols {
			var cell string
			if i < len(rec) {
				cell = rec[i]
			}
			row.Values[m] = coerce(m, cell)
		}

		if at, ok := byDate[date]; ok {
			out[at] = row
			dups++
			continue
		}
		byDate[date] = len(out)
		out = append(out, row)
	}
	if dups > 0 {
		slog.Warn("duplicate dates in alternative data, kept the last row", "ticker", ticker, "duplicates", dups)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// coerce converts a cell to the stored value of metric m, or nil when it has none.
func coerce(m entity.Metric, cell string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if countMetrics[m] {
		v = math.Round(v)
	}
	if scoreMetrics[m] && v > scoreCeiling {
		v = scoreCeiling
	}
	return &v
}

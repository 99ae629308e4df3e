// Package usecase は相関計算・複数銘柄比較・指標ディスカバリーを実装します。
package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"altdata_backend/internal/feature/correlation/domain/entity"
	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// MaxCompareTickers は一度に比較できる銘柄数の上限です。
const MaxCompareTickers = 3

// SeriesRepository は銘柄ごとの2指標の時系列を取得するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SeriesRepository interface {
	FindSeries(ctx context.Context, ticker metrics.Ticker, metricX, metricY metrics.Metric, rng metrics.DateRange) ([]metrics.Sample, error)
}

// CorrelationQuery は単一銘柄の相関リクエストです。文字列は未検証のまま受け取ります。
type CorrelationQuery struct {
	Ticker  string
	MetricX string
	MetricY string
	Range   metrics.DateRange
}

// CompareQuery は複数銘柄比較のリクエストです。
type CompareQuery struct {
	Tickers []string
	MetricX string
	MetricY string
	Range   metrics.DateRange
}

// DiscoverQuery は指標ディスカバリーのリクエストです。
type DiscoverQuery struct {
	Ticker string
	Range  metrics.DateRange
}

// CorrelationUsecase は時系列の取得から相関係数の計算までを担います。
type CorrelationUsecase struct {
	repo SeriesRepository
}

// NewCorrelationUsecase は新しい CorrelationUsecase を作成します。
func NewCorrelationUsecase(repo SeriesRepository) *CorrelationUsecase {
	return &CorrelationUsecase{repo: repo}
}

// Align はどちらかの値が欠損している行を除き、日付順を保ったまま Point に変換します。
func Align(samples []metrics.Sample) []entity.Point {
	out := make([]entity.Point, 0, len(samples))
	for _, s := range samples {
		if s.X == nil || s.Y == nil {
			continue
		}
		out = append(out, entity.Point{Date: s.Date, X: *s.X, Y: *s.Y})
	}
	return out
}

// fetchAligned は時系列を取得して欠損行を除きます。
// 取得失敗・0行・有効行2未満をそれぞれ別のエラーとして返します。
func (uc *CorrelationUsecase) fetchAligned(ctx context.Context, ticker metrics.Ticker, x, y metrics.Metric, rng metrics.DateRange) ([]entity.Point, error) {
	samples, err := uc.repo.FindSeries(ctx, ticker, x, y, rng)
	if err != nil {
		return nil, &RetrievalError{Ticker: ticker, Err: err}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, ticker)
	}
	pts := Align(samples)
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: %s has %d valid rows", ErrInsufficientData, ticker, len(pts))
	}
	return pts, nil
}

// compute は丸めた結果と、丸める前の係数を返します。
func (uc *CorrelationUsecase) compute(ctx context.Context, ticker metrics.Ticker, x, y metrics.Metric, rng metrics.DateRange) (entity.CorrelationResult, float64, error) {
	pts, err := uc.fetchAligned(ctx, ticker, x, y, rng)
	if err != nil {
		return entity.CorrelationResult{}, 0, err
	}
	r, err := pearsonPoints(pts)
	if err != nil {
		return entity.CorrelationResult{}, 0, err
	}
	rounded := round4(r)
	return entity.CorrelationResult{
		Ticker:      ticker,
		MetricX:     x,
		MetricY:     y,
		Coefficient: rounded,
		DataPoints:  len(pts),
		Label:       entity.ChartLabelFor(rounded),
		Series:      pts,
	}, r, nil
}

// Correlate は1銘柄について metricX と metricY の相関を計算します。
func (uc *CorrelationUsecase) Correlate(ctx context.Context, q CorrelationQuery) (entity.CorrelationResult, error) {
	if q.Ticker == "" || q.MetricX == "" || q.MetricY == "" {
		return entity.CorrelationResult{}, fmt.Errorf("%w: ticker, metricX, metricY", ErrMissingFields)
	}
	ticker, err := parseTicker(q.Ticker)
	if err != nil {
		return entity.CorrelationResult{}, err
	}
	x, y, err := parseMetrics(q.MetricX, q.MetricY)
	if err != nil {
		return entity.CorrelationResult{}, err
	}
	if err := validateRange(q.Range); err != nil {
		return entity.CorrelationResult{}, err
	}

	res, _, err := uc.compute(ctx, ticker, x, y, q.Range)
	return res, err
}

// Compare は1〜3銘柄を並行して計算し、銘柄名の昇順で返します。
// いずれかの銘柄が失敗した場合は、全ての取得が終わるのを待ってから最初のエラーを返します。
func (uc *CorrelationUsecase) Compare(ctx context.Context, q CompareQuery) ([]entity.CorrelationResult, error) {
	if len(q.Tickers) == 0 || q.MetricX == "" || q.MetricY == "" {
		return nil, fmt.Errorf("%w: tickers, metricX, metricY", ErrMissingFields)
	}
	if len(q.Tickers) > MaxCompareTickers {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyTickers, len(q.Tickers))
	}
	tickers := make([]metrics.Ticker, 0, len(q.Tickers))
	for _, s := range q.Tickers {
		t, err := parseTicker(s)
		if err != nil {
			return nil, err
		}
		if slices.Contains(tickers, t) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicker, t)
		}
		tickers = append(tickers, t)
	}
	x, y, err := parseMetrics(q.MetricX, q.MetricY)
	if err != nil {
		return nil, err
	}
	if err := validateRange(q.Range); err != nil {
		return nil, err
	}

	results := make([]entity.CorrelationResult, len(tickers))
	// WithContext を使わないため、1件失敗しても他の取得はキャンセルされない。
	var g errgroup.Group
	for i, t := range tickers {
		g.Go(func() error {
			res, _, err := uc.compute(ctx, t, x, y, q.Range)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b entity.CorrelationResult) int {
		return strings.Compare(string(a.Ticker), string(b.Ticker))
	})
	return results, nil
}

// Discover は価格以外の全候補指標と価格との相関を並行して計算し、|r| の降順に並べます。
// 失敗した指標は除外します。1位の系列は最初の計算で得たものをそのまま使います。
func (uc *CorrelationUsecase) Discover(ctx context.Context, q DiscoverQuery) (entity.DiscoveryResult, error) {
	if q.Ticker == "" {
		return entity.DiscoveryResult{}, fmt.Errorf("%w: ticker", ErrMissingFields)
	}
	ticker, err := parseTicker(q.Ticker)
	if err != nil {
		return entity.DiscoveryResult{}, err
	}
	if err := validateRange(q.Range); err != nil {
		return entity.DiscoveryResult{}, err
	}

	type outcome struct {
		res entity.CorrelationResult
		raw float64
		ok  bool
	}
	candidates := metrics.CandidateMetrics()
	outcomes := make([]outcome, len(candidates))

	var g errgroup.Group
	for i, m := range candidates {
		g.Go(func() error {
			res, raw, err := uc.compute(ctx, ticker, m, metrics.MetricPrice, q.Range)
			if err != nil {
				var re *RetrievalError
				if errors.As(err, &re) {
					slog.Error("discover: failed to fetch metric", "ticker", ticker, "metric", m, "error", err)
				} else {
					slog.Debug("discover: metric excluded", "ticker", ticker, "metric", m, "reason", err)
				}
				return nil
			}
			outcomes[i] = outcome{res: res, raw: raw, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.ok {
			kept = append(kept, o)
		}
	}
	if len(kept) == 0 {
		return entity.DiscoveryResult{}, fmt.Errorf("%w for %s", ErrNoValidCorrelations, ticker)
	}

	slices.SortStableFunc(kept, func(a, b outcome) int {
		return cmp.Compare(math.Abs(b.res.Coefficient), math.Abs(a.res.Coefficient))
	})

	entries := make([]entity.DiscoveryEntry, len(kept))
	for i, o := range kept {
		entries[i] = entity.DiscoveryEntry{
			Metric:      o.res.MetricX,
			Coefficient: o.res.Coefficient,
			DataPoints:  o.res.DataPoints,
			Strength:    entity.DiscoveryStrength(o.raw),
		}
	}
	top := kept[0].res
	return entity.DiscoveryResult{
		Ticker:  ticker,
		Entries: entries,
		Top: entity.TopResult{
			Metric:      top.MetricX,
			Coefficient: top.Coefficient,
			Series:      top.Series,
		},
	}, nil
}

func parseTicker(s string) (metrics.Ticker, error) {
	t, ok := metrics.ParseTicker(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, s)
	}
	return t, nil
}

func parseMetrics(xs, ys string) (metrics.Metric, metrics.Metric, error) {
	x, ok := metrics.ParseMetric(xs)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidMetric, xs)
	}
	y, ok := metrics.ParseMetric(ys)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidMetric, ys)
	}
	return x, y, nil
}

func validateRange(rng metrics.DateRange) error {
	if rng.Start != nil && rng.End != nil && rng.Start.After(*rng.End) {
		return ErrInvalidDateRange
	}
	return nil
}

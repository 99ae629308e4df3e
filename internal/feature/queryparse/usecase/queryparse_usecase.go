// Package usecase は自然文クエリの解釈結果を検証します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metrics "altdata_backend/internal/feature/metrics/domain/entity"
	"altdata_backend/internal/feature/queryparse/domain/entity"
)

// MaxTickers は1つのクエリで指定できる銘柄数の上限です。
const MaxTickers = 3

const dateLayout = "2006-01-02"

// ErrInterpreter はモデル呼び出し自体の失敗を表します。
var ErrInterpreter = errors.New("query interpretation failed")

// DefaultSuggestions はクエリを解釈できなかったときに返す例文です。
var DefaultSuggestions = []string{
	`Try: "Show correlation between job postings and price for AAPL"`,
	`Try: "Compare Reddit sentiment vs stock price for TSLA"`,
}

var metricSuggestions = []string{
	"Common metrics: price, job_posts, reddit_mentions, twitter_mentions",
	`Try: "Compare job postings and price for AAPL"`,
}

var tickerSuggestions = []string{
	"Make sure to specify a valid ticker symbol (AAPL, TSLA, etc.)",
	`Try: "Show AAPL job postings vs price"`,
}

// ValidationError はクライアントに返す検証エラーです。Suggestions は例文です。
type ValidationError struct {
	Message     string
	Suggestions []string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(suggestions []string, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Suggestions: suggestions}
}

// Interpreter は自然文を構造化クエリへ変換する外部サービスのインターフェースです。
// 出力を読み取れなかった場合は entity.Failed を返し、error は呼び出し自体の失敗にだけ使います。
type Interpreter interface {
	Interpret(ctx context.Context, text string) (entity.Interpretation, error)
}

// QueryParseUsecase は Interpreter を呼び出し、その結果を許可リストに照らして検証します。
type QueryParseUsecase struct {
	interpreter Interpreter
}

// NewQueryParseUsecase は新しい QueryParseUsecase を作成します。
func NewQueryParseUsecase(interpreter Interpreter) *QueryParseUsecase {
	return &QueryParseUsecase{interpreter: interpreter}
}

// Parse は自然文クエリを検証済みの ParsedQuery に変換します。
func (uc *QueryParseUsecase) Parse(ctx context.Context, text string) (entity.ParsedQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entity.ParsedQuery{}, invalid(DefaultSuggestions, "Query is required")
	}

	in, err := uc.interpreter.Interpret(ctx, text)
	if err != nil {
		return entity.ParsedQuery{}, fmt.Errorf("%w: %w", ErrInterpreter, err)
	}
	if in.Status != entity.StatusParsed {
		slog.Warn("interpreter output could not be decoded", "output", in.Raw)
		return entity.ParsedQuery{}, invalid(DefaultSuggestions, "Failed to parse query. Please try rephrasing.")
	}
	return Validate(in.Query)
}

// Validate は CandidateQuery を許可リストと日付形式で検証します。
// 指標は ID のほか "job postings" などの別名も受け付けます。
func Validate(q entity.CandidateQuery) (entity.ParsedQuery, error) {
	var out entity.ParsedQuery

	switch {
	case q.Ticker != "" && len(q.Tickers) > 0:
		return out, invalid(tickerSuggestions, "Specify either a single ticker or a list of tickers, not both")
	case q.Ticker != "":
		t, ok := metrics.ParseTicker(q.Ticker)
		if !ok {
			return out, invalid(tickerSuggestions, "Invalid ticker %q. Available: %s", q.Ticker, strings.Join(metrics.TickerStrings(), ", "))
		}
		out.Ticker = t
	case len(q.Tickers) > 0:
		if len(q.Tickers) > MaxTickers {
			return out, invalid([]string{`Try: "Compare job postings vs price for AAPL, MSFT and TSLA"`},
				"Up to %d tickers can be compared at once, got %d", MaxTickers, len(q.Tickers))
		}
		seen := make(map[metrics.Ticker]struct{}, len(q.Tickers))
		for _, s := range q.Tickers {
			t, ok := metrics.ParseTicker(s)
			if !ok {
				return out, invalid(tickerSuggestions, "Invalid ticker %q. Available: %s", s, strings.Join(metrics.TickerStrings(), ", "))
			}
			if _, dup := seen[t]; dup {
				return entity.ParsedQuery{}, invalid(tickerSuggestions, "Duplicate ticker %q. Each ticker can appear only once", t)
			}
			seen[t] = struct{}{}
			out.Tickers = append(out.Tickers, t)
		}
	default:
		return out, invalid(tickerSuggestions, "Invalid or missing ticker. Available: %s", strings.Join(metrics.TickerStrings(), ", "))
	}

	var err error
	if out.MetricX, err = validateMetric("metricX", q.MetricX); err != nil {
		return entity.ParsedQuery{}, err
	}
	if out.MetricY, err = validateMetric("metricY", q.MetricY); err != nil {
		return entity.ParsedQuery{}, err
	}

	if out.StartDate, err = validateDate("startDate", q.StartDate, `Try: "since 2024" or "from January 2024"`); err != nil {
		return entity.ParsedQuery{}, err
	}
	if out.EndDate, err = validateDate("endDate", q.EndDate, `Try: "until December 2024"`); err != nil {
		return entity.ParsedQuery{}, err
	}
	if out.StartDate != nil && out.EndDate != nil && out.StartDate.After(*out.EndDate) {
		return entity.ParsedQuery{}, invalid([]string{`Try: "from January 2024 to June 2024"`}, "startDate must not be after endDate")
	}

	out.Confidence = confidence(q.Confidence)
	return out, nil
}

func validateMetric(field, s string) (metrics.Metric, error) {
	m, ok := metrics.ResolveMetric(s)
	if !ok {
		return "", invalid(metricSuggestions, "Invalid %s: %q. Available metrics: %s", field, s, strings.Join(metrics.MetricStrings(), ", "))
	}
	return m, nil
}

// validateDate は YYYY-MM-DD 形式かつ実在する日付かを確認します。空文字は未指定として扱います。
func validateDate(field, s, suggestion string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, invalid([]string{suggestion}, "Invalid %s %q. Use YYYY-MM-DD", field, s)
	}
	return &t, nil
}

func confidence(s string) entity.Confidence {
	switch c := entity.Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case entity.ConfidenceHigh, entity.ConfidenceMedium, entity.ConfidenceLow:
		return c
	}
	return entity.ConfidenceMedium
}

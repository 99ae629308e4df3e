package usecase

import (
	"errors"
	"fmt"

	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// 入力エラー（400）
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrInvalidTicker    = errors.New("invalid ticker")
	ErrInvalidMetric    = errors.New("invalid metric")
	ErrTooManyTickers   = errors.New("between 1 and 3 tickers are required")
	ErrDuplicateTicker  = errors.New("duplicate ticker")
	ErrInvalidDateRange = errors.New("startDate must not be after endDate")
	ErrLengthMismatch   = errors.New("series lengths differ")
	ErrInsufficientData = errors.New("insufficient data points for correlation")
)

// 結果なし（404）
var (
	ErrNoData              = errors.New("no data found")
	ErrNoValidCorrelations = errors.New("no valid correlations found")
)

// RetrievalError はデータストアからの取得失敗を、対象の銘柄名とともに表します。
type RetrievalError struct {
	Ticker metrics.Ticker
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to fetch data for %s: %v", e.Ticker, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// IsInputError は err がクライアント入力の誤りかどうかを返します。
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrMissingFields, ErrInvalidTicker, ErrInvalidMetric,
		ErrTooManyTickers, ErrDuplicateTicker, ErrInvalidDateRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

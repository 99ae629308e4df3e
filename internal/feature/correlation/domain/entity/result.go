// Package entity はcorrelationフィーチャーのドメインモデルを定義します。
package entity

import (
	"math"
	"time"

	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// Point は日付で揃えられた1組の値です。X, Y ともに欠損はありません。
type Point struct {
	Date time.Time
	X    float64
	Y    float64
}

// CorrelationResult は1銘柄・2指標の相関計算結果です。
// Coefficient は小数点以下4桁に丸められています。
type CorrelationResult struct {
	Ticker      metrics.Ticker
	MetricX     metrics.Metric
	MetricY     metrics.Metric
	Coefficient float64
	DataPoints  int
	Label       ChartLabel
	Series      []Point
}

// DiscoveryEntry はディスカバリーのランキング1件分です。
type DiscoveryEntry struct {
	Metric      metrics.Metric
	Coefficient float64
	DataPoints  int
	Strength    Strength
}

// TopResult はランキング1位の指標と、そのまま描画できる系列です。
type TopResult struct {
	Metric      metrics.Metric
	Coefficient float64
	Series      []Point
}

// DiscoveryResult は1銘柄について、価格と各候補指標の相関を|r|の降順に並べたものです。
type DiscoveryResult struct {
	Ticker  metrics.Ticker
	Entries []DiscoveryEntry
	Top     TopResult
}

// Strength はディスカバリーで使う強度区分です。
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// DiscoveryStrength は |r| >= 0.7 を strong、|r| >= 0.4 を moderate とする区分です。
func DiscoveryStrength(r float64) Strength {
	a := math.Abs(r)
	switch {
	case a >= 0.7:
		return StrengthStrong
	case a >= 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// ChartLabel はチャートに表示する相関の説明文です。
type ChartLabel string

const (
	LabelStrongPositive   ChartLabel = "Strong positive"
	LabelModeratePositive ChartLabel = "Moderate positive"
	LabelWeak             ChartLabel = "Weak/no"
	LabelModerateNegative ChartLabel = "Moderate negative"
	LabelStrongNegative   ChartLabel = "Strong negative"
)

// ChartLabelFor は単一銘柄チャート用の区分です。境界は 0.7 / 0.3 で、
// DiscoveryStrength とは独立した別の基準です。
func ChartLabelFor(r float64) ChartLabel {
	switch {
	case r > 0.7:
		return LabelStrongPositive
	case r > 0.3:
		return LabelModeratePositive
	case r < -0.7:
		return LabelStrongNegative
	case r < -0.3:
		return LabelModerateNegative
	default:
		return LabelWeak
	}
}

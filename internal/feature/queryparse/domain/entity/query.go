// Package entity はqueryparseフィーチャーのドメインモデルを定義します。
package entity

import (
	"time"

	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// Confidence はモデルが付けた解釈の確からしさです。
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CandidateQuery はモデルが返した未検証の構造化クエリです。
type CandidateQuery struct {
	Ticker     string   `json:"ticker,omitempty"`
	Tickers    []string `json:"tickers,omitempty"`
	MetricX    string   `json:"metricX"`
	MetricY    string   `json:"metricY"`
	StartDate  string   `json:"startDate,omitempty"`
	EndDate    string   `json:"endDate,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
}

// Status は Interpretation の種別です。
type Status int

const (
	// StatusParsed はモデルの出力を CandidateQuery として読み取れたことを表します。
	StatusParsed Status = iota + 1
	// StatusFailed はモデルの出力を読み取れなかったことを表します。
	StatusFailed
)

// Interpretation はモデル呼び出しの結果です。Status が StatusParsed のときだけ Query が有効です。
type Interpretation struct {
	Status Status
	Query  CandidateQuery
	// Raw は読み取れなかった出力です（ログ用）。
	Raw string
}

// Parsed は読み取りに成功した Interpretation を返します。
func Parsed(q CandidateQuery) Interpretation {
	return Interpretation{Status: StatusParsed, Query: q}
}

// Failed は読み取りに失敗した Interpretation を返します。
func Failed(raw string) Interpretation {
	return Interpretation{Status: StatusFailed, Raw: raw}
}

// ParsedQuery は検証済みのクエリです。Ticker と Tickers はどちらか一方だけが設定されます。
type ParsedQuery struct {
	Ticker     metrics.Ticker
	Tickers    []metrics.Ticker
	MetricX    metrics.Metric
	MetricY    metrics.Metric
	StartDate  *time.Time
	EndDate    *time.Time
	Confidence Confidence
}

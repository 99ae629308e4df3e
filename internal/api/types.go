// Package api はHTTP APIのリクエスト・レスポンス型を定義します。
package api

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Success     bool     `json:"success"`
	Error       string   `json:"error"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// SuccessResponse defines model for SuccessResponse.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// DataPoint defines model for DataPoint.
type DataPoint struct {
	Date openapi_types.Date `json:"date"`
	X    float64            `json:"x"`
	Y    float64            `json:"y"`
}

// CorrelationRequest defines model for CorrelationRequest.
type CorrelationRequest struct {
	Ticker    string              `json:"ticker"`
	MetricX   string              `json:"metricX"`
	MetricY   string              `json:"metricY"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
}

// CorrelationResponse defines model for CorrelationResponse.
type CorrelationResponse struct {
	Success     bool        `json:"success"`
	Ticker      string      `json:"ticker"`
	MetricX     string      `json:"metricX"`
	MetricY     string      `json:"metricY"`
	Correlation float64     `json:"correlation"`
	DataPoints  int         `json:"dataPoints"`
	Label       string      `json:"label"`
	Data        []DataPoint `json:"data"`
}

// CompareRequest defines model for CompareRequest.
type CompareRequest struct {
	Tickers   []string            `json:"tickers"`
	MetricX   string              `json:"metricX"`
	MetricY   string              `json:"metricY"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
}

// CompareResult defines model for CompareResult.
type CompareResult struct {
	Ticker      string      `json:"ticker"`
	Correlation float64     `json:"correlation"`
	DataPoints  int         `json:"dataPoints"`
	Label       string      `json:"label"`
	Data        []DataPoint `json:"data"`
}

// CompareResponse defines model for CompareResponse.
type CompareResponse struct {
	Success bool            `json:"success"`
	MetricX string          `json:"metricX"`
	MetricY string          `json:"metricY"`
	Results []CompareResult `json:"results"`
}

// DiscoverRequest defines model for DiscoverRequest.
type DiscoverRequest struct {
	Ticker    string              `json:"ticker"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
}

// DiscoveryItem defines model for DiscoveryItem.
type DiscoveryItem struct {
	Metric      string  `json:"metric"`
	Correlation float64 `json:"correlation"`
	DataPoints  int     `json:"dataPoints"`
	Strength    string  `json:"strength"`
}

// TopResult defines model for TopResult.
type TopResult struct {
	Metric      string      `json:"metric"`
	Correlation float64     `json:"correlation"`
	Data        []DataPoint `json:"data"`
}

// DiscoverResponse defines model for DiscoverResponse.
type DiscoverResponse struct {
	Success   bool            `json:"success"`
	Ticker    string          `json:"ticker"`
	Results   []DiscoveryItem `json:"results"`
	TopResult TopResult       `json:"topResult"`
}

// ParseQueryRequest defines model for ParseQueryRequest.
type ParseQueryRequest struct {
	Query string `json:"query"`
}

// ParsedQuery defines model for ParsedQuery.
type ParsedQuery struct {
	Ticker    string              `json:"ticker,omitempty"`
	Tickers   []string            `json:"tickers,omitempty"`
	MetricX   string              `json:"metricX"`
	MetricY   string              `json:"metricY"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
}

// ParseQueryResponse defines model for ParseQueryResponse.
type ParseQueryResponse struct {
	Success    bool        `json:"success"`
	Parsed     ParsedQuery `json:"parsed"`
	Confidence string      `json:"confidence"`
}

// MeResponse defines model for MeResponse.
type MeResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Approved bool   `json:"approved"`
}

// TickerItem defines model for TickerItem.
type TickerItem struct {
	Code string `json:"code"`
}

// MetricItem defines model for MetricItem.
type MetricItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

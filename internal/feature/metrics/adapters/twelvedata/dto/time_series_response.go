// Package dto defines the Twelve Data response payloads used by the price ingest.
package dto

// TimeSeriesResponse is the JSON body of the time_series endpoint.
// Only the fields needed for daily closes are decoded.
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Symbol  string `json:"symbol"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

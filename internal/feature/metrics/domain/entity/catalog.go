// Package entity defines the domain models for the metrics feature.
package entity

import "strings"

// Ticker is a stock symbol from the closed list of supported companies.
type Ticker string

// Metric identifies one alternative-data or price series stored per ticker and date.
type Metric string

const (
	MetricPrice               Metric = "price"
	MetricJobPosts            Metric = "job_posts"
	MetricRedditMentions      Metric = "reddit_mentions"
	MetricTwitterMentions     Metric = "twitter_mentions"
	MetricRedditSentiment     Metric = "reddit_sentiment"
	MetricTwitterFollowers    Metric = "twitter_followers"
	MetricEmployeesLinkedin   Metric = "employees_linkedin"
	MetricAIScoreEmployment   Metric = "ai_score_employment"
	MetricAIScoreOverall      Metric = "ai_score_overall"
	MetricStocktwitsSentiment Metric = "stocktwits_sentiment"
	MetricNewsMentions        Metric = "news_mentions"
)

// Tickers is the allow-list of tickers, in display order.
var Tickers = []Ticker{
	"AAPL", "AMZN", "DELL", "GOOGL", "JNJ", "META",
	"MSFT", "NKE", "NVDA", "TSLA", "UBER", "V",
}

// Metrics is the allow-list of metrics. Discovery ranking breaks ties by this order.
var Metrics = []Metric{
	MetricPrice,
	MetricJobPosts,
	MetricRedditMentions,
	MetricTwitterMentions,
	MetricRedditSentiment,
	MetricTwitterFollowers,
	MetricEmployeesLinkedin,
	MetricAIScoreEmployment,
	MetricAIScoreOverall,
	MetricStocktwitsSentiment,
	MetricNewsMentions,
}

// displayNames maps metric ids to the labels shown in the dashboard.
// Several labels intentionally hide the underlying data vendor.
var displayNames = map[Metric]string{
	MetricPrice:               "Price",
	MetricJobPosts:            "Job Posts",
	MetricNewsMentions:        "News Mentions",
	MetricRedditMentions:      "Community Activity Index",
	MetricTwitterMentions:     "Social Velocity",
	MetricRedditSentiment:     "Sentiment Alpha",
	MetricTwitterFollowers:    "Social Reach Metric",
	MetricEmployeesLinkedin:   "Workforce Index",
	MetricAIScoreEmployment:   "Hiring Momentum Score",
	MetricAIScoreOverall:      "Composite Signal",
	MetricStocktwitsSentiment: "Investor Sentiment Index",
}

// aliases maps lower-cased free-text phrases to metric ids.
var aliases = map[string]Metric{
	"stock price":  MetricPrice,
	"share price":  MetricPrice,
	"stock":        MetricPrice,
	"price":        MetricPrice,
	"job posts":    MetricJobPosts,
	"job postings": MetricJobPosts,
	"jobs":         MetricJobPosts,
	"hiring":       MetricJobPosts,
	"employment":   MetricJobPosts,

	"reddit mentions":          MetricRedditMentions,
	"reddit":                   MetricRedditMentions,
	"community activity index": MetricRedditMentions,
	"reddit sentiment":         MetricRedditSentiment,
	"sentiment alpha":          MetricRedditSentiment,
	"twitter mentions":         MetricTwitterMentions,
	"twitter":                  MetricTwitterMentions,
	"twitter engagement":       MetricTwitterMentions,
	"social velocity":          MetricTwitterMentions,
	"twitter followers":        MetricTwitterFollowers,
	"social reach metric":      MetricTwitterFollowers,
	"employees":                MetricEmployeesLinkedin,
	"employee count":           MetricEmployeesLinkedin,
	"headcount":                MetricEmployeesLinkedin,
	"workforce index":          MetricEmployeesLinkedin,
	"ai score":                 MetricAIScoreOverall,
	"composite signal":         MetricAIScoreOverall,
	"employment score":         MetricAIScoreEmployment,
	"ai employment":            MetricAIScoreEmployment,
	"hiring momentum score":    MetricAIScoreEmployment,
	"stocktwits":               MetricStocktwitsSentiment,
	"stocktwits sentiment":     MetricStocktwitsSentiment,
	"investor sentiment index": MetricStocktwitsSentiment,
	"news":                     MetricNewsMentions,
	"news mentions":            MetricNewsMentions,
	"media coverage":           MetricNewsMentions,
}

// ParseTicker normalizes s (trimmed, upper-cased) and reports whether it is an allowed ticker.
func ParseTicker(s string) (Ticker, bool) {
	t := Ticker(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Tickers {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ParseMetric reports whether s is exactly one of the allowed metric ids.
func ParseMetric(s string) (Metric, bool) {
	m := Metric(s)
	for _, known := range Metrics {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// ResolveMetric accepts a metric id, a display name or a known alias (case-insensitive).
func ResolveMetric(s string) (Metric, bool) {
	if m, ok := ParseMetric(s); ok {
		return m, true
	}
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := ParseMetric(key); ok {
		return m, true
	}
	m, ok := aliases[key]
	return m, ok
}

// DisplayName returns the user-facing label of a metric.
// Unknown ids fall back to snake_case → Title Case.
func DisplayName(m Metric) string {
	if name, ok := displayNames[m]; ok {
		return name
	}
	words := strings.Split(string(m), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// CandidateMetrics returns every allowed metric except price, in allow-list order.
func CandidateMetrics() []Metric {
	out := make([]Metric, 0, len(Metrics)-1)
	for _, m := range Metrics {
		if m != MetricPrice {
			out = append(out, m)
		}
	}
	return out
}

// TickerStrings returns the allowed tickers as plain strings.
func TickerStrings() []string {
	out := make([]string, len(Tickers))
	for i, t := range Tickers {
		out[i] = string(t)
	}
	return out
}

// MetricStrings returns the allowed metric ids as plain strings.
func MetricStrings() []string {
	out := make([]string, len(Metrics))
	for i, m := range Metrics {
		out[i] = string(m)
	}
	return out
}

// Package gemini はGoogle Gemini APIを使用した自然文クエリの解釈クライアントを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	metrics "altdata_backend/internal/feature/metrics/domain/entity"
	"altdata_backend/internal/feature/queryparse/domain/entity"
	"altdata_backend/internal/feature/queryparse/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// Config はGemini APIの接続設定です。
type Config struct {
	APIKey string
	Model  string
}

// LoadConfig は環境変数から設定を読み込みます。
// GEMINI_API_KEY が空の場合はADC（GOOGLE_GENAI_USE_VERTEXAI など）を使用します。
func LoadConfig() Config {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return Config{APIKey: os.Getenv("GEMINI_API_KEY"), Model: model}
}

// QueryInterpreter はGeminiを使用して自然文を構造化クエリに変換します。
type QueryInterpreter struct {
	client *genai.Client
	model  string
}

// QueryInterpreterがInterpreterを実装していることをコンパイル時に検証します。
var _ usecase.Interpreter = (*QueryInterpreter)(nil)

// NewQueryInterpreter はQueryInterpreterの新しいインスタンスを生成します。
func NewQueryInterpreter(ctx context.Context, cfg Config) (*QueryInterpreter, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &QueryInterpreter{client: client, model: model}, nil
}

// Interpret は自然文をモデルに渡し、返ってきたJSONを CandidateQuery として読み取ります。
// 読み取れない出力は entity.Failed として返し、error はAPI呼び出しの失敗にだけ使います。
func (g *QueryInterpreter) Interpret(ctx context.Context, text string) (entity.Interpretation, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}
	prompt := fmt.Sprintf("Parse this query: %q", text)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return entity.Interpretation{}, fmt.Errorf("gemini API request failed: %w", err)
	}
	return Decode(resp.Text()), nil
}

// Decode はモデルの出力を読み取ります。```json で囲まれていても受け付けます。
func Decode(out string) entity.Interpretation {
	s := stripFences(out)
	if s == "" {
		return entity.Failed(out)
	}
	var q entity.CandidateQuery
	if err := json.Unmarshal([]byte(s), &q); err != nil {
		return entity.Failed(out)
	}
	return entity.Parsed(q)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func responseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ticker":     {Type: genai.TypeString, Enum: metrics.TickerStrings()},
			"tickers":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString, Enum: metrics.TickerStrings()}},
			"metricX":    {Type: genai.TypeString, Enum: metrics.MetricStrings()},
			"metricY":    {Type: genai.TypeString, Enum: metrics.MetricStrings()},
			"startDate":  str,
			"endDate":    str,
			"confidence": {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
		},
		Required: []string{"metricX", "metricY", "confidence"},
	}
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString("You convert questions about stock correlations into JSON query parameters.\n\n")
	fmt.Fprintf(&b, "Tickers: %s\n", strings.Join(metrics.TickerStrings(), ", "))
	b.WriteString("Metrics:\n")
	for _, m := range metrics.Metrics {
		fmt.Fprintf(&b, "- %s (%s)\n", m, metrics.DisplayName(m))
	}
	b.WriteString(`
Output fields:
- "ticker": one ticker when a single company is asked about.
- "tickers": 1 to 3 tickers when the user compares companies. Never set both "ticker" and "tickers".
- "metricX", "metricY": metric ids. For "A vs B", A is metricX and B is metricY. Use "price" when the user mentions the stock or share price.
- "startDate", "endDate": YYYY-MM-DD, only when the query mentions a period. "since 2024" means startDate 2024-01-01.
- "confidence": "high", "medium" or "low" depending on how clear the query is.

Synonyms: jobs/hiring/job postings -> job_posts; headcount/employees -> employees_linkedin; reddit -> reddit_mentions; twitter -> twitter_mentions; news -> news_mentions; stocktwits -> stocktwits_sentiment.
Reply with the JSON object only.`)
	return b.String()
}

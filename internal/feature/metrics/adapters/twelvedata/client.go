package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"altdata_backend/internal/feature/metrics/adapters/twelvedata/dto"
	"altdata_backend/internal/feature/metrics/domain/entity"
	"altdata_backend/internal/feature/metrics/usecase"
)

// dailyInterval は取得する時間足です。相関分析は日次データのみを扱います。
const dailyInterval = "1day"

// PriceClient はTwelve Dataから日次終値を取得するMarketRepository実装です。
type PriceClient struct {
	cfg    Config
	client *http.Client
}

// PriceClientがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*PriceClient)(nil)

// NewPriceClient は指定された設定とHTTPクライアントでPriceClientを生成します。
func NewPriceClient(cfg Config, client *http.Client) *PriceClient {
	return &PriceClient{cfg: cfg, client: client}
}

// GetDailyCloses は銘柄の日次終値を最大outputsize件取得します。
func (p *PriceClient) GetDailyCloses(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", string(ticker))
	q.Set("interval", dailyInterval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("apikey", p.cfg.APIKey)

	u := fmt.Sprintf("%s/time_series?%s", p.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	out := make([]entity.PricePoint, 0, len(body.Values))
	for _, v := range body.Values {
		// 日次データでも時刻付きで返る場合があるため両方の形式を試す
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		y, m, d := tm.Date()
		out = append(out, entity.PricePoint{
			Ticker: ticker,
			Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Close:  c,
		})
	}
	return out, nil
}

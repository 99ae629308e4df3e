// Package adapters provides the gorm-backed store for per-ticker metric rows.
package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	corrusecase "altdata_backend/internal/feature/correlation/usecase"
	"altdata_backend/internal/feature/metrics/domain/entity"
	metricsusecase "altdata_backend/internal/feature/metrics/usecase"
)

type metricPostgres struct {
	db *gorm.DB
}

var (
	_ corrusecase.SeriesRepository       = (*metricPostgres)(nil)
	_ metricsusecase.PriceRepository     = (*metricPostgres)(nil)
	_ metricsusecase.MetricRowRepository = (*metricPostgres)(nil)
)

// importBatchSize は1回のINSERTで書き込む最大行数です。
const importBatchSize = 1000

func NewMetricRepository(db *gorm.DB) *metricPostgres {
	return &metricPostgres{db: db}
}

// StockMetricModel is one row of the stock_metrics table: all metrics of a ticker on a date.
type StockMetricModel struct {
	Ticker string    `gorm:"primaryKey;size:16"`
	Date   time.Time `gorm:"primaryKey;type:date"`

	Price               *float64 `gorm:"column:price"`
	JobPosts            *float64 `gorm:"column:job_posts"`
	RedditMentions      *float64 `gorm:"column:reddit_mentions"`
	TwitterMentions     *float64 `gorm:"column:twitter_mentions"`
	RedditSentiment     *float64 `gorm:"column:reddit_sentiment"`
	TwitterFollowers    *float64 `gorm:"column:twitter_followers"`
	EmployeesLinkedin   *float64 `gorm:"column:employees_linkedin"`
	AIScoreEmployment   *float64 `gorm:"column:ai_score_employment"`
	AIScoreOverall      *float64 `gorm:"column:ai_score_overall"`
	StocktwitsSentiment *float64 `gorm:"column:stocktwits_sentiment"`
	NewsMentions        *float64 `gorm:"column:news_mentions"`

	UpdatedAt time.Time
}

func (StockMetricModel) TableName() string {
	return "stock_metrics"
}

// field returns the column field backing metric m.
func (m *StockMetricModel) field(metric entity.Metric) (**float64, error) {
	switch metric {
	case entity.MetricPrice:
		return &m.Price, nil
	case entity.MetricJobPosts:
		return &m.JobPosts, nil
	case entity.MetricRedditMentions:
		return &m.RedditMentions, nil
	case entity.MetricTwitterMentions:
		return &m.TwitterMentions, nil
	case entity.MetricRedditSentiment:
		return &m.RedditSentiment, nil
	case entity.MetricTwitterFollowers:
		return &m.TwitterFollowers, nil
	case entity.MetricEmployeesLinkedin:
		return &m.EmployeesLinkedin, nil
	case entity.MetricAIScoreEmployment:
		return &m.AIScoreEmployment, nil
	case entity.MetricAIScoreOverall:
		return &m.AIScoreOverall, nil
	case entity.MetricStocktwitsSentiment:
		return &m.StocktwitsSentiment, nil
	case entity.MetricNewsMentions:
		return &m.NewsMentions, nil
	}
	return nil, fmt.Errorf("unknown metric %q", metric)
}

func (m *StockMetricModel) value(metric entity.Metric) (*float64, error) {
	p, err := m.field(metric)
	if err != nil {
		return nil, err
	}
	return *p, nil
}

// FindSeries returns the (date, metricX, metricY) rows of a ticker in ascending date order.
// Column names come only from the metric allow-list; anything else is rejected before querying.
func (r *metricPostgres) FindSeries(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
	for _, m := range []entity.Metric{metricX, metricY} {
		if _, ok := entity.ParseMetric(string(m)); !ok {
			return nil, fmt.Errorf("unknown metric %q", m)
		}
	}

	cols := []string{"date", string(metricX)}
	if metricY != metricX {
		cols = append(cols, string(metricY))
	}

	q := r.db.WithContext(ctx).
		Model(&StockMetricModel{}).
		Select(cols).
		Where("ticker = ?", string(ticker)).
		Order("date ASC")
	if rng.Start != nil {
		q = q.Where("date >= ?", *rng.Start)
	}
	if rng.End != nil {
		q = q.Where("date <= ?", *rng.End)
	}

	var rows []StockMetricModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Sample, 0, len(rows))
	for i := range rows {
		x, err := rows[i].value(metricX)
		if err != nil {
			return nil, err
		}
		y, err := rows[i].value(metricY)
		if err != nil {
			return nil, err
		}
		out = append(out, entity.Sample{Date: rows[i].Date.UTC(), X: x, Y: y})
	}
	return out, nil
}

// UpsertPrices writes closing prices, leaving the alternative-data columns of existing rows untouched.
func (r *metricPostgres) UpsertPrices(ctx context.Context, prices []entity.PricePoint) error {
	if len(prices) == 0 {
		return nil
	}
	ms := make([]StockMetricModel, 0, len(prices))
	for _, p := range prices {
		price := p.Close
		ms = append(ms, StockMetricModel{
			Ticker: string(p.Ticker),
			Date:   p.Date,
			Price:  &price,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&ms).Error
}

// UpsertMetricRows writes imported alternative-data rows keyed by (ticker, date).
// On conflict every metric column carried by the rows is overwritten, nil values included;
// columns the source does not carry keep their stored values.
// Rows must not repeat a (ticker, date) pair.
func (r *metricPostgres) UpsertMetricRows(ctx context.Context, rows []entity.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	carried := map[entity.Metric]bool{}
	ms := make([]StockMetricModel, 0, len(rows))
	for _, row := range rows {
		m := StockMetricModel{Ticker: string(row.Ticker), Date: row.Date}
		for metric, v := range row.Values {
			p, err := m.field(metric)
			if err != nil {
				return err
			}
			if v != nil {
				val := *v
				*p = &val
			}
			carried[metric] = true
		}
		ms = append(ms, m)
	}

	cols := make([]string, 0, len(carried)+1)
	for _, metric := range entity.Metrics {
		if carried[metric] {
			cols = append(cols, string(metric))
		}
	}
	cols = append(cols, "updated_at")

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).CreateInBatches(&ms, importBatchSize).Error
}

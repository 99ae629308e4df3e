package di

import (
	"context"

	corrusecase "altdata_backend/internal/feature/correlation/usecase"
	"altdata_backend/internal/feature/queryparse/adapters/gemini"
	qpusecase "altdata_backend/internal/feature/queryparse/usecase"
)

// NewCorrelationUsecase creates the correlation engine over the given series store.
func NewCorrelationUsecase(series corrusecase.SeriesRepository) *corrusecase.CorrelationUsecase {
	return corrusecase.NewCorrelationUsecase(series)
}

// NewQueryParseUsecase creates the natural-language query usecase backed by Gemini.
func NewQueryParseUsecase(ctx context.Context) (*qpusecase.QueryParseUsecase, error) {
	interpreter, err := gemini.NewQueryInterpreter(ctx, gemini.LoadConfig())
	if err != nil {
		return nil, err
	}
	return qpusecase.NewQueryParseUsecase(interpreter), nil
}

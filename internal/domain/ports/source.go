package ports

import (
	"context"

	"exchange-rate-monitor/internal/domain/model"
)

type RateSource interface {
	FetchRates(ctx context.Context) (model.RateTable, error)
}

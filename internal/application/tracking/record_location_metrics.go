package tracking

import (
	"context"
	"time"

	"github.com/DioGolang/fleettrack/pkg/metrics"
)

type RecordLocationMetricsDecorator struct {
	Next    RecordLocationUseCase
	Metrics metrics.Metrics
}

func (d *RecordLocationMetricsDecorator) Execute(ctx context.Context, input RecordLocationInput) (RecordLocationOutput, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("RecordLocation", err == nil, time.Since(start))
	return output, err
}

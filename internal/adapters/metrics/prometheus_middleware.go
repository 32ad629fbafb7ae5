package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// PrometheusMiddleware times every mediator request and counts it by outcome.
// A nil collector turns it into a pass-through.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(mediator.RequestName(request), time.Since(start), commandStatus(err))

		return response, err
	}
}

// commandStatus buckets an error into a low-cardinality label. Rejections
// caused by the player are kept apart from real failures.
func commandStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case shared.IsNotFound(err):
		return "not_found"
	case shared.IsValidation(err):
		return "invalid"
	case shared.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}

package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/pokerbank/internal/metrics"
)

// MetricsInterceptor records the duration and outcome of every unary RPC.
func MetricsInterceptor(collector *metrics.Collector) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			collector.ObserveRPC(req.Spec().Procedure, code, time.Since(start).Seconds())
			return resp, err
		}
	}
}

package service

import "context"

// Metrics is the subset of aws.MetricsRecorder the service emits.
type Metrics interface {
	OrderPlaced(ctx context.Context, total float64, paymentMethod string) error
	CouponApplied(ctx context.Context, code string, accepted bool) error
	TransitionRefused(ctx context.Context, section string) error
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) OrderPlaced(context.Context, float64, string) error { return nil }
func (NopMetrics) CouponApplied(context.Context, string, bool) error  { return nil }
func (NopMetrics) TransitionRefused(context.Context, string) error    { return nil }

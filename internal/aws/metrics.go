package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the checkout service.
const (
	MetricOrdersPlaced       = "OrdersPlaced"
	MetricOrderValue         = "OrderValue"
	MetricCouponsApplied     = "CouponsApplied"
	MetricCouponsRejected    = "CouponsRejected"
	MetricTransitionsRefused = "TransitionsRefused"
)

// MetricsRecorder writes checkout counters to CloudWatch.
type MetricsRecorder struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetricsRecorder returns a recorder for namespace.
func NewMetricsRecorder(cw CloudWatchAPI, namespace string) *MetricsRecorder {
	return &MetricsRecorder{CloudWatch: cw, Namespace: namespace, nowFunc: time.Now}
}

// Put records one datum. dims are name/value pairs.
func (m *MetricsRecorder) Put(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit, dims map[string]string) error {
	datum := cwtypes.MetricDatum{
		MetricName: sdkaws.String(name),
		Value:      sdkaws.Float64(value),
		Unit:       unit,
		Timestamp:  sdkaws.Time(m.nowFunc()),
	}
	for k, v := range dims {
		datum.Dimensions = append(datum.Dimensions, cwtypes.Dimension{
			Name:  sdkaws.String(k),
			Value: sdkaws.String(v),
		})
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}

// OrderPlaced counts a placed order and records its value.
func (m *MetricsRecorder) OrderPlaced(ctx context.Context, total float64, paymentMethod string) error {
	dims := map[string]string{"PaymentMethod": paymentMethod}
	if err := m.Put(ctx, MetricOrdersPlaced, 1, cwtypes.StandardUnitCount, dims); err != nil {
		return err
	}
	return m.Put(ctx, MetricOrderValue, total, cwtypes.StandardUnitNone, dims)
}

// CouponApplied counts an accepted or rejected coupon.
func (m *MetricsRecorder) CouponApplied(ctx context.Context, code string, accepted bool) error {
	if !accepted {
		return m.Put(ctx, MetricCouponsRejected, 1, cwtypes.StandardUnitCount, nil)
	}
	return m.Put(ctx, MetricCouponsApplied, 1, cwtypes.StandardUnitCount, map[string]string{"Code": code})
}

// TransitionRefused counts a wizard step blocked by validation.
func (m *MetricsRecorder) TransitionRefused(ctx context.Context, section string) error {
	return m.Put(ctx, MetricTransitionsRefused, 1, cwtypes.StandardUnitCount, map[string]string{"Section": section})
}

// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

func newTestMetrics(t *testing.T) (*ContractMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewContractMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create contract metrics: %v", err)
	}
	return m, reader
}

// counterTotal sums every data point of the named int64 counter.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, expected Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewContractMetricsGlobal(t *testing.T) {
	m, err := NewContractMetrics(nil)
	if err != nil {
		t.Fatalf("failed to create contract metrics: %v", err)
	}
	if m == nil {
		t.Fatal("expected non-nil ContractMetrics")
	}
}

func TestRecordViolation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordViolation(ctx, "fib", contract.Violation{
		Kind: contract.KindPrecondition,
		Err:  errors.New(errors.CodePreconditionFailed, "n is an integer", nil),
	})
	m.RecordViolation(ctx, "fib", contract.Violation{Kind: contract.KindPostcondition})

	if got := counterTotal(t, reader, "contracts.violations.total"); got != 2 {
		t.Errorf("expected 2 violations, got %d", got)
	}
}

func TestRecordInvocationAndFailure(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordInvocation(ctx, "fib", OutcomeOK, 1.5)
	m.RecordInvocation(ctx, "fib", OutcomeFailure, 0.2)
	m.RecordFailure(ctx, "fib", errors.New(errors.CodeInternal, "boom", nil))
	m.RecordFailure(ctx, "fib", nil)

	if got := counterTotal(t, reader, "contracts.invocations.total"); got != 2 {
		t.Errorf("expected 2 invocations, got %d", got)
	}
	if got := counterTotal(t, reader, "contracts.failures.total"); got != 1 {
		t.Errorf("expected 1 failure, got %d", got)
	}
}

func TestNilMetrics(t *testing.T) {
	ctx := context.Background()
	var nilMetrics *ContractMetrics

	// Nil metrics should not panic
	nilMetrics.RecordInvocation(ctx, "fib", OutcomeOK, 1)
	nilMetrics.RecordViolation(ctx, "fib", contract.Violation{})
	nilMetrics.RecordFailure(ctx, "fib", errors.New(errors.CodeInternal, "x", nil))
}

func TestConcurrentMetrics(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				m.RecordInvocation(ctx, "worker", OutcomeOK, float64(j))
			}
		}()
	}
	wg.Wait()

	if got := counterTotal(t, reader, "contracts.invocations.total"); got != 30 {
		t.Errorf("expected 30 invocations, got %d", got)
	}
}

// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/contract"
)

type observerFixture struct {
	observer *ContractObserver
	spans    *tracetest.SpanRecorder
	logs     *bytes.Buffer
}

func newObserverFixture(t *testing.T) *observerFixture {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	logs := &bytes.Buffer{}
	logger := slog.New(newSlogHandler(logs, "debug", "json"))

	return &observerFixture{
		observer: NewContractObserver(WithTracer(tp.Tracer("test")), WithLogger(logger)),
		spans:    spans,
		logs:     logs,
	}
}

var errDivide = stderrors.New("division by zero")

func divide(obs contract.Observer) *contract.Contracted {
	fn := contract.NewFunction("divide", func(_ context.Context, args binding.Args) (any, error) {
		b := binding.Bind([]string{"a", "b"}, args)
		if b["b"].(int) == 0 {
			return nil, errDivide
		}
		return b["a"].(int) / b["b"].(int), nil
	}, "a", "b")
	return contract.Apply(fn,
		contract.PreArg("a", func(v any) bool { _, ok := v.(int); return ok }, "a is an integer"),
		contract.Configure(contract.WithObserver(obs)),
	)
}

func TestObserverSuccess(t *testing.T) {
	f := newObserverFixture(t)

	got, err := divide(f.observer).Call(context.Background(), 6, 3)
	if err != nil || got != 2 {
		t.Fatalf("unexpected result %v, %v", got, err)
	}

	ended := f.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	span := ended[0]
	if span.Name() != "contract.invoke divide" {
		t.Errorf("unexpected span name: %s", span.Name())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("expected ok status, got %v", span.Status())
	}
	if v, ok := spanAttr(span, AttrOutcome); !ok || v != OutcomeOK {
		t.Errorf("expected outcome ok, got %q", v)
	}
	if _, ok := spanAttr(span, AttrInvocationID); !ok {
		t.Errorf("expected invocation id attribute")
	}
	if strings.Contains(f.logs.String(), "contract.violation") {
		t.Errorf("no violation expected in logs: %s", f.logs.String())
	}
}

func TestObserverViolation(t *testing.T) {
	f := newObserverFixture(t)

	_, err := divide(f.observer).Call(context.Background(), "six", 3)
	if err == nil {
		t.Fatal("expected violation")
	}

	span := f.spans.Ended()[0]
	if span.Status().Code != codes.Error || span.Status().Description != "a is an integer" {
		t.Errorf("unexpected status: %+v", span.Status())
	}
	events := span.Events()
	if len(events) != 1 || events[0].Name != "contract.violation" {
		t.Fatalf("expected a single violation event, got %+v", events)
	}
	if v, _ := spanAttr(span, AttrOutcome); v != OutcomeViolation {
		t.Errorf("expected outcome violation, got %q", v)
	}

	logs := f.logs.String()
	if !strings.Contains(logs, `"msg":"contract.violation"`) || !strings.Contains(logs, `"level":"WARN"`) {
		t.Errorf("expected a warn violation record, got %s", logs)
	}
	if !strings.Contains(logs, `"param":"a"`) {
		t.Errorf("expected the parameter in the log record, got %s", logs)
	}
	id, _ := spanAttr(span, AttrInvocationID)
	if !strings.Contains(logs, `"invocation_id":"`+id+`"`) || !strings.Contains(logs, `"function":"divide"`) {
		t.Errorf("expected invocation %s of divide in the log records, got %s", id, logs)
	}
	if strings.Count(logs, `"invocation_id"`) != strings.Count(logs, "\n") {
		t.Errorf("every record should carry the invocation id once, got %s", logs)
	}
}

func TestObserverBodyFailure(t *testing.T) {
	f := newObserverFixture(t)

	_, err := divide(f.observer).Call(context.Background(), 6, 0)
	if !stderrors.Is(err, errDivide) {
		t.Fatalf("expected body error, got %v", err)
	}

	span := f.spans.Ended()[0]
	if v, _ := spanAttr(span, AttrOutcome); v != OutcomeFailure {
		t.Errorf("expected outcome failure, got %q", v)
	}
	if !strings.Contains(f.logs.String(), "contract.invocation.failed") {
		t.Errorf("expected failure log, got %s", f.logs.String())
	}
}

func TestObserverContextReachesBody(t *testing.T) {
	f := newObserverFixture(t)

	var traced bool
	fn := contract.Wrap(contract.NewFunction("probe", func(ctx context.Context, _ binding.Args) (any, error) {
		traced = spanValid(ctx)
		return nil, nil
	}), contract.WithObserver(f.observer))

	if _, err := fn.Call(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !traced {
		t.Errorf("body should run inside the invocation span")
	}
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func spanValid(ctx context.Context) bool {
	traceID, spanID := spanIDsFromContext(ctx)
	return traceID != "" && spanID != ""
}

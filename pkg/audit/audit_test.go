// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/contracts/pkg/binding"
	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

func sampleEvents() []Event {
	now := time.Now().UTC()
	return []Event{
		{InvocationID: "inv-1", Function: "fib", Kind: contract.KindPrecondition, Index: 0, Param: "n",
			Code: errors.CodePreconditionFailed, Message: "n is an integer", Args: `("foobar")`, RecordedAt: now},
		{InvocationID: "inv-2", Function: "fib", Kind: contract.KindPrecondition, Index: 1, Param: "n",
			Code: errors.CodePreconditionFailed, Message: "n is at least zero", Args: "(-1)", RecordedAt: now},
		{InvocationID: "inv-3", Function: "returns_string", Kind: contract.KindPostcondition, Index: 0,
			Code: errors.CodePostconditionFailed, Message: "A postcondition failed", Args: "()", RecordedAt: now},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	for _, ev := range sampleEvents() {
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"inv-1", "inv-2", "inv-3"}},
		{"by function", Filter{Function: "fib"}, []string{"inv-1", "inv-2"}},
		{"by kind", Filter{Kind: contract.KindPostcondition}, []string{"inv-3"}},
		{"by invocation", Filter{InvocationID: "inv-2"}, []string{"inv-2"}},
		{"limit", Filter{Function: "fib", Limit: 1}, []string{"inv-1"}},
		{"no match", Filter{Function: "foobar"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(events) != len(tt.want) {
				t.Fatalf("expected %d events, got %d", len(tt.want), len(events))
			}
			for i, id := range tt.want {
				if events[i].InvocationID != id {
					t.Errorf("event %d: expected %s, got %s", i, id, events[i].InvocationID)
				}
			}
		})
	}

	events, _ := store.List(ctx, Filter{InvocationID: "inv-1"})
	ev := events[0]
	if ev.Kind != contract.KindPrecondition || ev.Code != errors.CodePreconditionFailed || ev.Param != "n" {
		t.Errorf("fields not preserved: %+v", ev)
	}
	if ev.Message != "n is an integer" || ev.Args != `("foobar")` {
		t.Errorf("fields not preserved: %+v", ev)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	db, err := sql.Open("sqlite", "file:contracts_audit_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	exerciseStore(t, store)

	if err := store.Close(); err != nil {
		t.Errorf("close of a borrowed db should be a no-op: %v", err)
	}
}

func TestNewSQLiteStoreNilDB(t *testing.T) {
	if _, err := NewSQLiteStore(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		driver  string
		dsn     string
		wantErr bool
	}{
		{"memory", "", false},
		{"", "", false},
		{"sqlite", "file:contracts_audit_open?mode=memory&cache=shared", false},
		{"sqlite", "", true},
		{"postgres", "x", true},
	}
	for _, tt := range tests {
		store, err := Open(tt.driver, tt.dsn)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%q, %q) error = %v, wantErr %v", tt.driver, tt.dsn, err, tt.wantErr)
			continue
		}
		if store != nil {
			if err := store.Close(); err != nil {
				t.Errorf("close: %v", err)
			}
		}
	}
}

func TestObserverRecordsViolations(t *testing.T) {
	store := NewMemoryStore()
	fn := contract.Apply(
		contract.NewFunction("halve", func(_ context.Context, args binding.Args) (any, error) {
			v, err := binding.Resolve([]string{"n"}, args, "n")
			if err != nil {
				return nil, err
			}
			return v.(int) / 2, nil
		}, "n"),
		contract.PreArg("n", func(v any) bool { n, ok := v.(int); return ok && n%2 == 0 }, "n is even"),
		contract.Post(func(v any) bool { return v.(int) < 10 }, ""),
		contract.Configure(contract.WithObserver(NewObserver(store, nil))),
	)

	ctx := context.Background()
	if _, err := fn.Call(ctx, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = fn.Call(ctx, 3)
	_, _ = fn.Invoke(ctx, binding.Keywords(map[string]any{"n": 40}))

	events, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	pre, post := events[0], events[1]
	if pre.Kind != contract.KindPrecondition || pre.Message != "n is even" || pre.Param != "n" || pre.Args != "(3)" {
		t.Errorf("unexpected precondition event: %+v", pre)
	}
	if post.Kind != contract.KindPostcondition || post.Message != contract.DefaultPostconditionMessage {
		t.Errorf("unexpected postcondition event: %+v", post)
	}
	if pre.InvocationID == "" || pre.InvocationID == post.InvocationID {
		t.Errorf("expected distinct invocation ids: %q, %q", pre.InvocationID, post.InvocationID)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(pre.ErrorJSON), &payload); err != nil {
		t.Fatalf("error_json is not JSON: %v", err)
	}
	if payload["code"] != string(errors.CodePreconditionFailed) {
		t.Errorf("unexpected error code in payload: %v", payload["code"])
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) Record(context.Context, Event) error {
	return errors.New(errors.CodeInternal, "disk full", nil)
}

func TestObserverStoreErrorDoesNotChangeOutcome(t *testing.T) {
	var logs strings.Builder
	logger := newTextLogger(&logs)

	fn := contract.Apply(
		contract.NewFunction("id", func(_ context.Context, args binding.Args) (any, error) {
			return args.Positional[0], nil
		}, "x"),
		contract.PreArg("x", func(v any) bool { return v != nil }, "x is set"),
		contract.Configure(contract.WithObserver(NewObserver(&failingStore{}, logger))),
	)

	_, err := fn.Call(context.Background(), nil)
	if errors.MessageOf(err) != "x is set" {
		t.Fatalf("expected the violation to be returned, got %v", err)
	}
	if !strings.Contains(logs.String(), "audit.record.failed") {
		t.Errorf("expected store failure to be logged, got %q", logs.String())
	}
}

func newTextLogger(w *strings.Builder) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}

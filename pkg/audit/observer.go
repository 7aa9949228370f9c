// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jllopis/contracts/pkg/contract"
)

// Observer records one Event per failed check into a Store. Store errors
// are logged and never change the outcome of the invocation.
type Observer struct {
	store  Store
	logger *slog.Logger
}

// NewObserver returns an observer writing to store. A nil logger uses
// slog.Default().
func NewObserver(store Store, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{store: store, logger: logger}
}

// InvocationStarted implements contract.Observer.
func (o *Observer) InvocationStarted(ctx context.Context, _ contract.Invocation) context.Context {
	return ctx
}

// CheckFailed implements contract.Observer.
func (o *Observer) CheckFailed(ctx context.Context, inv contract.Invocation, v contract.Violation) {
	if o.store == nil {
		return
	}
	if err := o.store.Record(context.WithoutCancel(ctx), NewEvent(inv, v)); err != nil {
		o.logger.WarnContext(ctx, "audit.record.failed",
			slog.String("function", inv.Function),
			slog.String("invocation_id", inv.ID),
			slog.String("error", err.Error()),
		)
	}
}

// InvocationFinished implements contract.Observer.
func (o *Observer) InvocationFinished(context.Context, contract.Invocation, any, error) {}

// ClosableStore is a Store holding resources.
type ClosableStore interface {
	Store
	Close() error
}

type nopCloser struct{ Store }

func (nopCloser) Close() error { return nil }

// Open returns the store for driver: "memory" or "sqlite".
func Open(driver, dsn string) (ClosableStore, error) {
	switch driver {
	case "", "memory":
		return nopCloser{NewMemoryStore()}, nil
	case "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("audit: sqlite dsn is required")
		}
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("audit: unknown driver %q", driver)
	}
}

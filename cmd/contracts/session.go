// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jllopis/contracts/pkg/audit"
	"github.com/jllopis/contracts/pkg/config"
	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/telemetry"
)

// session holds what the configuration turns on for one CLI run.
type session struct {
	options  []contract.Option
	store    audit.ClosableStore
	shutdown telemetry.ShutdownFunc
}

// newSession wires enforcement, telemetry and the audit store from cfg.
// Telemetry exporters write to diag so command output stays clean.
func newSession(cfg *config.Config, diag io.Writer) (*session, error) {
	enforcement := cfg.Contracts.Enforcement()
	s := &session{
		options: []contract.Option{contract.WithEnforcement(enforcement)},
	}

	var observers []contract.Observer
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig(cfg.Telemetry.ServiceName, version, telemetry.Config{
			Exporter:       cfg.Telemetry.Exporter,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
			Output:         diag,
			MetricInterval: time.Duration(cfg.Telemetry.MetricIntervalSeconds) * time.Second,
			Enforcement:    &enforcement,
		})
		if err != nil {
			return nil, err
		}
		s.shutdown = shutdown

		metrics, err := telemetry.NewContractMetrics(nil)
		if err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		observers = append(observers, telemetry.NewContractObserver(telemetry.WithMetrics(metrics)))
	}

	if cfg.Audit.Enabled {
		store, err := audit.Open(cfg.Audit.Driver, cfg.Audit.DSN)
		if err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		s.store = store
		observers = append(observers, audit.NewObserver(store, slog.Default()))
	}

	if len(observers) > 0 {
		s.options = append(s.options, contract.WithObserver(contract.Observers(observers...)))
	}
	return s, nil
}

// Close flushes telemetry and releases the audit store.
func (s *session) Close(ctx context.Context) error {
	var firstErr error
	if s.shutdown != nil {
		if err := s.shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

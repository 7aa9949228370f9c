// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"io"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jllopis/contracts/pkg/contract"
)

func TestInit(t *testing.T) {
	shutdown, err := InitWithConfig("test-service", "v0.0.1", Config{Exporter: "stdout", Output: io.Discard})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Shutdown function should not be nil")
	}

	// Ensure shutdown works
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitNone(t *testing.T) {
	shutdown, err := InitWithConfig("", "", Config{Exporter: "none"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"otlp without endpoint", Config{Exporter: "otlp"}},
		{"unknown exporter", Config{Exporter: "zipkin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InitWithConfig("svc", "v", tt.cfg); err == nil {
				t.Errorf("expected error for %+v", tt.cfg)
			}
		})
	}
}

func TestResourceAttributes(t *testing.T) {
	tests := []struct {
		name        string
		service     string
		enforcement *contract.Enforcement
		want        map[attribute.Key]string
		absent      []attribute.Key
	}{
		{
			name:    "default service without enforcement",
			service: "",
			want:    map[attribute.Key]string{semconv.ServiceNameKey: "contracts"},
			absent:  []attribute.Key{AttrEnforcePreconditions, AttrEnforcePostconditions},
		},
		{
			name:        "postconditions disabled",
			service:     "billing",
			enforcement: &contract.Enforcement{Preconditions: true},
			want: map[attribute.Key]string{
				semconv.ServiceNameKey:    "billing",
				AttrEnforcePreconditions:  "true",
				AttrEnforcePostconditions: "false",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newResource(tt.service, "v1", Config{Enforcement: tt.enforcement})
			if err != nil {
				t.Fatalf("newResource failed: %v", err)
			}
			set := res.Set()
			for key, want := range tt.want {
				got, ok := set.Value(key)
				if !ok || got.Emit() != want {
					t.Errorf("%s = %q (%v), want %q", key, got.Emit(), ok, want)
				}
			}
			for _, key := range tt.absent {
				if _, ok := set.Value(key); ok {
					t.Errorf("unexpected attribute %s", key)
				}
			}
		})
	}
}

// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit records contract violations so they can be inspected after
// the fact.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// Event is one failed check of a contracted invocation.
type Event struct {
	InvocationID string           `json:"invocation_id" yaml:"invocation_id"`
	Function     string           `json:"function" yaml:"function"`
	Kind         contract.Kind    `json:"kind" yaml:"kind"`
	Index        int              `json:"index" yaml:"index"`
	Param        string           `json:"param,omitempty" yaml:"param,omitempty"`
	Code         errors.ErrorCode `json:"code" yaml:"code"`
	Message      string           `json:"message" yaml:"message"`
	Args         string           `json:"args" yaml:"args"`
	ErrorJSON    string           `json:"error_json,omitempty" yaml:"error_json,omitempty"`
	RecordedAt   time.Time        `json:"recorded_at" yaml:"recorded_at"`
}

// Store persists violation events.
type Store interface {
	Record(ctx context.Context, event Event) error
	List(ctx context.Context, filter Filter) ([]Event, error)
}

// Filter limits event queries.
type Filter struct {
	Function     string
	Kind         contract.Kind
	InvocationID string
	Limit        int
}

func (f Filter) match(ev Event) bool {
	if f.Function != "" && ev.Function != f.Function {
		return false
	}
	if f.Kind != "" && ev.Kind != f.Kind {
		return false
	}
	if f.InvocationID != "" && ev.InvocationID != f.InvocationID {
		return false
	}
	return true
}

// MemoryStore keeps events in memory.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryStore returns an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends an event.
func (s *MemoryStore) Record(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns filtered events in recording order.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if !filter.match(ev) {
			continue
		}
		out = append(out, ev)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// NewEvent builds the event recorded for a failed check.
func NewEvent(inv contract.Invocation, v contract.Violation) Event {
	return Event{
		InvocationID: inv.ID,
		Function:     inv.Function,
		Kind:         v.Kind,
		Index:        v.Index,
		Param:        v.Param,
		Code:         errors.CodeOf(v.Err),
		Message:      errors.MessageOf(v.Err),
		Args:         inv.Args.String(),
		ErrorJSON:    encodeError(v.Err),
		RecordedAt:   time.Now().UTC(),
	}
}

// encodeError marshals err as a ContractError, or returns "" for nil.
func encodeError(err error) string {
	if err == nil {
		return ""
	}
	raw, jerr := json.Marshal(errors.AsContractError(err))
	if jerr != nil {
		return fmt.Sprintf("%q", err.Error())
	}
	return string(raw)
}

// normalizeTime ensures timestamps are in UTC.
func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return value.UTC()
}

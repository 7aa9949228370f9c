// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jllopis/contracts/pkg/audit"
	"github.com/jllopis/contracts/pkg/errors"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseGlobalFlags(t *testing.T) {
	flags, args, err := parseGlobalFlags([]string{
		"--json", "--config", "c.yaml", "--set", "log.level=debug", "--set=audit.enabled=true", "fib", "-1",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !flags.JSON || flags.ConfigPath != "c.yaml" {
		t.Errorf("unexpected flags: %+v", flags)
	}
	wantConfig := []string{"--config", "c.yaml", "--set", "log.level=debug", "--set=audit.enabled=true"}
	if strings.Join(flags.ConfigArgs, " ") != strings.Join(wantConfig, " ") {
		t.Errorf("unexpected config args: %v", flags.ConfigArgs)
	}
	if len(args) != 2 || args[0] != "fib" || args[1] != "-1" {
		t.Errorf("command args must stop flag parsing: %v", args)
	}
}

func TestParseGlobalFlagsErrors(t *testing.T) {
	for _, args := range [][]string{{"--config"}, {"--set"}, {"--verbose", "fib"}} {
		if _, _, err := parseGlobalFlags(args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestParseFibArg(t *testing.T) {
	if got := parseFibArg("12"); got != 12 {
		t.Errorf("expected int 12, got %#v", got)
	}
	if got := parseFibArg("foobar"); got != "foobar" {
		t.Errorf("expected string, got %#v", got)
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != 0 || strings.TrimSpace(out) != version {
		t.Errorf("version: code=%d out=%q", code, out)
	}
	code, out, _ = runCLI(t)
	if code != 0 || !strings.Contains(out, "Usage:") {
		t.Errorf("help: code=%d out=%q", code, out)
	}
}

func TestRunFib(t *testing.T) {
	code, out, errOut := runCLI(t, "fib", "4")
	if code != 0 {
		t.Fatalf("fib 4 failed: %s", errOut)
	}
	if out != "fib(4) = 5\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRunFibViolation(t *testing.T) {
	code, _, errOut := runCLI(t, "fib", "foobar")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut, "Error [Precondition Failed]: n is an integer") {
		t.Errorf("unexpected stderr: %q", errOut)
	}

	code, _, errOut = runCLI(t, "--json", "fib", "-1")
	if code != 1 || !strings.Contains(errOut, `"code":"PRECONDITION_FAILED"`) ||
		!strings.Contains(errOut, `"message":"n is at least zero"`) {
		t.Errorf("unexpected json error: code=%d %q", code, errOut)
	}
}

func TestRunFibWithoutPreconditions(t *testing.T) {
	code, out, errOut := runCLI(t, "--set", "contracts.preconditions=false", "fib", "-1")
	if code != 0 {
		t.Fatalf("expected success with preconditions off: %s", errOut)
	}
	if out != "fib(-1) = 1\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRunDemo(t *testing.T) {
	code, out, errOut := runCLI(t, "demo")
	if code != 0 {
		t.Fatalf("demo failed: %s\n%s", out, errOut)
	}
	if !strings.Contains(out, "11/11 scenarios passed; returns_string body ran 1 time(s)") {
		t.Errorf("unexpected summary: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("no colour expected when stdout is not a terminal")
	}

	code, out, _ = runCLI(t, "--json", "demo")
	var results []demoResult
	if code != 0 || json.Unmarshal([]byte(out), &results) != nil || len(results) != 11 {
		t.Errorf("unexpected json demo output: code=%d %q", code, out)
	}
}

func TestRunAudit(t *testing.T) {
	code, out, errOut := runCLI(t, "--json", "--set", "audit.enabled=true", "audit", "--demo")
	if code != 0 {
		t.Fatalf("audit failed: %s", errOut)
	}
	var events []audit.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(events) != 7 {
		t.Errorf("expected 7 violations, got %d", len(events))
	}

	code, out, _ = runCLI(t, "--json", "--set", "audit.enabled=true", "audit", "--demo", "--kind", "postcondition")
	events = nil
	if code != 0 || json.Unmarshal([]byte(out), &events) != nil || len(events) != 1 {
		t.Fatalf("unexpected postcondition listing: %q", out)
	}
	if events[0].Function != "returns_string" || events[0].Code != errors.CodePostconditionFailed {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestRunAuditDisabled(t *testing.T) {
	code, _, errOut := runCLI(t, "audit")
	if code != 1 || !strings.Contains(errOut, "audit store is disabled") {
		t.Errorf("unexpected result: code=%d %q", code, errOut)
	}
}

func TestRunConfig(t *testing.T) {
	code, out, _ := runCLI(t, "--json", "--set", "log.format=json", "config")
	if code != 0 {
		t.Fatalf("config failed: %q", out)
	}
	var cfg map[string]map[string]any
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if cfg["log"]["format"] != "json" || cfg["contracts"]["preconditions"] != true {
		t.Errorf("unexpected config: %v", cfg)
	}

	code, out, _ = runCLI(t, "config")
	if code != 0 || !strings.Contains(out, "preconditions: true") {
		t.Errorf("unexpected yaml config: %q", out)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		args []string
		code int
		want string
	}{
		{[]string{"--bogus"}, 2, "unknown global flag"},
		{[]string{"nope"}, 1, `unknown command "nope"`},
		{[]string{"fib"}, 1, "usage: contracts fib <n>"},
		{[]string{"--set", "audit.driver=postgres", "fib", "1"}, 1, "configuration error"},
	}
	for _, tt := range tests {
		code, _, errOut := runCLI(t, tt.args...)
		if code != tt.code || !strings.Contains(errOut, tt.want) {
			t.Errorf("%v: code=%d stderr=%q", tt.args, code, errOut)
		}
	}
}

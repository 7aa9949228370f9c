// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/jllopis/contracts/internal/demo"
	"github.com/jllopis/contracts/pkg/audit"
	"github.com/jllopis/contracts/pkg/config"
	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
	"github.com/jllopis/contracts/pkg/telemetry"
)

var version = "dev"

type globalFlags struct {
	ConfigArgs []string
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	global, args, err := parseGlobalFlags(argv)
	if err != nil {
		NewInvalidArgumentError("flags", err.Error()).PrintError(stderr, global.JSON)
		return 2
	}
	if global.Help || len(args) == 0 {
		printUsage(stdout)
		return 0
	}

	cfg, err := config.LoadWithCLI(global.ConfigArgs)
	if err != nil {
		NewConfigError(err, global.ConfigPath).PrintError(stderr, global.JSON)
		return 1
	}
	telemetry.ConfigureSlog(stderr, cfg.Log.Level, cfg.Log.Format)

	cmd := args[0]
	switch cmd {
	case "help":
		printUsage(stdout)
		return 0
	case "version":
		fmt.Fprintln(stdout, version)
		return 0
	case "config":
		if err := ensureNoArgs(args[1:]); err != nil {
			return reportError(stderr, err, global.JSON)
		}
		return reportError(stderr, printValue(stdout, cfg, global.JSON), global.JSON)
	}

	sess, err := newSession(cfg, stderr)
	if err != nil {
		return reportError(stderr, err, global.JSON)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(shutdownCtx); err != nil {
			PrintSimpleError(stderr, err, global.JSON)
		}
	}()

	switch cmd {
	case "fib":
		err = runFib(ctx, stdout, sess.options, args[1:], global.JSON)
	case "demo":
		err = runDemo(ctx, stdout, sess.options, args[1:], global.JSON, isTerminal(stdout))
	case "audit":
		err = runAudit(ctx, stdout, sess, args[1:], global.JSON)
	default:
		err = NewInvalidArgumentError("command", fmt.Sprintf("unknown command %q", cmd))
	}
	return reportError(stderr, err, global.JSON)
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--set":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --set")
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--set="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

// parseFibArg keeps non-numeric input as a string so the type guard sees it.
func parseFibArg(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func runFib(ctx context.Context, w io.Writer, opts []contract.Option, args []string, asJSON bool) error {
	if len(args) != 1 {
		return NewInvalidArgumentError("n", "usage: contracts fib <n>")
	}
	n := parseFibArg(args[0])
	result, err := demo.NewFib(opts...).Call(ctx, n)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(w, map[string]any{"n": n, "result": result})
	}
	fmt.Fprintf(w, "fib(%v) = %v\n", n, result)
	return nil
}

type demoResult struct {
	Name     string `json:"name"`
	Function string `json:"function"`
	Args     string `json:"args"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail"`
}

func runDemo(ctx context.Context, w io.Writer, opts []contract.Option, args []string, asJSON, color bool) error {
	if err := ensureNoArgs(args); err != nil {
		return err
	}
	suite := demo.NewSuite(opts...)
	results := suite.RunAll(ctx, demo.Cases())

	failed := 0
	out := make([]demoResult, 0, len(results))
	for _, res := range results {
		if !res.Passed {
			failed++
		}
		out = append(out, demoResult{
			Name:     res.Case.Name,
			Function: res.Case.Function,
			Args:     res.Case.Args.String(),
			Passed:   res.Passed,
			Detail:   res.Detail,
		})
	}

	if asJSON {
		if err := printJSON(w, out); err != nil {
			return err
		}
	} else {
		tw := newTabWriter(w)
		for _, res := range out {
			writeRow(tw, status(res.Passed, color), res.Function+res.Args, res.Detail)
		}
		_ = tw.Flush()
		fmt.Fprintf(w, "%d/%d scenarios passed; returns_string body ran %d time(s)\n",
			len(out)-failed, len(out), suite.ReturnsString.Calls())
	}
	if failed > 0 {
		return errors.New(errors.CodeInternal, fmt.Sprintf("%d demo scenario(s) failed", failed), nil)
	}
	return nil
}

func runAudit(ctx context.Context, w io.Writer, sess *session, args []string, asJSON bool) error {
	cmd := flag.NewFlagSet("audit", flag.ContinueOnError)
	cmd.SetOutput(io.Discard)
	function := cmd.String("function", "", "only violations of this function")
	kind := cmd.String("kind", "", "precondition or postcondition")
	invocation := cmd.String("invocation", "", "only violations of this invocation id")
	limit := cmd.Int("limit", 0, "maximum number of events")
	runDemoFirst := cmd.Bool("demo", false, "run the demo scenarios before listing")
	if err := cmd.Parse(args); err != nil {
		return NewInvalidArgumentError("audit", err.Error())
	}
	if sess.store == nil {
		return NewCLIError(
			errors.New(errors.CodeInvalidInput, "audit store is disabled", nil),
			"enable it with --set audit.enabled=true",
		)
	}
	switch contract.Kind(*kind) {
	case "", contract.KindPrecondition, contract.KindPostcondition:
	default:
		return NewInvalidArgumentError("kind", fmt.Sprintf("unknown kind %q", *kind))
	}

	if *runDemoFirst {
		demo.NewSuite(sess.options...).RunAll(ctx, demo.Cases())
	}

	events, err := sess.store.List(ctx, audit.Filter{
		Function:     *function,
		Kind:         contract.Kind(*kind),
		InvocationID: *invocation,
		Limit:        *limit,
	})
	if err != nil {
		return err
	}
	if events == nil {
		events = []audit.Event{}
	}
	return printValue(w, events, asJSON)
}

func reportError(w io.Writer, err error, asJSON bool) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	switch {
	case stderrors.As(err, &cliErr):
		cliErr.PrintError(w, asJSON)
	case errors.CodeOf(err) != "":
		NewViolationError(err).PrintError(w, asJSON)
	default:
		PrintSimpleError(w, err, asJSON)
	}
	return 1
}

func printValue(w io.Writer, value any, asJSON bool) error {
	if asJSON {
		return printJSON(w, value)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}

func printJSON(w io.Writer, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	colorGreen = "\x1b[32m"
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

func status(passed, color bool) string {
	label, code := "PASS", colorGreen
	if !passed {
		label, code = "FAIL", colorRed
	}
	if !color {
		return label
	}
	return code + label + colorReset
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.Join(strings.Fields(value), " ")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `contracts: preconditions and postconditions for Go functions

Usage:
  contracts [global flags] <command> [args]

Global flags:
  --config <path>      Path to a YAML configuration file
  --set key=value      Override config (repeatable)
  --json               JSON output

Commands:
  fib <n>              Call the contracted Fibonacci function
  demo                 Run the demo scenarios
  audit [--function f] [--kind k] [--invocation id] [--limit N] [--demo]
                       List recorded violations
  config               Print the effective configuration
  version
  help`)
}

func ensureNoArgs(args []string) error {
	if len(args) > 0 {
		return NewInvalidArgumentError("args", fmt.Sprintf("unexpected args: %v", args))
	}
	return nil
}

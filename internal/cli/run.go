// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jeranaias/slushie-cfo/internal/commands"
)

// runRecord is one --json output line.
type runRecord struct {
	Input   string `json:"input"`
	Command string `json:"command,omitempty"`
	Kind    string `json:"kind"`
	Mutated bool   `json:"mutated"`
	Text    string `json:"text"`
}

// HandleRun executes ledger commands given as arguments, or read from stdin
// one per line when there are none.
func HandleRun(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lines := args.Rest
	if len(lines) == 0 {
		if IsStdinTTY() {
			return &UsageError{Message: "run needs commands as arguments or on stdin"}
		}
		if lines, err = readCommandLines(os.Stdin); err != nil {
			return err
		}
	}
	if len(lines) == 0 {
		return &UsageError{Message: "run needs at least one command"}
	}

	md := newMarkdownRenderer(cfg.UI.Markdown && !args.JSON)
	return runCommands(ctx, app.Interp, lines, os.Stdout, args.JSON, md)
}

// readCommandLines reads non-blank lines, skipping # comments.
func readCommandLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	return lines, nil
}

// runCommands executes lines in order against interp. Every line runs even
// after a failure; the returned error counts the failures.
func runCommands(ctx context.Context, interp *commands.Interpreter, lines []string, out io.Writer, jsonMode bool, md *markdownRenderer) error {
	enc := json.NewEncoder(out)
	failed := 0

	for i, line := range lines {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res := interp.Execute(ctx, line)
		if res.Kind.IsError() {
			failed++
		}

		if jsonMode {
			if err := enc.Encode(runRecord{
				Input:   line,
				Command: res.Command,
				Kind:    res.Kind.String(),
				Mutated: res.Mutated,
				Text:    res.Text,
			}); err != nil {
				return err
			}
			continue
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, md.Render(res.Text))
	}

	if failed > 0 {
		return &CommandFailedError{Failed: failed, Total: len(lines)}
	}
	return nil
}

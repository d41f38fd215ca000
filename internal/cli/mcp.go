// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/slushie-cfo/internal/mcpserver"
)

// HandleMCP serves the ledger as MCP tools over stdin and stdout until the
// client disconnects or the process is signalled. Logs go to stderr.
func HandleMCP(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.StartAutoSync(ctx, nil)
	watchConfig(ctx, app, args)

	s := mcpserver.New(app.Interp, Version)
	app.Logger.Info("serving MCP over stdio", "name", mcpserver.Name, "version", Version)

	err = mcpserver.Serve(ctx, s, os.Stdin, os.Stdout, app.Logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

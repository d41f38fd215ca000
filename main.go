// slushie - CFO assistant and ledger for a family slushie stand.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"os"

	"github.com/jeranaias/slushie-cfo/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}

	switch args.Command {
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return
	case cli.CmdRun:
		err = cli.HandleRun(args)
	case cli.CmdMCP:
		err = cli.HandleMCP(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	default:
		err = cli.HandleChat(args)
	}

	if err != nil {
		var failed *cli.CommandFailedError
		// run already printed each failure
		if !errors.As(err, &failed) {
			cli.DisplayError(os.Stderr, err, args.JSON)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the slushie front ends.
//
// # Key Types
//
//   - Command: the top-level command selected on the command line
//   - Args: parsed global flags plus the command's own arguments
//   - App: the ledger, interpreter, and assistant wired from config
//   - ChatSession: the interactive REPL
//
// # Commands
//
//   - chat (default): interactive session mixing ledger commands and
//     questions for the assistant
//   - run: execute ledger commands from arguments or stdin
//   - mcp: serve the ledger as MCP tools over stdio
//   - config: show, get, set, or initialize the config file
//   - version, help
package cli

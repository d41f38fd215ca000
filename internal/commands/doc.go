// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command interpreter.
//
// A line of input is split on whitespace, matched against an ordered
// dispatch table, its arguments validated, and the matching handler run
// against a ledger. Every outcome, including failures, is a Result whose
// Text is ready to show the user; nothing is returned as a Go error.
//
// # Key Types
//
//   - Registry: the dispatch table, rows tried in registration order
//   - Command: one row (keyword, literal tail, argument types, handler)
//   - Interpreter: executes lines against a ledger and payment feed
//   - Result: response text plus its Kind and whether the ledger changed
//   - Completer: tab completion for keywords and literal sub-commands
//
// # Matching
//
// The leading keyword is matched case-insensitively. Words after it are
// matched exactly, except the sub-command after /calculate and /venmo.
// Fixed-arity rows need the exact token count, so "/add 5 to net profit now"
// is an unknown command rather than a partial match.
//
// # Usage
//
//	l := ledger.New()
//	fmt.Println(commands.Process("/add 150 to net profit", l))
//	fmt.Println(commands.Process("/net profits", l))
//	// 💰 **Current Net Profits:** $150.00
package commands

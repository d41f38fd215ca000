// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant runs a chat conversation that mixes ledger commands
// with free-text questions answered by a completion service.
package assistant

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/slushie-cfo/internal/config"
	"github.com/jeranaias/slushie-cfo/internal/ollama"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitConfig  = 3
	ExitNetwork = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// CommandFailedError reports that one or more ledger commands in a run
// produced an error result.
type CommandFailedError struct {
	Failed int
	Total  int
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("%d of %d commands failed", e.Failed, e.Total)
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}

	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfig
	}
	var validateErr config.ValidationError
	if errors.As(err, &validateErr) {
		return ExitConfig
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return ExitConfig
	}

	if errors.Is(err, ollama.ErrNotRunning) || errors.Is(err, ollama.ErrTimeout) {
		return ExitNetwork
	}

	return ExitError
}

// DisplayError writes err to w, as JSON when jsonMode is set.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		payload := struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
			Code    int    `json:"code"`
		}{false, err.Error(), GetExitCode(err)}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err)

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(w, DimStyle.Render("Run 'slushie help' for usage."))
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information, set at build time via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command represents a top-level CLI command.
type Command int

const (
	CmdChat Command = iota
	CmdRun
	CmdMCP
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[string]Command{
	"chat":    CmdChat,
	"run":     CmdRun,
	"mcp":     CmdMCP,
	"config":  CmdConfig,
	"version": CmdVersion,
	"help":    CmdHelp,
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "unknown"
}

// Args holds parsed command-line arguments.
type Args struct {
	Command Command

	// Global flags
	ConfigPath string
	Model      string
	Quiet      bool
	Verbose    bool
	JSON       bool
	NoColor    bool

	// Rest holds the command's own arguments. For run they are passed
	// through verbatim.
	Rest []string
}

const usageText = `slushie - CFO assistant for a family slushie stand

USAGE:
    slushie [flags] [command] [args...]

COMMANDS:
    chat                 Interactive session (default)
    run [command...]     Run ledger commands from args, or stdin if none
    mcp                  Serve ledger tools over MCP (stdio)
    config [sub]         show | path | keys | get KEY | set KEY VALUE | init
    version              Show version information
    help                 Show this help

FLAGS:
    -c, --config PATH    Config file (default ~/.slushie/config.toml)
    -m, --model NAME     Ollama model to use
    -q, --quiet          Minimal output
    -v, --verbose        Debug logging
        --json           JSON output (run, config show)
        --no-color       Disable colors

EXAMPLES:
    slushie
    slushie run "/add 25.50 to net profit" "/status"
    echo "/calculate margin 10 4" | slushie run
    slushie config set assistant.tone encouraging

In chat, lines starting with / are ledger commands; type /help for the list.
Anything else is sent to the assistant.
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "slushie %s\n", Version)
	fmt.Fprintf(w, "  Commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments, excluding the program name.
// Global flags may appear before or after the command word, except for
// run, whose arguments after the command word are ledger commands.
func Parse(argv []string) (Args, error) {
	var args Args

	rest, err := parseGlobalFlags(&args, argv, true)
	if err != nil {
		return args, err
	}
	if len(rest) == 0 {
		args.Command = CmdChat
		return args, nil
	}

	name := strings.ToLower(rest[0])
	switch name {
	case "--version", "-V":
		args.Command = CmdVersion
		return args, nil
	case "--help", "-h":
		args.Command = CmdHelp
		return args, nil
	}
	cmd, ok := commandNames[name]
	if !ok {
		return args, &UsageError{Message: fmt.Sprintf("unknown command %q", rest[0])}
	}
	args.Command = cmd

	if cmd == CmdRun {
		args.Rest = rest[1:]
		if len(args.Rest) > 0 && args.Rest[0] == "--" {
			args.Rest = args.Rest[1:]
		}
		return args, nil
	}

	args.Rest, err = parseGlobalFlags(&args, rest[1:], false)
	return args, err
}

// parseGlobalFlags consumes recognized flags from argv. With stopAtWord
// it stops at the first non-flag argument; otherwise flags are pulled out
// wherever they occur.
func parseGlobalFlags(args *Args, argv []string, stopAtWord bool) ([]string, error) {
	var rest []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			return append(rest, argv[i+1:]...), nil
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			if stopAtWord {
				return append(rest, argv[i:]...), nil
			}
			rest = append(rest, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(argv) {
				return "", &UsageError{Message: fmt.Sprintf("flag %s needs a value", name)}
			}
			i++
			return argv[i], nil
		}

		switch name {
		case "-c", "--config":
			v, err := takeValue()
			if err != nil {
				return nil, err
			}
			args.ConfigPath = v
		case "-m", "--model":
			v, err := takeValue()
			if err != nil {
				return nil, err
			}
			args.Model = v
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--no-color":
			args.NoColor = true
		case "--version", "-V", "--help", "-h":
			if stopAtWord {
				return append(rest, argv[i:]...), nil
			}
			rest = append(rest, arg)
		default:
			return nil, &UsageError{Message: fmt.Sprintf("unknown flag %s", arg)}
		}
	}
	return rest, nil
}

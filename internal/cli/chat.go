// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"

	"github.com/jeranaias/slushie-cfo/internal/assistant"
	"github.com/jeranaias/slushie-cfo/internal/commands"
	"github.com/jeranaias/slushie-cfo/internal/config"
	"github.com/jeranaias/slushie-cfo/internal/money"
	"github.com/jeranaias/slushie-cfo/internal/util"
)

// hostCommands are handled by the chat front end rather than the ledger
// interpreter.
var hostCommands = map[string]string{
	"/quit":       "Exit the session",
	"/exit":       "Exit the session",
	"/history":    "Show the conversation so far",
	"/new":        "Start a new conversation (ledger is kept)",
	"/context":    "Show or change the business context",
	"/tone":       "Show or change the response tone",
	"/background": "Show, set, or clear the business background",
}

// =============================================================================
// LINE EDITING
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with tab completion from completer.
func NewChatCLI(completer *commands.Completer) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(completer.Lines)

	c := &ChatCLI{line: line}
	if dir, err := config.ConfigDir(); err == nil {
		c.historyFile = filepath.Join(dir, "chat_history")
		c.loadHistory()
	}
	return c
}

func (c *ChatCLI) loadHistory() {
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.ReadHistory(f)
}

// ReadInput prompts for one line and records it in history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (c *ChatCLI) Close() error {
	if c.historyFile != "" {
		if err := config.EnsureConfigDir(); err == nil {
			var b strings.Builder
			if _, err := c.line.WriteHistory(&b); err == nil {
				_ = util.AtomicWriteFile(c.historyFile, []byte(b.String()), 0o600)
			}
		}
	}
	return c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession runs one interactive conversation.
type ChatSession struct {
	app     *App
	session *assistant.Session
	out     io.Writer
	md      *markdownRenderer
	quiet   bool

	startTime time.Time
	turns     int
}

// NewChatSession creates a chat session writing to out.
func NewChatSession(app *App, out io.Writer, quiet bool) *ChatSession {
	return &ChatSession{
		app:       app,
		session:   app.NewSession(),
		out:       out,
		md:        newMarkdownRenderer(app.Config.UI.Markdown),
		quiet:     quiet,
		startTime: time.Now(),
	}
}

// HandleChat runs the interactive chat REPL.
func HandleChat(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.StartAutoSync(ctx, nil)

	cs := NewChatSession(app, os.Stdout, args.Quiet)
	watchConfig(ctx, app, args, cs.session)
	if !args.Quiet {
		cs.printWelcome()
	}
	cs.checkOllama(ctx)

	completer := commands.NewCompleter(app.Interp.Registry())
	completer.ExtraKeywords = hostCommands
	input := NewChatCLI(completer)
	defer input.Close()

	// SIGTERM ends the session. SIGINT during a reply is handled per turn.
	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGTERM)
	defer signal.Stop(term)
	go func() {
		<-term
		cancel()
	}()

	for ctx.Err() == nil {
		line, err := input.ReadInput("slushie> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		keepGoing := cs.HandleLine(turnCtx, line)
		stop()
		if !keepGoing {
			break
		}
	}

	if !args.Quiet {
		cs.printExitSummary()
	}
	return nil
}

// HandleLine processes one line of input and reports whether the session
// should continue.
func (cs *ChatSession) HandleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	if commands.IsCommand(line) {
		if cont, handled := cs.handleHostCommand(line); handled {
			return cont
		}
		cs.runCommand(ctx, line)
		return true
	}

	cs.ask(ctx, line)
	return true
}

func (cs *ChatSession) runCommand(ctx context.Context, line string) {
	res := cs.session.RunCommand(ctx, line)
	cs.turns++
	fmt.Fprintln(cs.out, cs.md.Render(res.Text))

	if strings.EqualFold(commands.ExtractCommandName(line), "/help") {
		cs.printHostHelp()
	}
}

func (cs *ChatSession) ask(ctx context.Context, prompt string) {
	cs.turns++
	if !cs.quiet {
		fmt.Fprintln(cs.out, assistantStyle.Render("CFO:"))
	}

	if cs.md.Enabled() {
		var b strings.Builder
		for chunk := range cs.session.Ask(ctx, prompt) {
			b.WriteString(chunk)
		}
		fmt.Fprintln(cs.out, cs.md.Render(b.String()))
		return
	}

	for chunk := range cs.session.Ask(ctx, prompt) {
		fmt.Fprint(cs.out, chunk)
	}
	fmt.Fprintln(cs.out)
}

func (cs *ChatSession) checkOllama(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cs.app.Client.CheckRunning(checkCtx); err != nil {
		cs.app.Logger.Warn("ollama unavailable", "error", err)
		fmt.Fprintln(cs.out, WarningStyle.Render(fmt.Sprintf(
			"Ollama is not reachable at %s. Ledger commands work; questions will fail until it is running.",
			cs.app.Client.Config().BaseURL)))
	}
}

// =============================================================================
// HOST COMMANDS
// =============================================================================

// handleHostCommand runs chat-level commands. handled is false when the
// line belongs to the ledger interpreter.
func (cs *ChatSession) handleHostCommand(line string) (cont, handled bool) {
	name := strings.ToLower(commands.ExtractCommandName(line))
	if _, ok := hostCommands[name]; !ok {
		return true, false
	}
	rest := strings.TrimSpace(strings.TrimSpace(line)[len(name):])

	switch name {
	case "/quit", "/exit":
		return false, true

	case "/history":
		cs.printHistory()

	case "/new":
		cs.session.ClearHistory()
		fmt.Fprintln(cs.out, SuccessStyle.Render("Started a new conversation. Ledger data is unchanged."))

	case "/context":
		cs.choose(rest, assistant.Contexts, cs.session.Profile().Context, cs.session.SetContext, "Context")

	case "/tone":
		cs.choose(rest, assistant.Tones, cs.session.Profile().Tone, cs.session.SetTone, "Tone")

	case "/background":
		switch {
		case rest == "":
			bg := cs.session.Profile().Background
			if bg == "" {
				bg = "(none)"
			}
			fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Background:"), bg)
		case strings.EqualFold(rest, "clear"):
			cs.session.SetBackground("")
			fmt.Fprintln(cs.out, SuccessStyle.Render("Background cleared."))
		default:
			cs.session.SetBackground(rest)
			fmt.Fprintln(cs.out, SuccessStyle.Render("Background updated."))
		}
	}
	return true, true
}

// choose lists choices when name is empty, otherwise applies set.
func (cs *ChatSession) choose(name string, choices []string, current string, set func(string) (string, error), label string) {
	if name == "" {
		fmt.Fprintln(cs.out, SectionStyle.Render(label+"s:"))
		for _, c := range choices {
			marker := "  "
			if c == current {
				marker = "* "
			}
			fmt.Fprintf(cs.out, "%s%s\n", marker, c)
		}
		return
	}

	chosen, err := set(name)
	switch {
	case errors.Is(err, assistant.ErrAmbiguousChoice):
		fmt.Fprintln(cs.out, WarningStyle.Render(fmt.Sprintf("%q matches more than one %s.", name, strings.ToLower(label))))
	case err != nil:
		fmt.Fprintln(cs.out, ErrorStyle.Render(fmt.Sprintf("Unknown %s %q.", strings.ToLower(label), name)))
	default:
		fmt.Fprintln(cs.out, SuccessStyle.Render(fmt.Sprintf("%s set to %s.", label, chosen)))
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func (cs *ChatSession) printWelcome() {
	p := cs.session.Profile()
	fmt.Fprintln(cs.out, TitleStyle.Render("Slushie CFO"))
	fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Model:"), cs.app.Service.Model())
	fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Context:"), p.Context)
	fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Tone:"), p.Tone)
	fmt.Fprintln(cs.out, DimStyle.Render("Type /help for ledger commands, /quit to exit."))
	fmt.Fprintln(cs.out)
}

func (cs *ChatSession) printHostHelp() {
	fmt.Fprintln(cs.out, SectionStyle.Render("Chat commands:"))
	names := make([]string, 0, len(hostCommands))
	for name := range hostCommands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(cs.out, "  %s %s\n", commandStyle.Render(fmt.Sprintf("%-12s", name)), hostCommands[name])
	}
}

// printHistory prints the conversation, one line per message.
func (cs *ChatSession) printHistory() {
	history := cs.session.History()
	if len(history) == 0 {
		fmt.Fprintln(cs.out, DimStyle.Render("No messages yet."))
		return
	}

	width := GetTerminalWidth() - 12
	fmt.Fprintln(cs.out, SectionStyle.Render("Conversation History"))
	for i, msg := range history {
		role := "You"
		if msg.Role == assistant.RoleAssistant {
			role = "CFO"
		}
		fmt.Fprintf(cs.out, "%3d. %-4s %s\n", i+1, role+":", util.TruncateWidth(util.OneLine(msg.Content), width))
	}
}

func (cs *ChatSession) printExitSummary() {
	snap := cs.app.Ledger.Snapshot()
	fmt.Fprintln(cs.out)
	fmt.Fprintln(cs.out, Separator())
	fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Session length:"),
		strings.TrimSpace(humanize.RelTime(cs.startTime, time.Now(), "", "")))
	fmt.Fprintf(cs.out, "%s %d\n", LabelStyle.Render("Turns:"), cs.turns)
	fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Net profit:"), money.FormatCurrency(snap.NetProfit))
	fmt.Fprintf(cs.out, "%s %s\n", LabelStyle.Render("Slushies sold:"), money.FormatUnits(snap.TotalSales))
	fmt.Fprintln(cs.out, Separator())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mcpserver exposes the ledger commands as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jeranaias/slushie-cfo/internal/commands"
	"github.com/jeranaias/slushie-cfo/internal/money"
)

// Name is the server name reported to MCP clients.
const Name = "slushie"

// calculations maps a calculate tool kind to its command prefix.
var calculations = map[string]string{
	"margin":     "/calculate margin",
	"markup":     "/calculate markup",
	"discount":   "/calculate discount",
	"tax":        "/calculate tax",
	"tip":        "/calculate tip",
	"inventory":  "/calculate inventory",
	"roi":        "/calculate roi",
	"break_even": "/break even",
}

var calculationKinds = []string{"margin", "markup", "discount", "tax", "tip", "inventory", "roi", "break_even"}

// New creates an MCP server with every tool registered against interp.
func New(interp *commands.Interpreter, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Bookkeeping for a family-run slushie stand. "+
			"Use run_command with the same slash commands a person would type; /help lists them."),
	)
	RegisterTools(s, interp)
	return s
}

// Serve answers MCP requests on r and w until ctx is cancelled or r closes.
func Serve(ctx context.Context, s *server.MCPServer, r io.Reader, w io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, r, w)
}

// RegisterTools adds all slushie tools to the server.
func RegisterTools(s *server.MCPServer, interp *commands.Interpreter) {
	registerRunCommand(s, interp)
	registerLedgerStatus(s, interp)
	registerCalculate(s, interp)
}

func registerRunCommand(s *server.MCPServer, interp *commands.Interpreter) {
	tool := mcp.NewTool("run_command",
		mcp.WithDescription("Run one slash command against the ledger, exactly as typed in the chat, e.g. `/add 25 to net profit` or `/venmo sync`. Returns the command's response text."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The command line, starting with /"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		line, err := request.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError("command is required"), nil
		}
		return toolResult(interp.Execute(ctx, line)), nil
	})
}

// statusView is the structured form of the ledger status.
type statusView struct {
	NetProfit     string   `json:"net_profit"`
	TotalSales    int64    `json:"total_sales"`
	BestDay       string   `json:"best_day"`
	Notes         []string `json:"notes"`
	FeedConnected bool     `json:"feed_connected"`
	AutoSync      bool     `json:"auto_sync"`
	SyncInterval  int      `json:"sync_interval_minutes"`
	DailyTotal    string   `json:"daily_total"`
	Transactions  int      `json:"transactions"`
}

func registerLedgerStatus(s *server.MCPServer, interp *commands.Interpreter) {
	tool := mcp.NewTool("ledger_status",
		mcp.WithDescription("Get the current business metrics, notes and payment feed state."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := interp.Ledger().Snapshot()
		view := statusView{
			NetProfit:     money.FormatCurrency(snap.NetProfit),
			TotalSales:    snap.TotalSales,
			BestDay:       snap.BestDay,
			Notes:         snap.Notes,
			FeedConnected: snap.Feed.Connected,
			AutoSync:      snap.Feed.AutoSync,
			SyncInterval:  snap.Feed.SyncIntervalMinutes,
			DailyTotal:    money.FormatCurrency(snap.Feed.DailyTotal),
			Transactions:  len(snap.Feed.Transactions),
		}
		if view.Notes == nil {
			view.Notes = []string{}
		}
		text := interp.Execute(ctx, "/status").Text
		return mcp.NewToolResultStructured(view, text), nil
	})
}

func registerCalculate(s *server.MCPServer, interp *commands.Interpreter) {
	tool := mcp.NewTool("calculate",
		mcp.WithDescription("Run a business calculator. Arguments by kind: "+
			"margin(revenue, costs), markup(cost, percent), discount(price, percent), "+
			"tax(amount, rate), tip(bill, percent), inventory(stock, daily_usage), "+
			"roi(investment, returns), break_even(fixed_costs, price_per_unit, variable_cost_per_unit)."),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Enum(calculationKinds...),
			mcp.Description("Which calculator to run"),
		),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First argument")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second argument")),
		mcp.WithNumber("c", mcp.Description("Third argument (break_even only)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError("kind is required"), nil
		}
		prefix, ok := calculations[kind]
		if !ok {
			return mcp.NewToolResultErrorf("unknown kind %q, want one of: %s", kind, strings.Join(calculationKinds, ", ")), nil
		}

		a, errA := request.RequireFloat("a")
		b, errB := request.RequireFloat("b")
		if errA != nil || errB != nil {
			return mcp.NewToolResultError("a and b are required numbers"), nil
		}
		args := []string{formatNumber(a), formatNumber(b)}

		if kind == "break_even" {
			c, err := request.RequireFloat("c")
			if err != nil {
				return mcp.NewToolResultError("break_even needs c (variable cost per unit)"), nil
			}
			args = append(args, formatNumber(c))
		}

		line := fmt.Sprintf("%s %s", prefix, strings.Join(args, " "))
		return toolResult(interp.Execute(ctx, line)), nil
	})
}

func toolResult(res commands.Result) *mcp.CallToolResult {
	if res.Kind.IsError() {
		return mcp.NewToolResultError(res.Text)
	}
	return mcp.NewToolResultText(res.Text)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

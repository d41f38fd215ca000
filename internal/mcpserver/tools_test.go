// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/slushie-cfo/internal/commands"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
)

func call(t *testing.T, interp *commands.Interpreter, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := New(interp, "test")
	st := s.GetTool(tool)
	require.NotNil(t, st, "tool %s not registered", tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	res, err := st.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestToolsRegistered(t *testing.T) {
	s := New(commands.New(ledger.New()), "test")
	for _, name := range []string{"run_command", "ledger_status", "calculate"} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestRunCommand(t *testing.T) {
	l := ledger.New()
	interp := commands.New(l)

	res := call(t, interp, "run_command", map[string]any{"command": "/add 42.50 to net profit"})
	assert.False(t, res.IsError)
	assert.Equal(t, "✅ Added $42.50 to net profits. New total: $42.50", text(t, res))
	assert.Equal(t, "42.5", l.NetProfit().String())
}

func TestRunCommandFailuresAreToolErrors(t *testing.T) {
	interp := commands.New(ledger.New())

	res := call(t, interp, "run_command", map[string]any{"command": "/venmo sync"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not connected")

	res = call(t, interp, "run_command", map[string]any{})
	assert.True(t, res.IsError)
}

func TestLedgerStatus(t *testing.T) {
	l := ledger.New()
	interp := commands.New(l)
	interp.Execute(context.Background(), "/add 7 to sales")
	interp.Execute(context.Background(), "/add note restock cups")

	res := call(t, interp, "ledger_status", nil)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "7")

	view, ok := res.StructuredContent.(statusView)
	require.True(t, ok, "structured content is %T", res.StructuredContent)
	assert.Equal(t, int64(7), view.TotalSales)
	assert.Equal(t, "$0.00", view.NetProfit)
	assert.Equal(t, []string{"restock cups"}, view.Notes)
	assert.False(t, view.FeedConnected)
	assert.Equal(t, 5, view.SyncInterval)
}

func TestCalculate(t *testing.T) {
	interp := commands.New(ledger.New())

	tests := []struct {
		args map[string]any
		want string
	}{
		{map[string]any{"kind": "roi", "a": 100.0, "b": 150.0}, "ROI: 50.0%"},
		{map[string]any{"kind": "margin", "a": 200.0, "b": 150.0}, "Margin: 25.0%"},
		{map[string]any{"kind": "break_even", "a": 100.0, "b": 5.0, "c": 3.0}, "Break-Even Units: 50"},
	}

	for _, tc := range tests {
		res := call(t, interp, "calculate", tc.args)
		assert.False(t, res.IsError, "%v", tc.args)
		assert.Contains(t, text(t, res), tc.want)
	}
}

func TestCalculateErrors(t *testing.T) {
	interp := commands.New(ledger.New())

	tests := []map[string]any{
		{"kind": "astrology", "a": 1.0, "b": 2.0},
		{"kind": "tax", "a": 1.0},
		{"kind": "break_even", "a": 1.0, "b": 2.0},
		{"a": 1.0, "b": 2.0},
	}
	for _, args := range tests {
		res := call(t, interp, "calculate", args)
		assert.True(t, res.IsError, "%v", args)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		5:      "5",
		8.25:   "8.25",
		1000.5: "1000.5",
	}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

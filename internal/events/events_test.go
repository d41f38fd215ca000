// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerChanged(t *testing.T) {
	at := time.Date(2025, 7, 4, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))
	a := NewLedgerChanged("add_net_profit", "/add 5 to net profit", at)
	b := NewLedgerChanged("add_net_profit", "/add 5 to net profit", at)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.OccurredAt.Location())
	assert.True(t, a.OccurredAt.Equal(at))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, LedgerChanged{Command: "a"}))
	require.NoError(t, r.Publish(ctx, LedgerChanged{Command: "b"}))

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Command)

	got[0].Command = "changed"
	assert.Equal(t, "a", r.Events()[0].Command)
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "")
	assert.ErrorIs(t, err, ErrNoBrokers)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, p.Topic())
	require.NoError(t, p.Close())
}

func TestEncodeMessage(t *testing.T) {
	event := NewLedgerChanged("set_total_sales", "/set total sales 40", time.Now())
	event.NetProfit = decimal.RequireFromString("12.50")
	event.TotalSales = 40

	msg, err := encodeMessage(event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "set_total_sales", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "12.5", decoded["net_profit"])
	assert.Equal(t, float64(40), decoded["total_sales"])
}

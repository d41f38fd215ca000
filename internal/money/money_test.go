// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"150", "150", false},
		{"-12.5", "-12.5", false},
		{"0.005", "0.005", false},
		{"1,250.75", "1250.75", false},
		{"$40", "40", false},
		{"-$3.10", "-3.1", false},
		{"1e3", "1000", false},
		{"", "", true},
		{"abc", "", true},
		{"12abc", "", true},
		{"NaN", "", true},
		{"inf", "", true},
		{"1e15", "1000000000000000", false},
		{"-1e15", "-1000000000000000", false},
		{"1000000000000000.01", "", true},
		{"1e16", "", true},
		{"1e5000000", "", true},
		{"-1e5000000", "", true},
		{"1e-5000000", "", true},
		{"0.0000000000000000001", "", true},
	}

	for _, tc := range tests {
		got, err := ParseAmount(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) = %v, want error", tc.input, got)
			} else if !errors.Is(err, ErrInvalidNumber) {
				t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidNumber", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"-3", -3, false},
		{"+7", 7, false},
		{"1,000", 1000, false},
		{"2.5", 0, true},
		{"$5", 0, true},
		{"ten", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseUnits(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseUnits(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseUnits(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "$0.00"},
		{"150", "$150.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-5", "$-5.00"},
		{"-1234.5", "$-1,234.50"},
		{"0.005", "$0.01"},
		{"-0.001", "$0.00"},
	}

	for _, tc := range tests {
		got := FormatCurrency(decimal.RequireFromString(tc.input))
		if got != tc.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}

	for _, tc := range tests {
		if got := FormatUnits(tc.input); got != tc.want {
			t.Errorf("FormatUnits(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormatPercentAndWhole(t *testing.T) {
	if got := FormatPercent(decimal.RequireFromString("33.3333")); got != "33.3%" {
		t.Errorf("FormatPercent = %q, want 33.3%%", got)
	}
	if got := FormatPercent(decimal.Zero); got != "0.0%" {
		t.Errorf("FormatPercent(0) = %q, want 0.0%%", got)
	}
	if got := FormatWhole(decimal.RequireFromString("1666.6667")); got != "1,667" {
		t.Errorf("FormatWhole = %q, want 1,667", got)
	}
	if got := FormatQuantity(decimal.RequireFromString("12.25")); got != "12.3" {
		t.Errorf("FormatQuantity = %q, want 12.3", got)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package calc implements the business calculators behind /profit margin,
// /break even and /calculate.
//
// Every function is pure. A zero or negative denominator yields a zero
// result rather than an error, except InventoryDaysRemaining which reports
// an unlimited supply through Infinite.
package calc

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// percentOf returns base*pct/100.
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// Margin is the result of ProfitMargin.
type Margin struct {
	Revenue   decimal.Decimal
	Costs     decimal.Decimal
	Profit    decimal.Decimal
	MarginPct decimal.Decimal
}

// ProfitMargin computes profit and margin percentage. The margin is zero
// unless revenue is positive.
func ProfitMargin(revenue, costs decimal.Decimal) Margin {
	m := Margin{
		Revenue:   revenue,
		Costs:     costs,
		Profit:    revenue.Sub(costs),
		MarginPct: decimal.Zero,
	}
	if revenue.IsPositive() {
		m.MarginPct = m.Profit.Div(revenue).Mul(hundred)
	}
	return m
}

// BreakEvenResult is the result of BreakEven.
type BreakEvenResult struct {
	FixedCosts         decimal.Decimal
	Price              decimal.Decimal
	VariableCost       decimal.Decimal
	ContributionMargin decimal.Decimal
	Units              decimal.Decimal
}

// BreakEven computes the units needed to cover fixed costs. Units is zero
// when the contribution margin is not positive.
func BreakEven(fixedCosts, price, variableCost decimal.Decimal) BreakEvenResult {
	r := BreakEvenResult{
		FixedCosts:         fixedCosts,
		Price:              price,
		VariableCost:       variableCost,
		ContributionMargin: price.Sub(variableCost),
		Units:              decimal.Zero,
	}
	if r.ContributionMargin.IsPositive() {
		r.Units = fixedCosts.Div(r.ContributionMargin)
	}
	return r
}

// MarkupResult is the result of Markup.
type MarkupResult struct {
	Cost         decimal.Decimal
	Pct          decimal.Decimal
	Amount       decimal.Decimal
	SellingPrice decimal.Decimal
}

// Markup applies a percentage markup to a cost.
func Markup(cost, pct decimal.Decimal) MarkupResult {
	amount := percentOf(cost, pct)
	return MarkupResult{Cost: cost, Pct: pct, Amount: amount, SellingPrice: cost.Add(amount)}
}

// DiscountResult is the result of Discount.
type DiscountResult struct {
	OriginalPrice decimal.Decimal
	Pct           decimal.Decimal
	Amount        decimal.Decimal
	FinalPrice    decimal.Decimal
}

// Discount takes a percentage off a price.
func Discount(price, pct decimal.Decimal) DiscountResult {
	amount := percentOf(price, pct)
	return DiscountResult{OriginalPrice: price, Pct: pct, Amount: amount, FinalPrice: price.Sub(amount)}
}

// TaxResult is the result of Tax.
type TaxResult struct {
	Amount    decimal.Decimal
	RatePct   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Tax adds a percentage tax to an amount.
func Tax(amount, ratePct decimal.Decimal) TaxResult {
	tax := percentOf(amount, ratePct)
	return TaxResult{Amount: amount, RatePct: ratePct, TaxAmount: tax, Total: amount.Add(tax)}
}

// TipResult is the result of Tip.
type TipResult struct {
	Bill      decimal.Decimal
	Pct       decimal.Decimal
	TipAmount decimal.Decimal
	Total     decimal.Decimal
}

// Tip adds a percentage tip to a bill.
func Tip(bill, pct decimal.Decimal) TipResult {
	tip := percentOf(bill, pct)
	return TipResult{Bill: bill, Pct: pct, TipAmount: tip, Total: bill.Add(tip)}
}

// InventoryResult is the result of InventoryDaysRemaining.
type InventoryResult struct {
	Stock      decimal.Decimal
	DailyUsage decimal.Decimal
	Days       decimal.Decimal

	// Infinite is set when daily usage is not positive; Days is zero then.
	Infinite bool
}

// InventoryDaysRemaining estimates how many days stock lasts at the given
// daily usage.
func InventoryDaysRemaining(stock, dailyUsage decimal.Decimal) InventoryResult {
	r := InventoryResult{Stock: stock, DailyUsage: dailyUsage, Days: decimal.Zero}
	if !dailyUsage.IsPositive() {
		r.Infinite = true
		return r
	}
	r.Days = stock.Div(dailyUsage)
	return r
}

// ROIResult is the result of ROI.
type ROIResult struct {
	Investment decimal.Decimal
	Returns    decimal.Decimal
	Pct        decimal.Decimal
}

// ROI computes return on investment as a percentage. It is zero unless the
// investment is positive.
func ROI(investment, returns decimal.Decimal) ROIResult {
	r := ROIResult{Investment: investment, Returns: returns, Pct: decimal.Zero}
	if investment.IsPositive() {
		r.Pct = returns.Sub(investment).Div(investment).Mul(hundred)
	}
	return r
}

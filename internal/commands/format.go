// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/slushie-cfo/internal/calc"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/money"
	"github.com/jeranaias/slushie-cfo/internal/payments"
)

// recentTransactions is how many records /venmo transactions shows.
const recentTransactions = 10

// InfiniteDays is shown instead of a day count when daily usage is zero.
const InfiniteDays = "unlimited (no daily usage)"

// =============================================================================
// HELP TEXT
// =============================================================================

// GenerateHelpText renders every visible command grouped by category.
func GenerateHelpText(r *Registry) string {
	var sb strings.Builder
	sb.WriteString("📋 **Available Commands:**\n")

	categories := r.ByCategory()
	for _, category := range orderedCategories(categories) {
		sb.WriteString("\n**" + category + ":**\n")
		for _, cmd := range categories[category] {
			sb.WriteString("• `" + cmd.Usage + "` - " + cmd.Description + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// GenerateQuickHelp renders just the usage strings, one category per line.
func GenerateQuickHelp(r *Registry) string {
	var sb strings.Builder
	sb.WriteString("⚡ **Commands:**")

	categories := r.ByCategory()
	for _, category := range orderedCategories(categories) {
		usages := make([]string, 0, len(categories[category]))
		for _, cmd := range categories[category] {
			usages = append(usages, "`"+cmd.Usage+"`")
		}
		sb.WriteString("\n**" + category + ":** " + strings.Join(usages, ", "))
	}
	return sb.String()
}

// GenerateCategoryHelp renders the commands of one category.
func GenerateCategoryHelp(r *Registry, category string) string {
	var sb strings.Builder
	sb.WriteString("**" + category + " Commands:**")
	for _, cmd := range r.ByCategory()[category] {
		sb.WriteString("\n• `" + cmd.Usage + "` - " + cmd.Description)
	}
	return sb.String()
}

// orderedCategories returns the known categories first, then any others
// alphabetically.
func orderedCategories(categories map[string][]*Command) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range categoryOrder {
		if len(categories[c]) > 0 {
			out = append(out, c)
			seen[c] = true
		}
	}
	var extra []string
	for c := range categories {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// =============================================================================
// LEDGER VIEWS
// =============================================================================

func yesNo(b bool) string {
	if b {
		return "✅ Yes"
	}
	return "❌ No"
}

func onOff(b bool) string {
	if b {
		return "✅ On"
	}
	return "❌ Off"
}

func formatStatus(s ledger.Snapshot) string {
	lines := []string{
		"📊 **Current Status:**",
		"• Net Profits: " + money.FormatCurrency(s.NetProfit),
		"• Total Sales: " + money.FormatUnits(s.TotalSales) + " units",
		"• Best Day: " + s.BestDay,
		fmt.Sprintf("• Notes: %d saved", len(s.Notes)),
		"• Venmo Connected: " + yesNo(s.Feed.Connected),
		"• Auto Sync: " + onOff(s.Feed.AutoSync),
	}
	return strings.Join(lines, "\n")
}

func formatNotes(notes []string) string {
	if len(notes) == 0 {
		return "📝 No notes saved yet."
	}
	var sb strings.Builder
	sb.WriteString("📝 **Saved Notes:**")
	for i, note := range notes {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, note)
	}
	return sb.String()
}

// =============================================================================
// CALCULATOR VIEWS
// =============================================================================

func formatMargin(header string, m calc.Margin) string {
	return strings.Join([]string{
		header,
		"Revenue: " + money.FormatCurrency(m.Revenue),
		"Costs: " + money.FormatCurrency(m.Costs),
		"Profit: " + money.FormatCurrency(m.Profit),
		"Margin: " + money.FormatPercent(m.MarginPct),
	}, "\n")
}

func formatBreakEven(r calc.BreakEvenResult) string {
	return strings.Join([]string{
		"📊 **Break-Even Analysis:**",
		"Fixed Costs: " + money.FormatCurrency(r.FixedCosts),
		"Price per Unit: " + money.FormatCurrency(r.Price),
		"Variable Cost per Unit: " + money.FormatCurrency(r.VariableCost),
		"Contribution Margin: " + money.FormatCurrency(r.ContributionMargin),
		"Break-Even Units: " + money.FormatWhole(r.Units),
	}, "\n")
}

func formatMarkup(r calc.MarkupResult) string {
	return strings.Join([]string{
		"🏷️ **Markup Calculation:**",
		"Cost: " + money.FormatCurrency(r.Cost),
		"Markup: " + money.FormatPercent(r.Pct),
		"Markup Amount: " + money.FormatCurrency(r.Amount),
		"Selling Price: " + money.FormatCurrency(r.SellingPrice),
	}, "\n")
}

func formatDiscount(r calc.DiscountResult) string {
	return strings.Join([]string{
		"🏷️ **Discount Calculation:**",
		"Original Price: " + money.FormatCurrency(r.OriginalPrice),
		"Discount: " + money.FormatPercent(r.Pct),
		"Discount Amount: " + money.FormatCurrency(r.Amount),
		"Final Price: " + money.FormatCurrency(r.FinalPrice),
	}, "\n")
}

func formatTax(r calc.TaxResult) string {
	return strings.Join([]string{
		"💰 **Tax Calculation:**",
		"Amount: " + money.FormatCurrency(r.Amount),
		"Tax Rate: " + money.FormatPercent(r.RatePct),
		"Tax Amount: " + money.FormatCurrency(r.TaxAmount),
		"Total with Tax: " + money.FormatCurrency(r.Total),
	}, "\n")
}

func formatTip(r calc.TipResult) string {
	return strings.Join([]string{
		"💡 **Tip Calculation:**",
		"Bill Amount: " + money.FormatCurrency(r.Bill),
		"Tip: " + money.FormatPercent(r.Pct),
		"Tip Amount: " + money.FormatCurrency(r.TipAmount),
		"Total with Tip: " + money.FormatCurrency(r.Total),
	}, "\n")
}

func formatInventory(r calc.InventoryResult) string {
	days := InfiniteDays
	if !r.Infinite {
		days = money.FormatQuantity(r.Days) + " days"
	}
	return strings.Join([]string{
		"📦 **Inventory Analysis:**",
		"Current Stock: " + money.FormatQuantity(r.Stock) + " units",
		"Daily Usage: " + money.FormatQuantity(r.DailyUsage) + " units",
		"Days Remaining: " + days,
	}, "\n")
}

func formatROI(r calc.ROIResult) string {
	return strings.Join([]string{
		"📈 **ROI Calculation:**",
		"Investment: " + money.FormatCurrency(r.Investment),
		"Returns: " + money.FormatCurrency(r.Returns),
		"ROI: " + money.FormatPercent(r.Pct),
	}, "\n")
}

// =============================================================================
// PAYMENT FEED VIEWS
// =============================================================================

func formatSync(provider string, res payments.SyncResult, f ledger.FeedSnapshot) string {
	return strings.Join([]string{
		"✅ **" + provider + " Sync Complete:**",
		fmt.Sprintf("Synced %d new transactions", res.Added),
		"Today's Total: " + money.FormatCurrency(res.DailyTotal),
		"Last Sync: " + f.LastSync.Format("15:04"),
	}, "\n")
}

func formatTransactions(provider string, f ledger.FeedSnapshot) string {
	if len(f.Transactions) == 0 {
		return fmt.Sprintf("📭 No %s transactions found. Try `/venmo sync` to fetch transactions.", provider)
	}

	recent := f.Transactions
	if len(recent) > recentTransactions {
		recent = recent[len(recent)-recentTransactions:]
	}

	var sb strings.Builder
	sb.WriteString("💳 **Recent " + provider + " Transactions:**")
	for _, tx := range recent {
		fmt.Fprintf(&sb, "\n• %s - %s (%s)", money.FormatCurrency(tx.Amount), tx.Note, tx.Time)
	}
	sb.WriteString("\n\nTotal Today: " + money.FormatCurrency(f.DailyTotal))
	return sb.String()
}

package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// RenderTable writes a human-readable summary table to w.
func RenderTable(w io.Writer, st *domain.Stats) {
	fmt.Fprintf(w, "Trade statistics for %s (win mode: %s, run %s)\n\n", st.Wallet, st.WinMode, st.RunID)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Total fills", fmt.Sprintf("%d", st.TotalFills))
	table.Append("Markets traded", fmt.Sprintf("%d", st.MarketsTraded))
	table.Append("Settled markets", fmt.Sprintf("%d", st.SettledMarkets))
	table.Append("Wins / Losses / Flat", fmt.Sprintf("%d / %d / %d", st.Wins, st.Losses, st.NoPosition))
	table.Append("Unsettled or unknown", fmt.Sprintf("%d", st.UnsettledOrUnknown))
	table.Append("Win rate", fmtRatio(st.WinRate, "%.1f%%", 100))
	table.Append("Total buy cost", fmt.Sprintf("$%.2f", st.TotalBuyCost))
	table.Append("Total sell proceeds", fmt.Sprintf("$%.2f", st.TotalSellProceeds))
	table.Append("Settled PnL", fmt.Sprintf("$%.2f", st.SettledPnL))
	table.Append("ROI", fmtRatio(st.ROI, "%.1f%%", 100))
	table.Append("Profit from wins", fmt.Sprintf("$%.2f", st.TotalProfitFromWins))
	table.Append("Loss from losses", fmt.Sprintf("$%.2f", st.TotalLossFromLosses))
	table.Append("Profit factor", fmtRatio(st.ProfitFactor, "%.2f", 1))
	table.Append("Avg win / Avg loss", fmt.Sprintf("$%.2f / $%.2f", st.AvgWin, st.AvgLoss))
	table.Append("Win/loss ratio", fmtRatio(st.WinLossRatio, "%.2f", 1))
	table.Append("Max drawdown", fmt.Sprintf("$%.2f (%.1f%%)", st.MaxDrawdown, st.MaxDrawdownFraction*100))
	table.Append("Max win streak", fmt.Sprintf("%d", st.MaxWinStreak))
	table.Append("Max loss streak", fmt.Sprintf("%d", st.MaxLossStreak))
	if st.MarkToMarket != nil {
		m := st.MarkToMarket
		table.Append("Unresolved markets", fmt.Sprintf("%d", m.UnresolvedMarkets))
		table.Append("Unsettled value (mtm)", fmt.Sprintf("$%.2f", m.UnsettledValue))
		table.Append("PnL incl. unsettled", fmt.Sprintf("$%.2f", m.PnLWithUnsettled))
		table.Append("ROI incl. unsettled", fmt.Sprintf("%.1f%%", m.ROIWithUnsettled*100))
	}
	table.Render()
}

// fmtRatio formats an optional ratio, rendering "n/a" for the undefined
// case instead of a misleading zero.
func fmtRatio(v *float64, format string, scale float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v*scale)
}

// WriteJSON marshals the stats to path with indentation. The file is
// written atomically via a temp file and rename.
func WriteJSON(path string, st *domain.Stats) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("stats: marshal report: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("stats: write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("stats: write report: %w", err)
	}
	return nil
}

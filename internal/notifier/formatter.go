package notifier

import (
	"fmt"
	"html"
	"strings"

	"TrendEdge/internal/model"
	"TrendEdge/internal/report"
)

// maxRows bounds a single message; Telegram rejects texts over 4096 chars.
const maxRows = 25

// FormatScanReport formats a scan report into a Telegram HTML message.
func FormatScanReport(r *model.ScanReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TrendEdge %s scan</b> | %s\n\n", r.Mode, r.FinishedAt.Format("2006-01-02 15:04")))

	if r.Empty() {
		b.WriteString(report.MsgNoSetups + "\n")
	}
	for i, res := range r.Results {
		if i == maxRows {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(r.Results)-maxRows))
			break
		}
		b.WriteString(formatResult(res))
	}

	if len(r.Failures) > 0 {
		b.WriteString("\n⚠️ <b>Skipped:</b>\n")
		for _, f := range r.Failures {
			b.WriteString(fmt.Sprintf("  %s (%s)\n", html.EscapeString(f.Symbol), f.Kind))
		}
	}
	return b.String()
}

func formatResult(res model.ScanResult) string {
	s := res.Snapshot
	sym := html.EscapeString(res.Symbol)
	if res.Verdict.IsBreakout() {
		return fmt.Sprintf("%s <b>%s</b> %s @ %.2f → target %.2f (%.2f%%)\n",
			verdictIcon(res.Verdict), sym, res.Verdict, s.Close, res.Target, res.DistancePct)
	}
	return fmt.Sprintf("%s <b>%s</b> %.2f | RSI %.1f | hist %+.3f | %s\n",
		verdictIcon(res.Verdict), sym, s.Close, s.RSI, s.MACDHist, html.EscapeString(res.Notes))
}

func verdictIcon(v model.Verdict) string {
	switch v {
	case model.VerdictBullish, model.VerdictBreakoutBullish:
		return "🟢"
	case model.VerdictBearish, model.VerdictBreakoutBearish:
		return "🔴"
	}
	return "⚪"
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendEdge/internal/model"
	"TrendEdge/internal/notifier"
	"TrendEdge/internal/report"
	"TrendEdge/internal/scanner"
	"TrendEdge/internal/strategy"
)

var scanFlags struct {
	symbols   string
	period    string
	interval  string
	tolerance float64
	csvPath   string
	mode      string
	start     string
	end       string
	format    string
	notify    bool
	charts    bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan symbols and print the ranked table",
	Long: `Scan loads each symbol, computes its indicators and classifies the latest
fully defined bar. Symbols that fail to load or lack history are reported on
stderr and do not stop the scan.

Examples:
  scanner scan -s AAPL,MSFT,NVDA
  scanner scan -s SPY,QQQ --mode breakout --period 1y --tolerance 0.25 --csv out.csv
  scanner scan -s BTC-USD --interval 1h --start 2024-01-01 --end 2024-03-01 --format json`,
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&scanFlags.symbols, "symbols", "s", "", "comma-separated tickers, e.g. AAPL,MSFT,NVDA")
	f.StringVar(&scanFlags.period, "period", "6mo", "history period (1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
	f.StringVar(&scanFlags.interval, "interval", "1d", "bar interval (1m 5m 15m 30m 1h 1d 1wk)")
	f.Float64Var(&scanFlags.tolerance, "tolerance", 0.0, "price tolerance for band touches")
	f.StringVar(&scanFlags.csvPath, "csv", "", "optional path to save results as CSV")
	f.StringVar(&scanFlags.mode, "mode", "", "classifier mode: momentum or breakout (default from config)")
	f.StringVar(&scanFlags.start, "start", "", "range start date YYYY-MM-DD (overrides --period)")
	f.StringVar(&scanFlags.end, "end", "", "range end date YYYY-MM-DD")
	f.StringVar(&scanFlags.format, "format", "table", "output format: table or json")
	f.BoolVar(&scanFlags.notify, "notify", false, "send the report to Telegram")
	f.BoolVar(&scanFlags.charts, "charts", false, "include full indicator series in JSON output")
}

func parseWindow(period, start, end string) (scanner.Window, error) {
	w := scanner.Window{Period: period}
	if start == "" {
		if end != "" {
			return w, fmt.Errorf("--end requires --start")
		}
		return w, nil
	}
	var err error
	if w.Start, err = time.Parse("2006-01-02", start); err != nil {
		return w, fmt.Errorf("invalid --start: %w", err)
	}
	if end != "" {
		if w.End, err = time.Parse("2006-01-02", end); err != nil {
			return w, fmt.Errorf("invalid --end: %w", err)
		}
	}
	return w, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	flags := cmd.Flags()

	symbols := cfg.Scan.Symbols
	if scanFlags.symbols != "" {
		symbols = []string{scanFlags.symbols}
	}
	if len(scanner.NormalizeSymbols(symbols)) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), report.MsgNoSymbols)
		return errReported
	}
	if scanFlags.format != "table" && scanFlags.format != "json" {
		return fmt.Errorf("unknown --format %q", scanFlags.format)
	}

	period, interval := cfg.Scan.Period, cfg.Scan.Interval
	if flags.Changed("period") {
		period = scanFlags.period
	}
	if flags.Changed("interval") {
		interval = scanFlags.interval
	}
	window, err := parseWindow(period, scanFlags.start, scanFlags.end)
	if err != nil {
		return err
	}

	params := cfg.Scan.Params
	if scanFlags.mode != "" {
		mode, err := strategy.ParseMode(strings.ToLower(scanFlags.mode))
		if err != nil {
			return err
		}
		params.Mode = mode
	}
	if flags.Changed("tolerance") {
		params.Tolerance = scanFlags.tolerance
	}
	params.KeepFrames = scanFlags.charts

	req, err := scanner.NewRequest(symbols, window, interval, params)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.scanner.Run(ctx, req)
	if err != nil {
		return err
	}
	report.WriteFailures(cmd.ErrOrStderr(), rep.Failures)

	if scanFlags.format == "json" {
		if err := report.WriteJSON(out, rep, true); err != nil {
			return err
		}
	} else if err := report.WriteTable(out, rep); err != nil {
		return err
	}

	if !rep.Empty() && scanFlags.csvPath != "" {
		if err := saveCSV(scanFlags.csvPath, rep); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved results to %s\n", scanFlags.csvPath)
	}

	if scanFlags.notify {
		if !cfg.TelegramEnabled() {
			log.Warn().Msg("--notify set but telegram is not configured")
			return nil
		}
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err := tn.SendWithRetry(ctx, notifier.FormatScanReport(rep), 2); err != nil {
			log.Warn().Err(err).Msg("telegram notify failed")
		}
	}
	return nil
}

func saveCSV(path string, rep *model.ScanReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

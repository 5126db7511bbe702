// Package main is the trend scanner CLI.
//
// Usage:
//
//	scanner scan -s AAPL,MSFT --period 6mo --interval 1d
//	scanner scan -s SPY,QQQ --mode breakout --tolerance 0.5 --csv setups.csv
//	scanner serve
//	scanner history --limit 10
package main

import (
	"os"

	"TrendEdge/cmd/scanner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// posgen generates synthetic POS transactions and prints them or their
// analysis digest. Useful for inspecting the data the report workflow feeds
// to the completion model.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/posinsight/posinsight/internal/posdata"
)

var (
	startFlag string
	endFlag   string
	countFlag int
	jsonFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "posgen",
	Short: "Generate synthetic POS transaction data",
	Long: `posgen produces the same synthetic transactions the report service
uses as its demo data source, either as raw JSON or as the textual
digest sent to the completion model.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD, default 7 days ago)")
	rootCmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD, default today)")
	rootCmd.Flags().IntVar(&countFlag, "count", 50, "number of transactions")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "emit raw transactions as JSON instead of the digest")
}

func run(cmd *cobra.Command, args []string) error {
	end := time.Now()
	start := end.AddDate(0, 0, -7)

	var err error
	if startFlag != "" {
		start, err = time.Parse("2006-01-02", startFlag)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}
	if endFlag != "" {
		end, err = time.Parse("2006-01-02", endFlag)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s precedes start date %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	txns := posdata.GenerateTransactions(start, end, countFlag)

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(txns)
	}

	fmt.Print(posdata.FormatForAnalysis(txns))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

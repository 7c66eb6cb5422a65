package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/collector"
	"github.com/koukamap/curator/internal/dedupe"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <csv>",
	Short: "List likely duplicate records in a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoding, _ := cmd.Flags().GetString("encoding")
		records, err := collector.LoadCSV(args[0], encoding)
		if err != nil {
			return eris.Wrap(err, "dedupe: load batch")
		}

		detector := dedupe.NewDetector(cfg.Dedupe)
		pairs := detector.FindDuplicates(records)

		if len(pairs) == 0 {
			fmt.Println("no duplicates found")
			return nil
		}
		for _, p := range pairs {
			fmt.Printf("%s vs %s (%s)\n", p.School1, p.School2, p.Reason)
		}

		zap.L().Info("dedupe complete",
			zap.Int("records", len(records)),
			zap.Int("pairs", len(pairs)),
		)
		return nil
	},
}

func init() {
	dedupeCmd.Flags().String("encoding", "", "input charset (e.g. shift_jis); default UTF-8")
	rootCmd.AddCommand(dedupeCmd)
}

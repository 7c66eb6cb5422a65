package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/collector"
	"github.com/koukamap/curator/internal/dedupe"
	"github.com/koukamap/curator/internal/quality"
	"github.com/koukamap/curator/internal/report"
	"github.com/koukamap/curator/internal/sink"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <csv>",
	Short: "Score a batch and produce a quality report",
	Long:  "Loads a collected batch from CSV, scores every record, detects duplicates, and writes the batch quality report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "evaluate"))

		qcfg := quality.ConfigOrDefault(cfg.Quality)
		if err := quality.ValidateConfig(qcfg); err != nil {
			return err
		}

		encoding, _ := cmd.Flags().GetString("encoding")
		records, err := collector.LoadCSV(args[0], encoding)
		if err != nil {
			return eris.Wrap(err, "evaluate: load batch")
		}
		if len(records) == 0 {
			return eris.New("evaluate: batch is empty")
		}

		scorer := quality.NewScorer(qcfg)
		checks := scorer.AnnotateBatch(records)

		detector := dedupe.NewDetector(cfg.Dedupe)
		dups := detector.FindDuplicates(records)

		rep := report.Summarize(records, checks, dups)
		printSummary(rep)

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(cfg.Report.OutputDir,
				fmt.Sprintf("quality_report_%s.json", time.Now().Format("20060102_150405")))
		}
		if err := sink.WriteJSON(out, rep); err != nil {
			return err
		}

		if xlsxPath, _ := cmd.Flags().GetString("xlsx"); xlsxPath != "" {
			if err := sink.WriteXLSX(xlsxPath, records, rep); err != nil {
				return err
			}
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			batchID, _ := cmd.Flags().GetString("batch-id")
			if batchID == "" {
				batchID = uuid.New().String()
			}
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			if err := st.SaveBatch(ctx, batchID, records); err != nil {
				return err
			}
			if err := st.SaveReport(ctx, batchID, rep); err != nil {
				return err
			}
			log.Info("batch persisted", zap.String("batch_id", batchID))
		}

		log.Info("evaluation complete",
			zap.Int("records", len(records)),
			zap.Float64("average_score", rep.AverageScore),
			zap.Int("duplicates", len(dups)),
			zap.String("report", out),
		)
		return nil
	},
}

// printSummary renders the operator-facing digest of a batch report.
func printSummary(rep report.Report) {
	fmt.Printf("total records:  %d\n", rep.Summary.TotalRecords)
	fmt.Printf("average score:  %.2f\n", rep.AverageScore)
	fmt.Printf("grades:         A=%d B=%d C=%d D=%d\n",
		rep.GradeDistribution.A, rep.GradeDistribution.B,
		rep.GradeDistribution.C, rep.GradeDistribution.D)
	if len(rep.Duplicates) > 0 {
		fmt.Printf("duplicates:     %d pairs\n", len(rep.Duplicates))
		for i, d := range rep.Duplicates {
			if i == 5 {
				fmt.Printf("  ... and %d more\n", len(rep.Duplicates)-5)
				break
			}
			fmt.Printf("  - %s vs %s (%s)\n", d.School1, d.School2, d.Reason)
		}
	}
	for _, rec := range rep.Recommendations {
		fmt.Printf("recommendation: %s\n", rec)
	}
}

func init() {
	evaluateCmd.Flags().String("encoding", "", "input charset (e.g. shift_jis); default UTF-8")
	evaluateCmd.Flags().String("out", "", "JSON report path (default quality_report_<ts>.json)")
	evaluateCmd.Flags().String("xlsx", "", "also write an XLSX workbook to this path")
	evaluateCmd.Flags().Bool("save", false, "persist the batch and report to the store")
	evaluateCmd.Flags().String("batch-id", "", "batch id for persistence (default random)")
	rootCmd.AddCommand(evaluateCmd)
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/model"
	"github.com/koukamap/curator/internal/report"
	"github.com/koukamap/curator/internal/sink"
	"github.com/koukamap/curator/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records to an XLSX workbook",
	Long:  "Reads previously persisted records (optionally filtered) and their batch report, and writes the review workbook.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return eris.New("export: --out is required")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		prefecture, _ := cmd.Flags().GetString("prefecture")
		grade, _ := cmd.Flags().GetString("grade")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		limit, _ := cmd.Flags().GetInt("limit")

		records, err := st.ListRecords(ctx, store.RecordFilter{
			Prefecture: prefecture,
			Grade:      model.Grade(grade),
			MinScore:   minScore,
			Limit:      limit,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return eris.New("export: no stored records match the filter")
		}

		rep := report.Report{}
		if batchID, _ := cmd.Flags().GetString("batch-id"); batchID != "" {
			stored, err := st.GetReport(ctx, batchID)
			if err != nil {
				return err
			}
			if stored != nil {
				rep = *stored
			}
		}

		if err := sink.WriteXLSX(out, records, rep); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.Int("records", len(records)),
			zap.String("out", out),
		)
		return nil
	},
}

// openStore creates the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func init() {
	exportCmd.Flags().String("out", "", "workbook path (required)")
	exportCmd.Flags().String("prefecture", "", "filter by prefecture")
	exportCmd.Flags().String("grade", "", "filter by grade (A-D)")
	exportCmd.Flags().Float64("min-score", 0, "filter by minimum score")
	exportCmd.Flags().Int("limit", 0, "limit rows")
	exportCmd.Flags().String("batch-id", "", "include the stored report for this batch in the Summary sheet")
	rootCmd.AddCommand(exportCmd)
}

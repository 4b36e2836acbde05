package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export family groups to an XLSX workbook",
	Example: `  # Every family group of May 2025 still awaiting payment
  clubportal export --month 2025-05 --status pending -o mai.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("month", "", "billing month (YYYY-MM)")
	exportCmd.Flags().String("status", "", "pending, partial or paid")
	exportCmd.Flags().String("name", "", "single payer name")
	exportCmd.Flags().StringP("output", "o", "familles.xlsx", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	month, _ := cmd.Flags().GetString("month")
	status, _ := cmd.Flags().GetString("status")
	name, _ := cmd.Flags().GetString("name")
	output, _ := cmd.Flags().GetString("output")

	filter := billing.Filter{Name: name}
	if month != "" {
		m, err := calendar.ParseMonth(month)
		if err != nil {
			return fmt.Errorf("invalid --month: %w", err)
		}
		filter.Month = m.Key()
	}
	if status != "" {
		s, err := billing.ParseStatus(status)
		if err != nil {
			return fmt.Errorf("invalid --status: %w", err)
		}
		filter.Status = s
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	svc := service.NewInvoiceService(store, document.NewCompiler(cfg.Currency))
	n, err := svc.Export(cmd.Context(), filter, f)
	if err != nil {
		return fmt.Errorf("failed to export family groups: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	slog.Info("Family groups exported", "groups", n, "output", output)
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/service"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compile one invoice to HTML",
	Example: `  # Print an invoice
  clubportal render --invoice 3f2a...

  # Write a membership invoice to a file
  clubportal render --invoice 3f2a... --kind membership_invoice -o facture.html`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("invoice", "", "invoice ID (required)")
	renderCmd.Flags().String("kind", string(document.KindInvoice), "document kind: invoice, club_invoice or membership_invoice")
	renderCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	_ = renderCmd.MarkFlagRequired("invoice")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	invoiceID, _ := cmd.Flags().GetString("invoice")
	kindFlag, _ := cmd.Flags().GetString("kind")
	output, _ := cmd.Flags().GetString("output")

	kind, err := document.ParseKind(kindFlag)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewInvoiceService(store, document.NewCompiler(cfg.Currency))
	html, inv, err := svc.Render(cmd.Context(), invoiceID, kind, service.RenderOptions{})
	if err != nil {
		return fmt.Errorf("failed to render invoice %s: %w", invoiceID, err)
	}

	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), html)
		return err
	}
	if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	slog.Info("Invoice rendered", "invoice_no", inv.InvoiceNo, "kind", kind, "output", output)
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/report"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ledger to an xlsx workbook or csv file",
	Example: `  fincompass export --out ledger.xlsx
  fincompass export --format csv --out - > ledger.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "", "xlsx or csv (default from --out extension, else xlsx)")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file, - for stdout")
	exportCmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Only the last N ledger days (0 = all)")
	addRangeFlags(exportCmd)
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func exportFormat(format, out string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
		if f != "csv" {
			f = "xlsx"
		}
	}
	if f != "xlsx" && f != "csv" {
		return "", fmt.Errorf("unknown export format %q (want xlsx or csv)", format)
	}
	return f, nil
}

func runExport(c *cobra.Command, _ []string) error {
	format, err := exportFormat(flagExportFormat, flagExportOut)
	if err != nil {
		return err
	}
	if format == "xlsx" && flagExportOut == "-" {
		return fmt.Errorf("xlsx cannot be written to stdout; use --format csv or a file path")
	}

	r, err := rangeFromFlags()
	if err != nil {
		return err
	}
	result, err := loadData(c.Context())
	if err != nil {
		return err
	}
	rows := pipeline.Tail(pipeline.FilterByTime(result.Ledger, r.From, r.To), flagDays)

	var w io.Writer = os.Stdout
	if flagExportOut != "-" {
		//nolint:gosec // output path is chosen by the local user
		f, err := os.Create(flagExportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch format {
	case "csv":
		err = report.WriteCSV(w, rows)
	default:
		err = report.WriteXLSX(w, rows, result.Prediction)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}

	log.Debug().Str("format", format).Int("rows", len(rows)).Str("out", flagExportOut).Msg("ledger exported")
	if flagExportOut != "-" {
		fmt.Printf("  Wrote %d ledger rows to %s\n", len(rows), flagExportOut)
	}
	return nil
}

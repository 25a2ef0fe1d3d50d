package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Molly166/LogParser/internal/export"
	"github.com/Molly166/LogParser/internal/model"
	"github.com/Molly166/LogParser/internal/parser"
	"github.com/Molly166/LogParser/internal/store"
)

var (
	parseOutput string
	parseFormat string
	parseShow   bool
	parseStream bool
	parseDB     string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract records from a single log file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := args[0]

		format := parseFormat
		if format == "" {
			format = cfg.Output.Format
		}
		if !export.ValidFormat(format) {
			return eris.Errorf("unsupported format %q (supported: %s)", format, strings.Join(export.Formats, ", "))
		}

		output := parseOutput
		if output == "" {
			output = defaultOutputPath(input, cfg.Output.Dir, format)
		}

		if parseStream {
			if parseDB != "" {
				return eris.New("--db cannot be combined with --stream")
			}
			if parseShow {
				return eris.New("--show cannot be combined with --stream")
			}
			return runParseStream(input, output, format)
		}

		records, stats, err := parser.ParseFile(input)
		if err != nil {
			return err
		}

		if parseShow {
			previewRecords(cmd, records, cfg.Parser.PreviewRecords)
		}

		if err := writeRecords(output, format, records); err != nil {
			return err
		}

		if parseDB != "" {
			if err := storeRecords(ctx, parseDB, input, records, stats); err != nil {
				return err
			}
		}

		zap.L().Info("parse complete",
			zap.String("input", input),
			zap.String("output", output),
			zap.String("format", format),
			zap.Int("processed", stats.Processed),
			zap.Int("skipped", stats.Skipped),
			zap.Int("recovered", stats.Recovered),
			zap.Int("empty", stats.Empty),
		)
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "output file path (default <input>_result.<format>)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format: json, csv, or txt")
	parseCmd.Flags().BoolVar(&parseShow, "show", false, "print a preview of the first records")
	parseCmd.Flags().BoolVar(&parseStream, "stream", false, "stream records to the output one at a time")
	parseCmd.Flags().StringVar(&parseDB, "db", "", "also save records to a SQLite database at this path")
	rootCmd.AddCommand(parseCmd)
}

// defaultOutputPath derives <stem>_result.<format> next to the input file,
// or inside outDir when one is configured.
func defaultOutputPath(input, outDir, format string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem+"_result."+format)
}

func runParseStream(input, output, format string) error {
	st, err := parser.ParseFileStream(input)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := os.Create(output)
	if err != nil {
		return eris.Wrapf(err, "create output %s", output)
	}
	defer out.Close()

	var count int
	switch format {
	case export.FormatJSON:
		count, err = export.StreamJSON(out, st)
	case export.FormatCSV:
		count, err = export.StreamCSV(out, st)
	case export.FormatTXT:
		count, err = export.StreamTXT(out, st)
	}
	if err != nil {
		return err
	}

	stats := st.Stats()
	zap.L().Info("parse complete",
		zap.String("input", input),
		zap.String("output", output),
		zap.String("format", format),
		zap.Int("processed", count),
		zap.Int("skipped", stats.Skipped),
		zap.Int("recovered", stats.Recovered),
		zap.Int("empty", stats.Empty),
	)
	return nil
}

func writeRecords(output, format string, records []model.Record) error {
	out, err := os.Create(output)
	if err != nil {
		return eris.Wrapf(err, "create output %s", output)
	}
	defer out.Close()

	switch format {
	case export.FormatJSON:
		return export.WriteJSON(out, records)
	case export.FormatCSV:
		return export.WriteCSV(out, records)
	case export.FormatTXT:
		return export.WriteTXT(out, records)
	}
	return eris.Errorf("unsupported format %q", format)
}

func storeRecords(ctx context.Context, dbPath, input string, records []model.Record, stats model.Stats) error {
	db, err := store.NewSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	batch, err := db.CreateBatch(ctx, input)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := db.SaveRecord(ctx, batch.ID, rec); err != nil {
			return err
		}
	}
	if err := db.FinishBatch(ctx, batch.ID, stats); err != nil {
		return err
	}

	zap.L().Info("records stored",
		zap.String("db", dbPath),
		zap.String("batch_id", batch.ID),
		zap.Int("records", len(records)),
	)
	return nil
}

func previewRecords(cmd *cobra.Command, records []model.Record, limit int) {
	n := len(records)
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		r := records[i]
		fmt.Fprintf(cmd.OutOrStdout(), "record %d (line %d):\n", i+1, r.LineNumber)
		fmt.Fprintf(cmd.OutOrStdout(), "  query: %s\n", derefOr(r.Query, "(missing)"))
		fmt.Fprintf(cmd.OutOrStdout(), "  bill_info: %s\n", derefOr(r.BillInfo, "(missing)"))
		fmt.Fprintf(cmd.OutOrStdout(), "  reply: %s\n", derefOr(r.Reply, "(missing)"))
	}
	if len(records) > n {
		fmt.Fprintf(cmd.OutOrStdout(), "... %d more records\n", len(records)-n)
	}
}

func derefOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

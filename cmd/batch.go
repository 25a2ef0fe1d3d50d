package main

import (
	"io/fs"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Molly166/LogParser/internal/export"
	"github.com/Molly166/LogParser/internal/parser"
)

var (
	batchFormat string
	batchOutDir string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract records from every log file in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		root := args[0]

		format := batchFormat
		if format == "" {
			format = cfg.Output.Format
		}
		if !export.ValidFormat(format) {
			return eris.Errorf("unsupported format %q", format)
		}
		outDir := batchOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		files, err := collectLogFiles(root, cfg.Batch.Extensions)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			zap.L().Info("no log files found", zap.String("dir", root))
			return nil
		}

		zap.L().Info("processing batch",
			zap.Int("files", len(files)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrentFiles),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentFiles)

		var succeeded, failed atomic.Int64

		for _, file := range files {
			file := file
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log := zap.L().With(zap.String("file", file))

				records, stats, err := parser.ParseFile(file)
				if err != nil {
					failed.Add(1)
					log.Error("parse failed", zap.Error(err))
					return nil // per-file failures do not abort the batch
				}

				output := defaultOutputPath(file, outDir, format)
				if err := writeRecords(output, format, records); err != nil {
					failed.Add(1)
					log.Error("write failed", zap.Error(err))
					return nil
				}

				succeeded.Add(1)
				log.Info("file complete",
					zap.String("output", output),
					zap.Int("processed", stats.Processed),
					zap.Int("skipped", stats.Skipped),
					zap.Int("recovered", stats.Recovered),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch interrupted")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format: json, csv, or txt")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "directory for output files (default next to each input)")
	rootCmd.AddCommand(batchCmd)
}

// collectLogFiles walks root and returns files whose extension is in exts.
func collectLogFiles(root string, exts []string) ([]string, error) {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[e] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if allowed[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "walk %s", root)
	}
	return files, nil
}

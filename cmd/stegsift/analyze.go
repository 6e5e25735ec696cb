package stegsift

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stegsift/stegsift/internal/config"
	"github.com/stegsift/stegsift/internal/engine"
	"github.com/stegsift/stegsift/internal/report"
	"github.com/stegsift/stegsift/internal/tui"
	"github.com/stegsift/stegsift/internal/update"
)

var (
	flagPath            string
	flagInclude         string
	flagExclude         string
	flagMaxBytes        int64
	flagBits            int
	flagStreamCap       int
	flagScalar          bool
	flagPatterns        []string
	flagMaxArchiveBytes int64
	flagMaxEntries      int
	flagTable           bool
	flagText            bool
	flagTUI             bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze images for hidden flags",
		RunE:  runAnalyze,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "image file or directory to analyze")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 20<<20, "skip files larger than this")
	cmd.Flags().IntVar(&flagBits, "bits", 4, "low bit positions probed per channel")
	cmd.Flags().IntVar(&flagStreamCap, "stream-cap", 2<<20, "max bytes per extracted bitplane stream")
	cmd.Flags().BoolVar(&flagScalar, "scalar", false, "use the scalar bit extractor instead of the batched one")
	cmd.Flags().StringArrayVar(&flagPatterns, "pattern", nil, "extra flag regex (repeatable)")
	cmd.Flags().Int64Var(&flagMaxArchiveBytes, "max-archive-bytes", 32<<20, "max decompressed bytes per carved archive")
	cmd.Flags().IntVar(&flagMaxEntries, "max-entries", 1000, "max entries per carved archive")
	cmd.Flags().BoolVar(&flagTable, "table", false, "output in table format with borders (default)")
	cmd.Flags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse results interactively")
}

func buildConfig(abs string) engine.Config {
	// Load configs: CLI > local > global
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	root := abs
	if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
		root = filepath.Dir(abs)
	}
	if c, err := config.LoadLocal(root); err == nil {
		lcfg = c
	}

	extras := flagPatterns
	if len(extras) == 0 {
		if len(lcfg.Patterns) > 0 {
			extras = lcfg.Patterns
		} else if len(gcfg.Patterns) > 0 {
			extras = gcfg.Patterns
		}
	}

	return engine.Config{
		Root:            abs,
		IncludeGlobs:    pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:    pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		MaxBytes:        pickInt64(flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes),
		Threads:         pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
		Bits:            pickInt(flagBits, lcfg.Bits, gcfg.Bits),
		StreamCap:       pickInt(flagStreamCap, lcfg.StreamCap, gcfg.StreamCap),
		Scalar:          pickBool(flagScalar, lcfg.Scalar, gcfg.Scalar),
		ExtraPatterns:   extras,
		MaxArchiveBytes: pickInt64(flagMaxArchiveBytes, lcfg.MaxArchiveBytes, gcfg.MaxArchiveBytes),
		MaxEntries:      pickInt(flagMaxEntries, lcfg.MaxEntries, gcfg.MaxEntries),
		NoCache:         pickBool(flagNoCache, lcfg.NoCache, gcfg.NoCache),
	}
}

func runBatch(cfg engine.Config) (*engine.BatchResult, error) {
	fi, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return engine.ScanDir(cfg)
	}
	res, err := engine.Analyze(cfg)
	if err != nil {
		return nil, err
	}
	return &engine.BatchResult{
		Results:      []*engine.Result{res},
		FilesScanned: 1,
		Duration:     res.Duration,
	}, nil
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	abs, _ := filepath.Abs(flagPath)
	cfg := buildConfig(abs)

	// Friendly banner before scanning
	if !flagJSON {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				_, _ = fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'stegsift --self-update' to upgrade\n", latest)
			}
		}
		if flagSelfUpdate {
			if err := selfUpdate(); err == nil {
				_, _ = fmt.Fprintln(os.Stderr, "updated to latest; re-run command")
				return nil
			}
		}
		_, _ = fmt.Fprintf(os.Stderr, "Analyzing %s...\n", abs)
	}

	batch, err := runBatch(cfg)
	if err != nil {
		return fmt.Errorf("analyze error: %w", err)
	}

	if flagTUI && !flagJSON {
		return tui.Run(batch.Results, func() ([]*engine.Result, error) {
			rescanCfg := cfg
			rescanCfg.NoCache = true
			b, err := runBatch(rescanCfg)
			if err != nil {
				return nil, err
			}
			return b.Results, nil
		})
	}

	opts := report.PrintOptions{
		NoColor:      flagNoColor,
		Duration:     batch.Duration,
		FilesScanned: batch.FilesScanned,
		FilesSkipped: batch.FilesSkipped,
	}

	switch {
	case flagJSON:
		if err := report.WriteJSON(os.Stdout, batch.Results); err != nil {
			return err
		}
	case flagTable:
		report.PrintTable(os.Stdout, batch.Results, opts)
	case flagText:
		report.PrintText(os.Stdout, batch.Results, opts)
	default:
		report.PrintTable(os.Stdout, batch.Results, opts)
	}
	return nil
}

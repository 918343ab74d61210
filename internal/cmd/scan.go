package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shadowai/shadowdetect/internal/reporter"
	"github.com/shadowai/shadowdetect/internal/scanner"
	"github.com/shadowai/shadowdetect/internal/ui"
)

var (
	scanMaxFiles  int
	scanRecursive bool
	scanIgnore    []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory of source files",
	Long: `Analyze the source files under a directory and report each one.

Examples:
  shadow-detect scan .
  shadow-detect scan --recursive --max-files 20 src/
  shadow-detect scan --format json . > report.json`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runScan,
	SilenceUsage: true,
}

func init() {
	scanCmd.Flags().IntVar(&scanMaxFiles, "max-files", 5, "Maximum number of files to analyze")
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "Descend into subdirectories")
	scanCmd.Flags().StringSliceVar(&scanIgnore, "ignore", nil, "Glob patterns to skip (repeatable)")
	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	u := GetUI()

	progress := u.StartProgress()
	defer func() {
		if progress != nil {
			progress.Done(nil)
		}
	}()

	if progress != nil {
		progress.SetStage(ui.StageLoadConfig)
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	if progress != nil {
		progress.SetStage(ui.StageCollectFiles)
		progress.SetOperation(absPath)
	}

	sc := &scanner.Scanner{
		Engine:    eng,
		MaxFiles:  scanMaxFiles,
		Recursive: scanRecursive,
		Ignore:    scanIgnore,
		OnFile: func(p string) {
			if progress != nil {
				progress.FileStart(p)
				progress.FileDone()
			}
		},
	}

	if progress != nil {
		progress.SetStage(ui.StageAnalyze)
		progress.SetFileCount(scanMaxFiles)
	}

	results, err := sc.Scan(cmd.Context(), absPath)
	if err != nil {
		return err
	}

	// Stop progress before reporting
	if progress != nil {
		progress.Done(nil)
		progress = nil
	}

	findings := make([]reporter.Finding, 0, len(results))
	for _, r := range results {
		f := reporter.Finding{
			Source:   r.Path,
			Language: r.Language,
			Err:      r.Err,
		}
		if r.Result != nil {
			f.Fidelity = r.Result.Fidelity
			f.Report = r.Result.Report
		}
		findings = append(findings, f)
	}

	return newReporter(u).Report(findings)
}

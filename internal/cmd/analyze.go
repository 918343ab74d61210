package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shadowai/shadowdetect/internal/reporter"
	"github.com/shadowai/shadowdetect/internal/scanner"
)

var analyzeLang string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single source file",
	Long: `Analyze one file and report how likely it is AI-generated.

Examples:
  shadow-detect analyze main.py
  shadow-detect analyze --format json handler.go`,
	Args:         cobra.ExactArgs(1),
	RunE:         runAnalyze,
	SilenceUsage: true,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeLang, "lang", "l", "", "Language hint (inferred from the extension when omitted)")
	RootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; use scan", path)
	}
	if info.Size() > scanner.MaxFileSize {
		return fmt.Errorf("%s exceeds the %d byte limit", path, scanner.MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	lang := analyzeLang
	if lang == "" {
		lang = scanner.LanguageForPath(path)
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	res, err := eng.Analyze(cmd.Context(), string(data), lang)
	if err != nil {
		return err
	}

	u := GetUI()
	return newReporter(u).Report([]reporter.Finding{{
		Source:   path,
		Language: res.Language,
		Fidelity: res.Fidelity,
		Report:   res.Report,
	}})
}

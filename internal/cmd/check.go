package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/shadowai/shadowdetect/internal/reporter"
)

var (
	checkText string
	checkLang string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check an inline code snippet",
	Long: `Analyze a code snippet passed directly on the command line.

Examples:
  shadow-detect check --text 'def process_data(data): ...'
  shadow-detect check --lang python --text "$(pbpaste)"`,
	RunE:         runCheck,
	SilenceUsage: true,
}

func init() {
	checkCmd.Flags().StringVarP(&checkText, "text", "t", "", "Code snippet to analyze (required)")
	checkCmd.Flags().StringVarP(&checkLang, "lang", "l", "", "Language hint (inferred when omitted)")
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkText == "" {
		return errors.New("--text is required")
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	res, err := eng.Analyze(cmd.Context(), checkText, checkLang)
	if err != nil {
		return err
	}

	u := GetUI()
	return newReporter(u).Report([]reporter.Finding{{
		Source:   "snippet",
		Language: res.Language,
		Fidelity: res.Fidelity,
		Report:   res.Report,
	}})
}

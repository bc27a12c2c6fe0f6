package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/question"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a corpus file and print the load report",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveCorpusPath(cmd)
		if err != nil {
			return err
		}

		corpus, report, err := question.LoadCorpus(path)
		if err != nil {
			return fmt.Errorf("load corpus: %w", err)
		}

		fmt.Printf("accepted: %d\n", report.Accepted)
		fmt.Printf("rejected: %d\n", len(report.Errors))
		fmt.Printf("warnings: %d\n", len(report.Warnings))

		for _, e := range report.Errors {
			fmt.Printf("  rejected %s\n", e.Error())
		}
		for _, w := range report.Warnings {
			fmt.Printf("  warning %s\n", w)
		}

		if !report.OK() {
			return fmt.Errorf("corpus has %d invalid record(s)", len(report.Errors))
		}
		fmt.Printf("corpus ok: %d questions\n", corpus.Len())
		return nil
	},
}

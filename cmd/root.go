package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/question"
)

var rootCmd = &cobra.Command{
	Use:   "qbank",
	Short: "Question bank indexing and selection engine",
	Long:  "qbank ingests question corpora, builds facet indexes, and serves constrained, reproducible quiz selections.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("corpus", "", "Path to corpus file (overrides QBANK_CORPUS env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to session-history database (overrides QBANK_DB env var)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(facetsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveCorpusPath returns the corpus path from --corpus, then QBANK_CORPUS.
func resolveCorpusPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("corpus"); p != "" {
		return p, nil
	}
	if p := os.Getenv("QBANK_CORPUS"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no corpus given: pass --corpus or set QBANK_CORPUS")
}

// loadCorpus loads and validates the corpus, printing load warnings and
// record errors to stderr. Record errors do not abort: the valid remainder
// of the corpus still loads.
func loadCorpus(cmd *cobra.Command) (*question.Corpus, error) {
	path, err := resolveCorpusPath(cmd)
	if err != nil {
		return nil, err
	}
	corpus, report, err := question.LoadCorpus(path)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	for _, w := range report.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintln(os.Stderr, "rejected:", e.Error())
	}
	return corpus, nil
}

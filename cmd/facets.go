package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/engine"
	"github.com/abhisek/qbank/internal/index"
)

var facetsCmd = &cobra.Command{
	Use:   "facets [kind]",
	Short: "List facet values and question counts",
	Long:  "Without arguments, lists every facet kind. With a kind (category, difficulty, type, tag, format), lists its values with counts.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loadCorpus(cmd)
		if err != nil {
			return err
		}
		eng := engine.New(corpus)

		kinds := index.Kinds()
		if len(args) == 1 {
			kind, ok := parseFacetKind(args[0])
			if !ok {
				return fmt.Errorf("unknown facet kind %q (known: %s)", args[0], kindNames())
			}
			kinds = []index.Kind{kind}
		}

		for _, kind := range kinds {
			counts := eng.FacetCounts(kind)
			fmt.Printf("%s (%d values)\n", kind, len(counts))
			for _, v := range eng.FacetValues(kind) {
				fmt.Printf("  %-40s %d\n", v, counts[v])
			}
		}
		return nil
	},
}

func parseFacetKind(s string) (index.Kind, bool) {
	for _, k := range index.Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func kindNames() string {
	var names []string
	for _, k := range index.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

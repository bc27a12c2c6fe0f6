package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded quiz sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-20s  %s\n", "ID", "Started", "Ended", "Served")
		fmt.Println(strings.Repeat("─", 90))
		for _, s := range sessions {
			ended := "-"
			if s.EndedAt != nil {
				ended = s.EndedAt.Format("2006-01-02 15:04:05")
			}
			served, err := st.SessionServed(cmd.Context(), s.ID)
			if err != nil {
				return fmt.Errorf("query served: %w", err)
			}
			fmt.Printf("%-36s  %-20s  %-20s  %d\n",
				s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), ended, len(served))
		}
		return nil
	},
}

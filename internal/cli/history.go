package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past unsubscribe attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			attempts, err := db.ListAttempts(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(toJSONAttempts(attempts))
			}

			if len(attempts) == 0 {
				fmt.Println("No attempts recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tDOMAIN\tOUTCOME\tMESSAGE")
			for _, a := range attempts {
				outcome := string(a.Classification)
				if a.Success {
					outcome = "ok (" + outcome + ")"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					a.CreatedAt.Format("2006-01-02 15:04"), a.Domain, outcome, a.Message)
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().IntVar(&limitFlag, "limit", 50, "maximum attempts to show")
	return cmd
}

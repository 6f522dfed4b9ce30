package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lu-zhengda/mailsweep/internal/domain"
	"github.com/lu-zhengda/mailsweep/internal/logger"
	"github.com/lu-zhengda/mailsweep/internal/provider/gmail"
	"github.com/lu-zhengda/mailsweep/internal/scan"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the mailbox for unsubscribe opportunities",
		Long:  "Scan recent mail for senders with unsubscribe links, grouped by sender domain.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			log, err := logger.New(debugFlag)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			limit := limitFlag
			if limit <= 0 {
				limit = cfg.Scan.Limit
			}

			client := newGmailClient()
			scanner := scan.New(client, gmail.ScanQuery(cfg.Scan.Filters), db, log)
			scanner.Start(cmd.Context(), limit)

			status := pollScan(scanner)
			if status.Error != "" {
				return fmt.Errorf("scan failed: %s", status.Error)
			}

			opps := scanner.Results()
			if jsonFlag {
				return printJSON(toJSONOpportunities(opps))
			}
			printOpportunities(opps)
			return nil
		},
	}
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "maximum messages to scan (defaults to config)")
	return cmd
}

// pollScan waits for the running scan, echoing progress to the terminal.
func pollScan(scanner *scan.Scanner) domain.ScanState {
	var last string
	for {
		status := scanner.Status()
		if !jsonFlag && status.Message != last {
			fmt.Printf("[%3d%%] %s\n", status.Progress, status.Message)
			last = status.Message
		}
		if status.Done {
			return status
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func printOpportunities(opps []domain.Opportunity) {
	if len(opps) == 0 {
		fmt.Println("No unsubscribe opportunities found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tCOUNT\tFROM\tLINK")
	for _, opp := range opps {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", opp.Domain, opp.Count, opp.From, opp.Link)
	}
	w.Flush()
}

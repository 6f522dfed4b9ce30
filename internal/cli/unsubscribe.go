package cli

import (
	"fmt"

	"github.com/lu-zhengda/mailsweep/internal/logger"
	"github.com/lu-zhengda/mailsweep/internal/safeurl"
	"github.com/lu-zhengda/mailsweep/internal/unsub"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUnsubscribeCmd() *cobra.Command {
	var (
		domainFlag string
		linkFlag   string
	)

	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Attempt one unsubscribe",
		Long:  "Attempt to unsubscribe from a sender using its unsubscribe link.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
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

			executor := unsub.New(safeurl.New(), cfg.HTTP.UserAgent, cfg.HTTP.RequestTimeout(), log)
			res := executor.Execute(cmd.Context(), domainFlag, linkFlag)

			if err := db.RecordAttempt(cmd.Context(), res, linkFlag); err != nil {
				log.Warn("failed to record attempt", zap.Error(err))
			}

			if jsonFlag {
				return printJSON(res)
			}
			if res.Success {
				fmt.Printf("%s: %s\n", res.Domain, res.Message)
			} else {
				fmt.Printf("%s: %s (%s)\n", res.Domain, res.Message, res.Classification)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&domainFlag, "domain", "", "sender domain being unsubscribed")
	cmd.Flags().StringVar(&linkFlag, "link", "", "unsubscribe link from the scan results")
	cmd.MarkFlagRequired("domain")
	return cmd
}

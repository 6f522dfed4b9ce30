package cli

import (
	"github.com/lu-zhengda/mailsweep/internal/logger"
	"github.com/lu-zhengda/mailsweep/internal/provider/gmail"
	"github.com/lu-zhengda/mailsweep/internal/safeurl"
	"github.com/lu-zhengda/mailsweep/internal/scan"
	"github.com/lu-zhengda/mailsweep/internal/server"
	"github.com/lu-zhengda/mailsweep/internal/unsub"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web server",
		Long:  "Serve the scan and unsubscribe API on a local address for the browser frontend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addrFlag)
		},
	}
	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (defaults to config)")
	return cmd
}

func runServe(addr string) error {
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

	client := newGmailClient()
	scanner := scan.New(client, gmail.ScanQuery(cfg.Scan.Filters), db, log)
	executor := unsub.New(safeurl.New(), cfg.HTTP.UserAgent, cfg.HTTP.RequestTimeout(), log)

	srv := server.New(scanner, executor, client, db, cfg.Scan.Limit, log)

	if addr == "" {
		addr = cfg.Server.Addr
	}
	return srv.Run(addr)
}

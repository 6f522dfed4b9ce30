package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lu-zhengda/mailsweep/internal/config"
	"github.com/lu-zhengda/mailsweep/internal/provider/gmail"
	"github.com/lu-zhengda/mailsweep/internal/store"
	"github.com/lu-zhengda/mailsweep/internal/store/sqlite"
	"github.com/spf13/cobra"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	// debugFlag lowers the log level and switches to console output.
	debugFlag bool
)

// accountID names the single keyring slot tokens are stored under.
const accountID = "default"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "mailsweep",
		Short:   "Bulk unsubscribe from mailing lists",
		Long:    "Scan a Gmail mailbox for newsletter senders and unsubscribe from them in bulk.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe("")
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("mailsweep %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	root.AddCommand(newServeCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newUnsubscribeCmd())
	root.AddCommand(newHistoryCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB creates the data directory and opens the SQLite database.
func openDB() (*sqlite.DB, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mailsweep.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newGmailClient creates a Gmail client backed by the OS keyring.
func newGmailClient() *gmail.Client {
	return gmail.New(accountID, store.NewKeyringTokenStore())
}

// resolveGmailCredentials sets Gmail OAuth credentials using the first
// available source: config file, then environment variables.
func resolveGmailCredentials(cfg *config.Config) error {
	if cfg.Gmail.ClientID != "" && cfg.Gmail.ClientSecret != "" {
		gmail.SetCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret)
		return nil
	}

	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		gmail.SetCredentials(clientID, clientSecret)
		return nil
	}

	return gmail.EnsureCredentials()
}

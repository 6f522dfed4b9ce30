package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Gmail authorization",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthSignOutCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize mailsweep to read Gmail metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			client := newGmailClient()
			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}

			email, err := client.Profile(cmd.Context())
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "login", Email: email})
			}
			fmt.Printf("Logged in as %s\n", email)
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authorization status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			client := newGmailClient()
			if !client.IsAuthenticated() {
				if jsonFlag {
					return printJSON(jsonAuthStatus{LoggedIn: false})
				}
				fmt.Println("Not logged in. Run 'mailsweep auth login'.")
				return nil
			}

			email, err := client.Profile(cmd.Context())
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAuthStatus{LoggedIn: true, Email: email})
			}
			fmt.Printf("Logged in as %s\n", email)
			return nil
		},
	}
}

func newAuthSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Remove the saved Gmail token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newGmailClient()
			if err := client.SignOut(); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "signout"})
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

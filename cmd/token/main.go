package main

import (
	"fmt"
	"os"
	"time"

	"phonecase/internal/auth"
	"phonecase/internal/config"
	"phonecase/internal/rbac"
	"phonecase/pkg/logger"

	"github.com/spf13/cobra"
)

// token mints an operator access token for the internal /call and /sms API.
func main() {
	var (
		subject string
		role    string
	)

	root := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the internal API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !rbac.Valid(role) {
				return fmt.Errorf("role must be %q or %q", rbac.RoleOperator, rbac.RoleAdmin)
			}

			authCfg, err := config.LoadAuth()
			if err != nil {
				return err
			}
			m, err := auth.NewManager(authCfg)
			if err != nil {
				return err
			}
			tok, err := m.Issue(time.Now(), subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	root.Flags().StringVar(&subject, "sub", "", "operator id carried in the token subject")
	root.Flags().StringVar(&role, "role", rbac.RoleOperator, "operator or admin")
	_ = root.MarkFlagRequired("sub")

	if err := root.Execute(); err != nil {
		logger.New(os.Getenv("APP_ENV")).Error("token command failed", "err", err)
		os.Exit(1)
	}
}

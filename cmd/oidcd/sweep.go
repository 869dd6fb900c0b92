package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/lifetime"
	"github.com/oidcd/oidcd/pkg/log"
)

// commandSweep applies each configured account's Death/PasswordDeath TTLs
// once and reports what is left loaded. A long-running deployment would
// call lifetime.Sweep on a timer instead; this command exists so an
// operator (or a cron job standing in for one) can run the same pass
// on demand.
func commandSweep(loggerFunc func() log.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Apply account lifetime TTLs once and report what remains loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFunc()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			now := time.Now()
			accounts := make([]*account.Account, 0, len(cfg.Accounts))
			for _, ac := range cfg.Accounts {
				a := ac.toAccount(now)
				if pw, ok := a.Password(now); ok {
					logger.Debugf("account %q password fingerprint %s", a.Name, lifetime.Fingerprint(pw.String()))
				}
				accounts = append(accounts, a)
			}

			reg := newMemoryRegistry(accounts)
			before := len(reg.Accounts())
			lifetime.Sweep(reg, now)
			after := reg.Accounts()

			logger.Infof("swept %d accounts, %d remain loaded", before, len(after))
			for _, a := range after {
				fmt.Fprintln(cmd.OutOrStdout(), a.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the oidcd config file")
	cmd.MarkFlagRequired("config")

	return cmd
}

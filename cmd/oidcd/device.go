package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oidcd/oidcd/internal/discovery"
	"github.com/oidcd/oidcd/internal/flow"
	"github.com/oidcd/oidcd/internal/ipc"
	"github.com/oidcd/oidcd/internal/transport"
	"github.com/oidcd/oidcd/pkg/log"
)

// commandDevice starts a device-authorization request (RFC 8628 §3.1) for
// one configured account and delivers the verification URI and user code a
// human must act on through an internal/ipc.PromptChannel. This command is
// one concrete surface onto that interface — an ipc.Stdio writing to the
// command's own stdout — the same way dex's cmd/dex subcommands are each a
// concrete surface onto the server package beneath them.
func commandDevice(loggerFunc func() log.Logger) *cobra.Command {
	var (
		configPath  string
		accountName string
		scopes      []string
	)

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Start a device-authorization request and print the verification URI and user code",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFunc()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			var accountCfg *AccountConfig
			for i := range cfg.Accounts {
				if cfg.Accounts[i].Name == accountName {
					accountCfg = &cfg.Accounts[i]
					break
				}
			}
			if accountCfg == nil {
				return fmt.Errorf("no such account %q", accountName)
			}

			a := accountCfg.toAccount(time.Now())

			timeout := parseDurationOrZero(accountCfg.ConnTimeout)
			if timeout <= 0 {
				timeout = transport.DefaultTimeout
			}
			client := transport.New(timeout)

			if !a.Issuer.Populated() {
				logger.Infof("running discovery for account %q", a.Name)
				if err := discovery.Discover(cmd.Context(), a, client); err != nil {
					return err
				}
			}

			deviceCode, auth, err := flow.RequestDeviceAuthorization(cmd.Context(), a, client, scopes)
			if err != nil {
				return err
			}

			logger.Infof("account %q: device_code expires in %s, poll every %s",
				a.Name, a.DevicePoll.ExpiresIn, a.DevicePoll.Interval)

			prompt := ipc.NewStdio(cmd.OutOrStdout())
			if err := prompt.DeliverDeviceCode(cmd.Context(), a.Name, auth); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device_code: %s\n", deviceCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the oidcd config file")
	cmd.Flags().StringVar(&accountName, "account", "", "name of the configured account to act on")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "override the account's configured scopes for this call")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("account")

	return cmd
}

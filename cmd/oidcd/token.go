package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oidcd/oidcd/internal/discovery"
	"github.com/oidcd/oidcd/internal/flow"
	"github.com/oidcd/oidcd/internal/ipc"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/orchestrator"
	"github.com/oidcd/oidcd/internal/transport"
	"github.com/oidcd/oidcd/pkg/log"
)

func commandToken(loggerFunc func() log.Logger) *cobra.Command {
	var (
		configPath   string
		accountName  string
		minValid     time.Duration
		forceNew     bool
		scopes       []string
		code         string
		redirectURI  string
		codeVerifier string
		deviceCode   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token for one configured account",
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

			opts := orchestrator.Options{
				MinValidPeriod: minValid,
				ScopeOverride:  scopes,
				ForceNewToken:  forceNew,
				Request: flow.Request{
					Code:         code,
					RedirectURI:  redirectURI,
					CodeVerifier: codeVerifier,
					DeviceCode:   deviceCode,
					// Lets the password flow prompt interactively (spec.md
					// §6) for a password whose TTL has lapsed, instead of
					// only ever skipping with OIDC_ECRED.
					Prompt: ipc.NewStdio(cmd.OutOrStdout()),
				},
			}

			tok, err := orchestrator.GetAccessToken(cmd.Context(), a, client, opts, time.Now())
			if err != nil {
				if oerr, ok := oidcerr.As(err); ok {
					return fmt.Errorf("%s: %s", oerr.Kind, oerr.Error())
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the oidcd config file")
	cmd.Flags().StringVar(&accountName, "account", "", "name of the configured account to act on")
	cmd.Flags().DurationVar(&minValid, "min-valid", time.Minute, "reuse a cached token only if it remains valid for at least this long")
	cmd.Flags().BoolVar(&forceNew, "force-new", false, "skip the cache and always run a flow")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "override the account's configured scopes for this call")
	cmd.Flags().StringVar(&code, "code", "", "authorization code to redeem (code flow)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect_uri to send with the code flow exchange")
	cmd.Flags().StringVar(&codeVerifier, "code-verifier", "", "PKCE code_verifier to send with the code flow exchange")
	cmd.Flags().StringVar(&deviceCode, "device-code", "", "device_code to redeem (device flow)")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("account")

	return cmd
}

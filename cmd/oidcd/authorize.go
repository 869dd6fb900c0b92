package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oidcd/oidcd/internal/discovery"
	"github.com/oidcd/oidcd/internal/flow"
	"github.com/oidcd/oidcd/internal/ipc"
	"github.com/oidcd/oidcd/internal/pkce"
	"github.com/oidcd/oidcd/internal/transport"
	"github.com/oidcd/oidcd/pkg/log"
)

// commandAuthorize starts the authorization_code grant (RFC 6749 §4.1.1)
// for one configured account: it generates a fresh RFC 7636 PKCE verifier
// and challenge, builds the authorization URL via flow.AuthorizationURL,
// and delivers it to the human through an internal/ipc.PromptChannel
// (here, an ipc.Stdio writing to the command's own stdout), the same way
// commandDevice delivers a device flow's verification URI and user code.
// The core never opens a browser or runs a redirect server (spec.md §1);
// this command only gets the human to the issuer's login page and prints
// the verifier an operator must then pass to `oidcd token --code-verifier`
// alongside whatever authorization code the redirect eventually yields.
func commandAuthorize(loggerFunc func() log.Logger) *cobra.Command {
	var (
		configPath  string
		accountName string
		redirectURI string
		state       string
		scopes      []string
	)

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Print the authorization URL to start the authorization_code grant for one account",
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

			if redirectURI == "" && len(a.RedirectURIs) > 0 {
				redirectURI = a.RedirectURIs[0]
			}

			verifier := pkce.NewVerifier()
			challenge := pkce.ChallengeS256(verifier)

			// A fresh high-entropy state token defends against CSRF on the
			// redirect callback; it needs no PKCE-specific property beyond
			// the randomness oauth2.GenerateVerifier already provides, so
			// internal/pkce's verifier generator is reused for it rather
			// than adding a second random-string helper.
			if state == "" {
				state = pkce.NewVerifier()
			}

			authURL, err := flow.AuthorizationURL(a, redirectURI, state, challenge, scopes)
			if err != nil {
				return err
			}

			prompt := ipc.NewStdio(cmd.OutOrStdout())
			if err := prompt.DeliverCode(cmd.Context(), a.Name, authURL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", state)
			fmt.Fprintf(cmd.OutOrStdout(), "code_verifier: %s\n", verifier)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the oidcd config file")
	cmd.Flags().StringVar(&accountName, "account", "", "name of the configured account to act on")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect_uri to request (defaults to the account's first configured redirectUri)")
	cmd.Flags().StringVar(&state, "state", "", "state value to send (defaults to a freshly generated one)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "override the account's configured scopes for this call")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("account")

	return cmd
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ghodss/yaml"

	"github.com/oidcd/oidcd/internal/account"
)

// Config is the on-disk configuration format, grounded on dex's
// cmd/dex/config.go Config/Validate pair: a single YAML document decoded
// through ghodss/yaml (YAML -> JSON -> struct, so account.FlowOrder's
// UnmarshalJSON runs unmodified) and checked all at once so a misconfigured
// deployment fails fast with every problem listed together, not one at a
// time across repeated runs.
type Config struct {
	LogLevel  string          `json:"logLevel"`
	LogFormat string          `json:"logFormat"`
	Accounts  []AccountConfig `json:"accounts"`
}

// AccountConfig is one configured account's static identity and policy.
// ClientSecret and Password are read as literal config values; an operator
// wanting them sourced from the environment sets ClientSecretEnv /
// PasswordEnv instead, mirroring dex's password.HashFromEnv pattern for
// keeping secrets out of the config file itself.
type AccountConfig struct {
	Name            string   `json:"name"`
	IssuerURL       string   `json:"issuerUrl"`
	ClientID        string   `json:"clientId"`
	ClientSecret    string   `json:"clientSecret"`
	ClientSecretEnv string   `json:"clientSecretEnv"`
	Scopes          []string `json:"scopes"`
	Audience        string   `json:"audience"`
	RedirectURIs    []string `json:"redirectUris"`
	TrustAnchorPath string   `json:"trustAnchorPath"`

	Username    string `json:"username"`
	Password    string `json:"password"`
	PasswordEnv string `json:"passwordEnv"`

	FlowOrder account.FlowOrder `json:"flowOrder"`

	DeathTTL    string `json:"deathTtl"`
	PasswordTTL string `json:"passwordTtl"`
	ConnTimeout string `json:"connTimeout"`
}

// Validate checks c for the problems that would prevent oidcd from
// starting, collecting every failure into one error instead of stopping at
// the first.
func (c Config) Validate() error {
	var checkErrors []string

	if len(c.Accounts) == 0 {
		checkErrors = append(checkErrors, "no accounts configured")
	}

	seen := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		label := a.Name
		if label == "" {
			label = fmt.Sprintf("accounts[%d]", i)
		}
		if a.Name == "" {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: no name specified", label))
		} else if seen[a.Name] {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: duplicate account name", label))
		}
		seen[a.Name] = true

		if a.IssuerURL == "" {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: no issuerUrl specified", label))
		}
		if a.ClientID == "" {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: no clientId specified", label))
		}
		if a.ClientSecret != "" && a.ClientSecretEnv != "" {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: cannot specify both clientSecret and clientSecretEnv", label))
		}
		if a.Password != "" && a.PasswordEnv != "" {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: cannot specify both password and passwordEnv", label))
		}
		if err := validateDuration(a.DeathTTL); err != nil {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: deathTtl: %v", label, err))
		}
		if err := validateDuration(a.PasswordTTL); err != nil {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: passwordTtl: %v", label, err))
		}
		if err := validateDuration(a.ConnTimeout); err != nil {
			checkErrors = append(checkErrors, fmt.Sprintf("%s: connTimeout: %v", label, err))
		}
	}

	if len(checkErrors) != 0 {
		return fmt.Errorf("invalid config:\n\t- %s", strings.Join(checkErrors, "\n\t- "))
	}
	return nil
}

func validateDuration(s string) error {
	if s == "" {
		return nil
	}
	_, err := time.ParseDuration(s)
	return err
}

func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// resolveSecret returns literal if set, else the value of the named
// environment variable (which may also be empty, e.g. for a public client
// with no secret at all).
func resolveSecret(literal, env string) string {
	if literal != "" {
		return literal
	}
	if env != "" {
		return os.Getenv(env)
	}
	return ""
}

func parseDurationOrZero(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// toAccount builds the runtime account.Account this configuration entry
// describes.
func (a AccountConfig) toAccount(now time.Time) *account.Account {
	acc := account.New(account.Identity{
		Name:         a.Name,
		IssuerURL:    a.IssuerURL,
		ClientID:     a.ClientID,
		ClientSecret: resolveSecret(a.ClientSecret, a.ClientSecretEnv),
		RedirectURIs: a.RedirectURIs,
		Scopes:       a.Scopes,
		Audience:     a.Audience,
	})
	acc.Issuer.TrustAnchorPath = a.TrustAnchorPath
	acc.FlowOrder = a.FlowOrder

	acc.Credentials.Username = a.Username
	if pw := resolveSecret(a.Password, a.PasswordEnv); pw != "" {
		acc.Credentials.Password = account.SensitiveString(pw)
		acc.Lifetime.HasPassword = true
		if ttl := parseDurationOrZero(a.PasswordTTL); ttl > 0 {
			acc.Lifetime.PasswordDeath = now.Add(ttl)
		}
	}
	if ttl := parseDurationOrZero(a.DeathTTL); ttl > 0 {
		acc.Lifetime.Death = now.Add(ttl)
	}

	return acc
}

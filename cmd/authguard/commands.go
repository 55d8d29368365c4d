package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/app"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the authguard command tree.
func NewRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:               "authguard",
		DisableAutoGenTag: true,
		Short:             "AuthGuard token exchange service",
		Long: `AuthGuard trades one credential for another: passwords, one time
passwords, TOTP codes and refresh tokens for signed access, ID and OIDC
tokens.

Configuration is read from the file given by --config (or AUTHGUARD_CONFIG)
and overridden by AUTHGUARD_* environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("AUTHGUARD_CONFIG"), "Path to a YAML configuration file")

	load := func() (*app.Application, error) {
		v, err := app.NewViper(configFile)
		if err != nil {
			return nil, err
		}
		cfg, err := app.LoadConfig(v)
		if err != nil {
			return nil, err
		}
		return app.New(cfg)
	}

	root.AddCommand(
		newServeCmd(load),
		newKeygenCmd(),
		newAccountCmd(load),
		newIssueCmd(load),
		newVersionCmd(),
	)
	return root
}

type loader func() (*app.Application, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return a.Run()
		},
	}
}

func newKeygenCmd() *cobra.Command {
	var (
		alg    string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate signing key material",
		Long: `Generate key material for a signing algorithm. Asymmetric algorithms
produce a PEM public and private key, HMAC algorithms a random secret.

Without --out the keys are printed to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pair, err := app.GenerateKeyPair(strings.ToUpper(alg))
			if err != nil {
				return err
			}

			if outDir == "" {
				out := cmd.OutOrStdout()
				if len(pair.PublicKey) > 0 {
					fmt.Fprintf(out, "%s\n", pair.PublicKey)
				}
				fmt.Fprintf(out, "%s\n", pair.PrivateKey)
				return nil
			}

			if err := os.MkdirAll(outDir, 0o750); err != nil {
				return err
			}
			privPath := filepath.Join(outDir, "private.pem")
			if len(pair.PublicKey) == 0 {
				privPath = filepath.Join(outDir, "secret")
			} else if err := os.WriteFile(filepath.Join(outDir, "public.pem"), pair.PublicKey, 0o644); err != nil { // #nosec G306 -- public key
				return err
			}
			if err := os.WriteFile(privPath, pair.PrivateKey, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s key material to %s\n", alg, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&alg, "alg", jwtx.RSA256, "Algorithm: HMAC256, HMAC512, RSA256, RSA512, EC256, EC512, EC256K")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the key files to")
	return cmd
}

func newAccountCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var input app.NewAccount
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with optional password credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Identifier != "" && input.Password == "" {
				return fmt.Errorf("--password is required with --identifier")
			}
			return withApp(load, func(ctx context.Context, a *app.Application) error {
				account, err := a.CreateAccount(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), account.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&input.Domain, "domain", "main", "Account domain")
	create.Flags().StringVar(&input.Identifier, "identifier", "", "Login identifier")
	create.Flags().StringVar(&input.Password, "password", "", "Password for the identifier")
	create.Flags().StringVar(&input.ExternalID, "external-id", "", "Id of the account in an upstream system")
	create.Flags().StringSliceVar(&input.Roles, "role", nil, "Role to grant (repeatable)")
	create.Flags().StringSliceVar(&input.Permissions, "permission", nil, "Permission to grant as group:name (repeatable)")

	cmd.AddCommand(create)
	return cmd
}

func newIssueCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue credentials for an existing account",
	}

	var (
		accountID string
		ttl       time.Duration
		digits    int
	)

	otp := &cobra.Command{
		Use:   "otp",
		Short: "Issue a one time password and print its exchange token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(load, func(ctx context.Context, a *app.Application) error {
				_, token, err := a.Issuer().IssueOTP(ctx, accountID, digits, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	otp.Flags().IntVar(&digits, "digits", 6, "Number of digits")

	passwordless := &cobra.Command{
		Use:   "passwordless",
		Short: "Issue a single use passwordless token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(load, func(ctx context.Context, a *app.Application) error {
				token, err := a.Issuer().IssuePasswordless(ctx, accountID, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}

	totp := &cobra.Command{
		Use:   "totp",
		Short: "Enroll a TOTP authenticator and print its otpauth URL and a linker token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(load, func(ctx context.Context, a *app.Application) error {
				key, err := a.Issuer().EnrollTOTP(ctx, accountID, accountID)
				if err != nil {
					return err
				}
				linker, err := a.Issuer().IssueTOTPLinker(ctx, accountID, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key.URL())
				fmt.Fprintln(cmd.OutOrStdout(), linker)
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{otp, passwordless, totp} {
		c.Flags().StringVar(&accountID, "account", "", "Account id")
		c.Flags().DurationVar(&ttl, "ttl", 5*time.Minute, "Validity period")
		_ = c.MarkFlagRequired("account")
		cmd.AddCommand(c)
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
		},
	}
}

// withApp runs fn against a freshly loaded application and closes it.
func withApp(load loader, fn func(context.Context, *app.Application) error) error {
	a, err := load()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, a)
}

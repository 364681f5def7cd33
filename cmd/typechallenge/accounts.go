package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typechallenge/internal/auth"
	"github.com/verte-zerg/typechallenge/internal/config"
	"github.com/verte-zerg/typechallenge/internal/report"
	"github.com/verte-zerg/typechallenge/internal/store"
)

var (
	registerName  string
	registerEmail string

	loginUser     string
	loginPassword string

	deleteYes bool
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; credentials are printed once",
		Args:  cobra.NoArgs,
		RunE:  runRegisterCmd,
	}
	cmd.Flags().StringVar(&registerName, "name", "", "display name")
	cmd.Flags().StringVar(&registerEmail, "email", "", "e-mail address")
	return cmd
}

func runRegisterCmd(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	svc := auth.NewService(st, auth.WriterNotifier{W: cmd.OutOrStdout()})
	res, err := svc.Register(cmd.Context(), registerName, registerEmail)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return fmt.Errorf("--name and --email are required")
	case errors.Is(err, auth.ErrEmailTaken):
		return fmt.Errorf("%s is already registered", strings.TrimSpace(registerEmail))
	case err != nil:
		return err
	}
	logErrf("To play as %s, set user = %q under [player] in %s\n", res.Username, res.Username, config.DefaultConfigPath())
	return nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials for an account",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginUser, "user", "", "username or e-mail")
	cmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if loginUser == "" {
		return fmt.Errorf("--user is required")
	}
	password := loginPassword
	if password == "" {
		if password, err = readPassword(cmd); err != nil {
			return err
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	profile, err := auth.NewService(st, nil).Login(cmd.Context(), loginUser, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return fmt.Errorf("invalid credentials")
		}
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s, %s)\n", profile.Name, profile.Username, profile.Email); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// readPassword prompts without echo on a terminal and reads a line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logErrf("Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		logErrln()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close db: %v\n", cerr)
				}
			}()
			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return report.RenderUsers(cmd.OutOrStdout(), users)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account and its progress",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteUserCmd,
	}
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "do not ask for confirmation")
	cmd.AddCommand(deleteCmd)
	return cmd
}

func runDeleteUserCmd(cmd *cobra.Command, args []string) error {
	username := args[0]
	_, cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if !deleteYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete %s and all their progress? [y/N] ", username))
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Aborted.")
			return nil
		}
	}
	b, err := openBackends(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.store.DeleteUser(cmd.Context(), username); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("no such user: %s", username)
		}
		return err
	}
	// The SQLite delete already removed local progress.
	if b.redis != nil {
		if err := b.redis.Delete(cmd.Context(), username); err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

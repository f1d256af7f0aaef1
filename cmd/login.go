package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const envPassword = "FURSA_PASSWORD"

func newLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: "login signs in to FursaConnect and stores the session cookie in the session file. " +
			"The password is read from " + envPassword + " or prompted for.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if strings.TrimSpace(email) == "" {
				fmt.Fprint(out, "Email: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			jar, err := backend.NewJar()
			if err != nil {
				return err
			}
			opts := cfg.BackendOptions()
			opts.Jar = jar
			client, err := backend.New(opts)
			if err != nil {
				return err
			}

			user, err := auth.New(client).Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := backend.SaveSession(cfg.SessionFile, client); err != nil {
				return err
			}

			name := email
			if user != nil && user.Name != "" {
				name = user.Name
			}
			fmt.Fprintf(out, "signed in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	if pw := os.Getenv(envPassword); pw != "" {
		return pw, nil
	}
	file, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", errors.New("password required: set " + envPassword + " or run login from a terminal")
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	data, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := backend.ClearSession(cfg.SessionFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := sessionBackend()
			if err != nil {
				return err
			}
			user, err := auth.New(session).CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				return errors.New("not signed in; run fursa login")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", user.Email, user.ID)
			return nil
		},
	}
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/fursa/accounts"
	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List connected social accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := sessionBackend()
			if err != nil {
				return err
			}

			list, err := accounts.New(session).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "no platforms connected")
				return nil
			}
			tbl := newTable("PLATFORM", "ACCOUNT", "PUBLISH")
			for _, acc := range list {
				publishable := "no"
				if acc.Publishable() {
					publishable = "yes"
				}
				tbl.addRow(acc.Platform.DisplayName(), acc.PlatformUserID, publishable)
			}
			return tbl.render(out)
		},
	}

	cmd.AddCommand(newConnectCommand(), newDisconnectCommand())
	return cmd
}

func newConnectCommand() *cobra.Command {
	var chatID string

	cmd := &cobra.Command{
		Use:   "connect <platform>",
		Short: "Connect a Telegram channel or chat",
		Long: "connect links a Telegram channel or chat to your FursaConnect profile. " +
			"Add the FursaConnect bot as an administrator first. " +
			"X and LinkedIn are connected through the FursaConnect dashboard.",
		Example:   "  fursa accounts connect telegram --chat @my_channel",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(fursa.Telegram)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := telegramOnly("connect", args[0]); err != nil {
				return err
			}

			session, err := sessionBackend()
			if err != nil {
				return err
			}
			userID, err := telegramUser(cfg, session)(cmd.Context())
			if err != nil {
				return err
			}
			if userID == "" {
				return errors.New("not signed in: run `fursa login` or set FURSA_USER_ID")
			}

			if err := accounts.New(session).ConnectTelegram(cmd.Context(), userID, chatID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Telegram connected")
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "Telegram chat id or @channel username")
	_ = cmd.MarkFlagRequired("chat")

	return cmd
}

func newDisconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "disconnect <platform>",
		Short:     "Disconnect the Telegram channel",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(fursa.Telegram)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := telegramOnly("disconnect", args[0]); err != nil {
				return err
			}

			session, err := sessionBackend()
			if err != nil {
				return err
			}
			if err := accounts.New(session).DisconnectTelegram(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Telegram disconnected")
			return nil
		},
	}
}

func telegramOnly(action, raw string) error {
	if p := fursa.ParsePlatform(raw); p != fursa.Telegram {
		return fmt.Errorf("cannot %s %s from the command line: use the FursaConnect dashboard", action, p.DisplayName())
	}
	return nil
}

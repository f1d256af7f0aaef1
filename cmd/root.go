/*
Copyright © 2025 fursaconnect

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"strings"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/config"
	"github.com/fursaconnect/fursa/internal/logutil"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	backendFlag string

	cfg config.Config
)

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fursa",
		Short: "Publish to your FursaConnect social accounts",
		Long: "fursa publishes posts to the social networks connected to your FursaConnect " +
			"account (X/Twitter, LinkedIn, Telegram) and shows your post history.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "FursaConnect API base URL (overrides FURSA_BACKEND_URL)")

	cmd.AddCommand(
		newPublishCommand(),
		newPostsCommand(),
		newAccountsCommand(),
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newCompletionCommand(),
	)

	return cmd
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	logutil.SetVerbose(verboseFlag)

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if b := strings.TrimSpace(backendFlag); b != "" {
		loaded.BackendURL = strings.TrimRight(b, "/")
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded
	logutil.Debugf("config loaded: backend=%s twitter_mode=%s session=%s", cfg.BackendURL, cfg.TwitterMode, cfg.SessionFile)
	return nil
}

// sessionBackend returns a client carrying the saved login cookies.
func sessionBackend() (*backend.Client, error) {
	jar, err := backend.LoadJar(cfg.SessionFile, cfg.BackendURL)
	if err != nil {
		return nil, err
	}
	opts := cfg.BackendOptions()
	opts.Jar = jar
	return backend.New(opts)
}

// anonymousBackend returns a client that sends no cookies.
func anonymousBackend() (*backend.Client, error) {
	return backend.New(cfg.BackendOptions())
}

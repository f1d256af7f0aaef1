package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/config"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/fursa/accounts"
	"github.com/fursaconnect/fursa/internal/fursa/auth"
	"github.com/fursaconnect/fursa/internal/fursa/linkedin"
	"github.com/fursaconnect/fursa/internal/fursa/posts"
	"github.com/fursaconnect/fursa/internal/fursa/publish"
	"github.com/fursaconnect/fursa/internal/fursa/telegram"
	"github.com/fursaconnect/fursa/internal/fursa/twitter"
	"github.com/fursaconnect/fursa/internal/logutil"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	targetAll       = "all"
	targetConnected = "connected"

	recorderDrainTimeout = 10 * time.Second
)

type publishOptions struct {
	message     string
	imagePaths  []string
	contentType string
	targets     []string
	dryRun      bool
}

func newPublishCommand() *cobra.Command {
	opts := &publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish [message]",
		Short: "Publish a post to the selected platforms",
		Long: "publish sends the same post to each selected platform, one platform at a time. " +
			"Provide your message as an argument, with --message, or on stdin.",
		Example: `  fursa publish "We are hiring!" --target linkedin --target telegram
  fursa publish -m "Launch day" --image ./banner.png --target all
  fursa publish -m "Highlights" --type carousel --image a.jpg --image b.jpg
  echo "Release shipped" | fursa publish --target connected`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Message text to post")
	cmd.Flags().StringArrayVar(&opts.imagePaths, "image", nil, "Path to an image to attach (repeatable, JPEG/PNG/GIF/WebP)")
	cmd.Flags().StringVar(&opts.contentType, "type", "", "Content type: text, image or carousel (default inferred from images)")
	cmd.Flags().StringSliceVarP(&opts.targets, "target", "t", []string{targetConnected}, "Platforms to post to (twitter, linkedin, telegram, all, or connected)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print actions without posting")
	cmd.Flags().SortFlags = false

	return cmd
}

func runPublish(cmd *cobra.Command, args []string, opts *publishOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	message, err := resolveMessage(cmd, opts.message, args)
	if err != nil {
		return err
	}

	images := make([]fursa.ImageAsset, 0, len(opts.imagePaths))
	for _, path := range opts.imagePaths {
		img, err := fursa.LoadImage(path)
		if err != nil {
			return err
		}
		images = append(images, img)
	}

	contentType, err := resolveContentType(opts.contentType, len(images))
	if err != nil {
		return err
	}

	session, err := sessionBackend()
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	session = session.WithRequestID(runID)

	targets, err := resolveTargets(ctx, opts.targets, accounts.New(session))
	if err != nil {
		return err
	}

	req := fursa.PublishRequest{
		Content: message,
		Type:    contentType,
		Images:  images,
		Targets: targets,
	}
	if err := publish.Validate(req); err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, session)
	if err != nil {
		return err
	}
	logutil.Debugf("adapters: %v", registry.Platforms())

	if opts.dryRun {
		printDryRun(out, req, registry.Platforms())
		return nil
	}

	recorder, err := posts.NewRecorder(session, cfg.RecorderWorkers)
	if err != nil {
		return err
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recorderDrainTimeout)
		defer cancel()
		if err := recorder.Close(drainCtx); err != nil {
			logutil.Warnf("%v", err)
		}
	}()

	logutil.Debugf("publish run %s: targets=%v type=%s images=%d", runID, targets, contentType, len(images))
	coordinator := publish.New(registry, recorder)
	result, err := coordinator.Publish(ctx, req, func(platform fursa.PlatformID) {
		fmt.Fprintf(out, "posting to %s...\n", platform.DisplayName())
	})
	if err != nil {
		return err
	}

	return report(out, result)
}

func buildRegistry(cfg config.Config, session *backend.Client) (*fursa.Registry, error) {
	var tw *twitter.Client
	if cfg.TwitterMode == config.TwitterModeDirect {
		direct, err := twitter.NewDirect(twitter.Config{
			APIKey:       cfg.Twitter.APIKey,
			APISecret:    cfg.Twitter.APISecret,
			AccessToken:  cfg.Twitter.AccessToken,
			AccessSecret: cfg.Twitter.AccessSecret,
		})
		if err != nil {
			return nil, err
		}
		tw = direct
	} else {
		tw = twitter.New(session)
	}

	anonymous, err := anonymousBackend()
	if err != nil {
		return nil, err
	}

	return fursa.NewRegistry(
		tw,
		linkedin.New(session),
		telegram.New(anonymous, telegramUser(cfg, session)),
	), nil
}

func telegramUser(cfg config.Config, session *backend.Client) telegram.UserIDFunc {
	if cfg.UserID != "" {
		return telegram.StaticUser(cfg.UserID)
	}
	return auth.New(session).CurrentUserID
}

func report(out io.Writer, result fursa.PublishResult) error {
	var errs []error
	for _, o := range result.Outcomes {
		if !o.Success {
			fmt.Fprintf(out, "failed to post to %s: %s\n", o.Platform.DisplayName(), o.Error)
			errs = append(errs, fmt.Errorf("%s: %s", o.Platform, o.Error))
			continue
		}
		if o.Note != "" {
			fmt.Fprintf(out, "posted to %s (%s)\n", o.Platform.DisplayName(), o.Note)
			continue
		}
		fmt.Fprintf(out, "posted to %s\n", o.Platform.DisplayName())
	}
	fmt.Fprintln(out, result.Summary())

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func printDryRun(out io.Writer, req fursa.PublishRequest, supported []fursa.PlatformID) {
	for _, target := range req.Targets {
		if !slices.Contains(supported, target) {
			fmt.Fprintf(out, "[dry-run] %s is not supported for posting\n", target)
			continue
		}
		fmt.Fprintf(out, "[dry-run] would post %s to %s: %q\n", req.Type, target, req.Content)
	}
	for _, img := range req.Images {
		fmt.Fprintf(out, "[dry-run] image: %s (%s, %d bytes)\n", img.Name, img.MediaType, len(img.Data))
	}
}

func resolveMessage(cmd *cobra.Command, flagValue string, args []string) (string, error) {
	message := flagValue

	if len(args) > 0 {
		if message != "" {
			return "", errors.New("provide the message either as an argument or with --message, not both")
		}
		message = strings.Join(args, " ")
	}

	if strings.TrimSpace(message) != "" {
		return strings.TrimSpace(message), nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return "", errors.New("message is required")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	message = strings.TrimSpace(string(data))

	if message == "" {
		return "", errors.New("message is required")
	}

	return message, nil
}

func resolveContentType(raw string, imageCount int) (fursa.ContentType, error) {
	if strings.TrimSpace(raw) != "" {
		return fursa.ParseContentType(raw)
	}
	switch {
	case imageCount == 0:
		return fursa.ContentText, nil
	case imageCount == 1:
		return fursa.ContentImage, nil
	default:
		return fursa.ContentCarousel, nil
	}
}

// accountLister is satisfied by *accounts.Client.
type accountLister interface {
	List(ctx context.Context) ([]accounts.Account, error)
}

// resolveTargets expands aliases and removes duplicates while keeping the
// order the user gave. Unknown names are kept so they show up as unsupported.
func resolveTargets(ctx context.Context, values []string, lister accountLister) ([]fursa.PlatformID, error) {
	result := make([]fursa.PlatformID, 0, len(values))
	seen := map[fursa.PlatformID]struct{}{}
	add := func(id fursa.PlatformID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	for _, raw := range values {
		id := fursa.ParsePlatform(raw)
		switch id {
		case "":
			continue
		case targetAll:
			for _, p := range fursa.PublishablePlatforms {
				add(p)
			}
		case targetConnected:
			connected, err := lister.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("load connected accounts: %w", err)
			}
			targets := accounts.ConnectedTargets(connected)
			if len(targets) == 0 {
				return nil, errors.New("no connected platforms; connect an account in the dashboard or pass --target")
			}
			for _, p := range targets {
				add(p)
			}
		default:
			add(id)
		}
	}

	if len(result) == 0 {
		return nil, &fursa.ValidationError{Field: "targets", Reason: "no platforms selected"}
	}
	return result, nil
}

package cmd

import (
	"fmt"

	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/fursa/posts"
	"github.com/spf13/cobra"
)

func newPostsCommand() *cobra.Command {
	var (
		platform string
		status   string
		query    string
	)

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List your post history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := sessionBackend()
			if err != nil {
				return err
			}

			list, err := posts.NewHistory(session).List(cmd.Context(), posts.Filter{
				Platform: fursa.ParsePlatform(platform),
				Status:   status,
				Query:    query,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "no posts found")
				return nil
			}
			tbl := newTable("PLATFORM", "STATUS", "PUBLISHED", "CONTENT")
			for _, p := range list {
				tbl.addRow(p.Platform.DisplayName(), p.Status, p.PublishedAt, firstLine(p.Content, 60))
			}
			return tbl.render(out)
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Only show posts for this platform")
	cmd.Flags().StringVar(&status, "status", "", "Only show posts with this status (published, scheduled, draft, failed)")
	cmd.Flags().StringVarP(&query, "search", "s", "", "Only show posts containing this text")

	return cmd
}

func firstLine(s string, width int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s
}

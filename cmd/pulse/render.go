package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulseui/pulse/pkg/render"
	"github.com/pulseui/pulse/pkg/wire"
)

func renderCmd() *cobra.Command {
	var (
		pretty bool
		page   bool
		title  string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a serialized tree to HTML",
		Long: `Render a JSON tree document to HTML.

Reads the wire-format JSON from the given file, or from stdin
when no file is given, and writes HTML to stdout.

Examples:
  pulse render tree.json
  cat tree.json | pulse render --pretty
  pulse render tree.json --page --title="My App"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			node, err := wire.Decode(data)
			if err != nil {
				return err
			}

			r := render.NewRenderer(render.Config{Pretty: pretty})
			if page {
				return r.RenderPage(os.Stdout, render.PageData{
					Title: title,
					Body:  node.ToVNode(),
				})
			}
			return r.ToWriter(os.Stdout, node.ToVNode())
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the HTML output")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the output in a full HTML document")
	cmd.Flags().StringVar(&title, "title", "", "Page title (with --page)")

	return cmd
}

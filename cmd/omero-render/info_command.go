package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ome/omero-cli-render/internal/omero"
	"github.com/ome/omero-cli-render/internal/render"
)

const infoLong = `Show details of the rendering settings of an image.

The syntax for specifying objects is: <object>:<id>
<object> can be Image, Project, Dataset, Plate or Screen.
Image is assumed if <object>: is omitted.

Examples:
  omero-render info Image:123
  omero-render info Image:123 --style=json
  omero-render get Image:123    # equivalent to info --style=json`

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "info <target>",
		Short: "Show details of a rendering setting",
		Long:  infoLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, ctx, args[0], style)
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "Output format: plain, yaml or json")
	return cmd
}

// newGetCommand is info with a JSON default, kept for compatibility with
// the classic command set.
func newGetCommand(ctx *commandContext) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "get <target>",
		Short: "Show rendering settings as a parseable document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, ctx, args[0], style)
		},
	}
	cmd.Flags().StringVar(&style, "style", "json", "Output format: plain, yaml or json")
	return cmd
}

func runInfo(cmd *cobra.Command, ctx *commandContext, targetArg, style string) error {
	target, err := omero.ParseTarget(targetArg)
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	style = resolveStyle(style, cfg.Output.Style)

	gateway, err := ctx.gateway()
	if err != nil {
		return err
	}
	images, err := gateway.ListImages(cmd.Context(), target)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found for %s", target)
	}
	if style == "json" && len(images) > 1 {
		return fmt.Errorf("json output is not supported for multiple images")
	}

	for _, imageID := range images {
		state, err := fetchState(cmd.Context(), gateway, imageID)
		if err != nil {
			return err
		}
		switch style {
		case "plain":
			fmt.Fprint(cmd.OutOrStdout(), render.FormatPlain(state))
		case "yaml":
			out, err := render.Marshal(render.Extract(state), render.StyleYAML)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "---")
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		case "json":
			out, err := render.Marshal(render.Extract(state), render.StyleJSON)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		default:
			return fmt.Errorf("unknown output style %q", style)
		}
	}
	return nil
}

// fetchState reads one image's settings through a scoped rendering handle.
func fetchState(ctx context.Context, gateway omero.Gateway, imageID int64) (*render.CurrentState, error) {
	service, err := gateway.OpenRendering(ctx, imageID)
	if err != nil {
		return nil, err
	}
	defer service.Close()
	return service.Fetch(ctx)
}

func resolveStyle(flag, configured string) string {
	if s := strings.ToLower(strings.TrimSpace(flag)); s != "" {
		return s
	}
	if s := strings.ToLower(strings.TrimSpace(configured)); s != "" {
		return s
	}
	return "plain"
}

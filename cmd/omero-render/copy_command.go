package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ome/omero-cli-render/internal/omero"
)

const copyLong = `Copy rendering settings to multiple objects.

The first argument is the source image, the following arguments are the
targets. Container targets are expanded to every image they hold.

Examples:
  omero-render copy Image:456 Image:222 Image:333
  omero-render copy Image:456 Plate:1
  omero-render copy Image:456 Dataset:1`

func newCopyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <source> <target>...",
		Short: "Copy rendering settings to multiple objects",
		Long:  copyLong,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := omero.ParseTarget(args[0])
			if err != nil {
				return err
			}
			if source.IsContainer() {
				return fmt.Errorf("copy source must be an image, got %s", source)
			}
			targets, err := omero.ParseTargets(args[1:])
			if err != nil {
				return err
			}

			gateway, err := ctx.gateway()
			if err != nil {
				return err
			}

			var imageIDs []int64
			seen := make(map[int64]bool)
			for _, target := range targets {
				images, err := gateway.ListImages(cmd.Context(), target)
				if err != nil {
					return err
				}
				for _, id := range images {
					if id == source.ID {
						fmt.Fprintf(cmd.ErrOrStderr(), "Skipping: Image:%d itself\n", id)
						continue
					}
					if !seen[id] {
						seen[id] = true
						imageIDs = append(imageIDs, id)
					}
				}
			}
			if len(imageIDs) == 0 {
				return fmt.Errorf("no images to copy to")
			}

			failed, err := gateway.CopySettings(cmd.Context(), source.ID, imageIDs)
			if err != nil {
				return err
			}
			for _, id := range imageIDs {
				if reason, ok := failed[id]; ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: Image:%d %v\n", id, reason)
				}
			}
			copied := len(imageIDs) - len(failed)
			fmt.Fprintf(cmd.OutOrStdout(), "Rendering settings successfully copied to %d images\n", copied)
			if len(failed) > 0 {
				return fmt.Errorf("copy failed for %d of %d images", len(failed), len(imageIDs))
			}
			return nil
		},
	}
	return cmd
}

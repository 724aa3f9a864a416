package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ome/omero-cli-render/internal/omero"
)

const testLong = `Test that underlying pixel data is available.

Output:
  <status>: Pixels:<pixels id> Image:<image id> <seconds> <error, if any>

where status is ok, miss, fill, or fail.

Examples:
  omero-render test Image:1
  omero-render test Dataset:1 --force`

func newTestCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "test <target>",
		Short: "Test that underlying pixel data is available",
		Long:  testLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := omero.ParseTarget(args[0])
			if err != nil {
				return err
			}
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

			failures := 0
			for _, imageID := range images {
				start := time.Now()
				check, err := gateway.CheckPixels(cmd.Context(), imageID, force)
				elapsed := time.Since(start).Seconds()
				if err != nil {
					failures++
					fmt.Fprintf(cmd.OutOrStdout(), "fail: Image:%d %.2f %v\n", imageID, elapsed, err)
					continue
				}
				if check.Status == "miss" || check.Status == "fail" {
					failures++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: Pixels:%d Image:%d %.2f %s\n",
					check.Status, check.PixelsID, imageID, elapsed, check.Error)
			}
			if failures > 0 {
				return fmt.Errorf("pixel data unavailable for %d of %d images", failures, len(images))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Force creation of missing pixel data on the server")
	return cmd
}

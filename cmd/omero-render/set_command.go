package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ome/omero-cli-render/internal/apply"
	"github.com/ome/omero-cli-render/internal/omero"
	"github.com/ome/omero-cli-render/internal/render"
)

const setLong = `Set rendering settings from a YAML or JSON definition.

The syntax for specifying objects is: <object>:<id>
<object> can be Image, Project, Dataset, Plate or Screen.
Image is assumed if <object>: is omitted.

Examples:
  omero-render set Image:1 settings.json
  omero-render set Dataset:1 settings.yml

The definition contains a channels key (required), a version (recommended,
current version: 2), optional default plane indices z and t (one-based), and
an optional greyscale key. Channels are keyed by one-based index:

  channels:
    1:
      color: "FF0000"
      label: "Red"
      start: 10.0
      end: 248.0
      active: true
    2:
      color: "00FF00"
  z: 5
  t: 1
  version: 2

Omitted fields keep their current values. Omitted channels are only
disabled when --disable is used. Specifying a channel activates it unless
active is explicitly false.`

func newSetCommand(ctx *commandContext) *cobra.Command {
	var disable bool
	var ignoreErrors bool
	var versionFlag int

	cmd := &cobra.Command{
		Use:   "set <target> <definition-file>",
		Short: "Set rendering settings",
		Long:  setLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := omero.ParseTarget(args[0])
			if err != nil {
				return err
			}

			// The document is fully validated before any service call.
			spec, err := render.ParseFile(args[1])
			if err != nil {
				return err
			}
			version, err := render.ResolveVersion(spec, render.Version(versionFlag))
			if err != nil {
				return err
			}
			spec.Version = version

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

			engine := apply.NewEngine(gateway, ctx.ensureLogger())
			report := engine.Run(cmd.Context(), spec, images, apply.Options{
				DisableUnspecified: disable,
				IgnoreErrors:       ignoreErrors,
			})

			printReport(cmd, report)
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("rendering settings failed for %d of %d images", len(failed), len(report.Results))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendering settings updated for %d images\n", len(report.Results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&disable, "disable", false, "Disable channels the definition does not specify")
	cmd.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "Do not error on mismatching rendering settings")
	cmd.Flags().IntVar(&versionFlag, "version", 0, "Force the definition version (1 or 2)")
	return cmd
}

// printReport writes the per-image outcome. Warnings and failures are
// always shown; the table form is used on a terminal.
func printReport(cmd *cobra.Command, report apply.Report) {
	rows := make([][]string, 0, len(report.Results))
	plain := true
	for _, result := range report.Results {
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: Image:%d %s\n", result.ImageID, warning)
		}
		if result.State != apply.StateCommitted {
			plain = false
		}
		rows = append(rows, []string{
			fmt.Sprintf("Image:%d", result.ImageID),
			string(result.State),
			detail,
		})
	}
	if plain {
		return
	}
	if isTerminal(cmd.OutOrStdout()) {
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Target", "State", "Error"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", row[0], row[1], row[2])
	}
}

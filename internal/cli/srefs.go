package cli

import (
	"github.com/spf13/cobra"

	gdsio "github.com/cloudcalvin/gdsutil/pkg/io"
	"github.com/cloudcalvin/gdsutil/pkg/pipeline"
)

// extractCommand creates the extract command group.
func (c *CLI) extractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract data from a stream file",
	}
	cmd.AddCommand(c.extractSrefsCommand())
	return cmd
}

// extractSrefsCommand creates the "extract srefs" subcommand.
func (c *CLI) extractSrefsCommand() *cobra.Command {
	var (
		input, output string
		lowerLeft     bool
		walk          walkFlags
	)

	cmd := &cobra.Command{
		Use:   "srefs [top]",
		Short: "List the struct references below top",
		Long: `List the struct references below top.

Each matching reference is reported with its parent, target, position,
rotation, scale and mirroring. The listing is written to --output as YAML,
TOML or JSON, chosen by the file extension, or to stdout as YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer r.Close()

			placements, err := r.Extract(cmd.Context(), pipeline.ExtractOptions{
				Input:     input,
				Output:    output,
				Walk:      c.walk(cmd, args[0], &walk),
				LowerLeft: lowerLeft,
			})
			if err != nil {
				return err
			}
			if output == "" {
				return gdsio.WritePlacements(cmd.OutOrStdout(), gdsio.FormatYAML, placements)
			}
			printSuccess("Extracted references below %s", args[0])
			printFile(output)
			printStats([]statCount{{len(placements), "references"}}, nil)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input stream file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "listing file (.yaml, .toml or .json; default: stdout)")
	cmd.Flags().BoolVar(&lowerLeft, "lower-left", false, "report lower-left corners of the placed targets instead of origins")
	walk.register(cmd)
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// replaceCommand creates the replace command group.
func (c *CLI) replaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Rewrite parts of a stream file",
	}
	cmd.AddCommand(c.replaceSrefsCommand())
	return cmd
}

// replaceSrefsCommand creates the "replace srefs" subcommand.
func (c *CLI) replaceSrefsCommand() *cobra.Command {
	var (
		input, output, table string
		walk                 walkFlags
	)

	cmd := &cobra.Command{
		Use:   "srefs [cell]",
		Short: "Rename the struct references below cell",
		Long: `Rename the struct references below cell.

The rename table maps old target names to new ones. It is read from a CSV
file with two columns and no header, or from a TOML or YAML file holding a
flat string map. Every matching reference must have an entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer r.Close()

			err = r.Replace(cmd.Context(), pipeline.ReplaceOptions{
				Input:  input,
				Output: output,
				Table:  table,
				Walk:   c.walk(cmd, args[0], &walk),
			})
			if err != nil {
				return err
			}
			printSuccess("Renamed references below %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input stream file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output stream file")
	cmd.Flags().StringVarP(&table, "replacements", "r", "", "rename table (.csv, .toml or .yaml)")
	walk.register(cmd)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("replacements")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/cloudcalvin/gdsutil/pkg/pipeline"
)

// snapCommand creates the snap command for snapping hierarchy geometry to a
// grid.
func (c *CLI) snapCommand() *cobra.Command {
	var (
		input, output string
		grid          int32
		walk          walkFlags
	)

	cmd := &cobra.Command{
		Use:   "snap [top]",
		Short: "Snap the hierarchy below top to a grid",
		Long: `Snap the hierarchy below top to a grid.

Every struct whose name starts with top is a root. Geometry in the visited
structs is snapped to the nearest multiple of --grid, ties rounding away
from zero, and the origins of references whose target matches a --pattern
are snapped too. Matching references are followed for --depth levels; the
default of 0 edits the root structs only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("grid") && c.Config.Grid > 0 {
				grid = c.Config.Grid
			}
			r, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer r.Close()

			opts := pipeline.SnapOptions{
				Input:  input,
				Output: output,
				Walk:   c.walk(cmd, args[0], &walk),
				Grid:   grid,
			}
			if err := r.Snap(cmd.Context(), opts); err != nil {
				return err
			}
			printSuccess("Snapped %s to a %d grid", args[0], grid)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input stream file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output stream file")
	cmd.Flags().Int32Var(&grid, "grid", 0, "grid size in database units")
	walk.register(cmd)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudcalvin/gdsutil/pkg/pipeline"
	"github.com/cloudcalvin/gdsutil/pkg/render"
)

// hierCommand creates the hier command, which draws the struct reference
// graph of a stream file.
func (c *CLI) hierCommand() *cobra.Command {
	var (
		output string
		format string
		opts   pipeline.HierarchyOptions
	)

	cmd := &cobra.Command{
		Use:   "hier [file.gds]",
		Short: "Draw the struct reference graph",
		Long: `Draw the struct reference graph.

Edges run from a struct to the structs it references and are labelled with
the reference count when it exceeds one. References to structs missing from
the library are drawn dashed and one reference cycle, if any, in red.

The graph is written as DOT, SVG, PDF or PNG. PDF needs rsvg-convert on
the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			opts.Format = render.Format(strings.ToLower(format))

			r, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer r.Close()

			data, cycle, err := r.Hierarchy(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if cycle != nil {
				printWarning("Reference cycle: %s", strings.Join(cycle, " → "))
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered hierarchy of %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatDOT), "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&opts.Top, "top", "t", "", "only draw structs reachable from this struct")
	cmd.Flags().BoolVar(&opts.LeftToRight, "left-to-right", false, "lay the graph out left to right")

	return cmd
}

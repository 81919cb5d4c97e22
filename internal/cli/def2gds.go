package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudcalvin/gdsutil/pkg/lefdef"
	"github.com/cloudcalvin/gdsutil/pkg/pipeline"
)

// def2gdsCommand creates the def2gds command for converting LEF/DEF designs.
func (c *CLI) def2gdsCommand() *cobra.Command {
	var (
		opts      pipeline.ImportOptions
		noCache   bool
		timestamp bool
	)

	cmd := &cobra.Command{
		Use:   "def2gds [top]",
		Short: "Convert a DEF design and its LEF libraries to a stream file",
		Long: `Convert a DEF design and its LEF libraries to a stream file.

Every LEF macro becomes a struct holding its pin and obstruction geometry
and its footprint on the outline layer. The design becomes the top struct,
named top, which must match the DESIGN name in the DEF file. LEF layers are
numbered from 1 in order of definition unless the config file assigns
numbers in its [layers] table.

Parsed LEF files are cached locally; use --no-cache to bypass the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Top = args[0]
			if !cmd.Flags().Changed("outline-layer") && c.Config.OutlineLayer != "" {
				opts.OutlineLayer = c.Config.OutlineLayer
			}
			if !cmd.Flags().Changed("outline-index") {
				opts.OutlineIndex = c.Config.OutlineIndex
			}
			opts.Layers = c.Config.Layers
			if timestamp {
				opts.Timestamp = time.Now()
			}

			r, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer r.Close()

			_, res, err := r.Import(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSuccess("Converted %s", res.Top)
			printFile(opts.Output)
			cached := res.CacheHits == len(opts.LEFs)
			printStats([]statCount{{len(opts.LEFs), "LEF files"}, {res.Structs, "structs"}}, &cached)
			if c.verbose {
				printTimings(res.Stats)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.DEF, "input", "i", "", "DEF file")
	cmd.Flags().StringArrayVarP(&opts.LEFs, "lef", "l", nil, "LEF file (repeatable, in load order)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output stream file")
	cmd.Flags().StringVar(&opts.OutlineLayer, "outline-layer", lefdef.DefaultOutlineLayer, "name of the footprint layer")
	cmd.Flags().Int16Var(&opts.OutlineIndex, "outline-index", 0, "stream layer number of the footprint layer")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "stamp the library with the current time instead of zero dates")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-parse LEF files and update the cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("lef")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

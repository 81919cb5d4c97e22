package cli

import (
	"github.com/spf13/cobra"
)

// printCommand creates the print command, which dumps a library as JSON.
func (c *CLI) printCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "print [file.gds]",
		Short: "Print a stream file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer r.Close()
			return r.Print(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

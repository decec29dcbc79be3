package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petrijr/sessionflow"
)

func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := sessionflow.DefaultCatalog()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, g := range cat.Groups() {
				fmt.Fprintf(w, "%s\n", g.Name)
				for _, action := range g.Actions {
					fmt.Fprintf(w, "  %s\t%s\n", action, cat.Title(action))
				}
			}
			return w.Flush()
		},
	}
}

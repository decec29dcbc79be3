package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the stored session record",
	}
	cmd.AddCommand(stateShowCmd(), stateClearCmd())
	return cmd
}

func stateShowCmd() *cobra.Command {
	var showSecret bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored session record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.sess.Store.Snapshot().Domain
			if d.Secret != "" && !showSecret {
				d.Secret = "********"
			}
			out, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSecret, "show-secret", false, "print the client secret in clear")
	return cmd
}

func stateClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the stored session record to its defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.sess.Store.ClearDomain()
			fmt.Fprintln(cmd.OutOrStdout(), "Session record cleared.")
			return nil
		},
	}
}

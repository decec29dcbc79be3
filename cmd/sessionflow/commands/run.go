package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petrijr/sessionflow/internal/headless"
	"github.com/petrijr/sessionflow/internal/qrscan"
	"github.com/petrijr/sessionflow/pkg/api"
)

func runCmd() *cobra.Command {
	var (
		qrFile string
		resp   headless.Responder
	)
	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Run one action and print its alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var scanner api.QRScanner
			if qrFile != "" {
				scanner = qrscan.NewFileScanner(qrscan.FixedPath(qrFile))
			}
			if err := a.register(scanner); err != nil {
				return err
			}
			a.configureSDK(ctx)
			resp.Attach(ctx, a.sess.Store)

			run, err := a.sess.Run(ctx, args[0])
			if run == nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), run.Message)
			return err
		},
	}
	cmd.Flags().StringVar(&qrFile, "qr-file", "", "image holding the QR code to scan")
	cmd.Flags().StringVar(&resp.Select, "select", "", "chooser item to pick (exact label or substring)")
	cmd.Flags().StringVar(&resp.Email, "email", "", "address for the email prompt")
	cmd.Flags().StringSliceVar(&resp.Statuses, "status", nil, "credential statuses for the filter")
	cmd.Flags().StringSliceVar(&resp.SchemaIDs, "schema", nil, "credential schema ids for the filter")
	return cmd
}

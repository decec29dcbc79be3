package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/petrijr/sessionflow"
	"github.com/petrijr/sessionflow/internal/qrscan"
	"github.com/petrijr/sessionflow/internal/tui"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run an interactive session in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			prompt := tui.NewPathPrompt()
			if err := a.register(qrscan.NewFileScanner(prompt.Ask)); err != nil {
				return err
			}
			a.configureSDK(ctx)

			model := tui.New(ctx, tui.Options{
				Store:   a.sess.Store,
				Runner:  a.sess,
				Catalog: sessionflow.DefaultCatalog(),
				Prompt:  prompt,
				Cancel:  a.sess.Executor.Cancel,
			})
			defer model.Close()

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go_ngxmgr/internal/app"
)

var renderFlags struct {
	out    string
	server uint64
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the composed nginx configuration",
	Long: `Load a snapshot of the entity store and print the composed configuration.
Nothing is checked or written unless --out is given. With --server only
the block of that server is printed, whether or not it is active.

Examples:
  ngxctl render
  ngxctl render --server 3
  ngxctl render --out /tmp/candidate.conf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			var candidate string
			var err error
			if renderFlags.server != 0 {
				candidate, err = a.ConfigService.PreviewServer(cmd.Context(), renderFlags.server)
			} else {
				candidate, err = a.ConfigService.Preview(cmd.Context())
			}
			if err != nil {
				return err
			}
			if renderFlags.out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), candidate)
				return err
			}
			if err := os.WriteFile(renderFlags.out, []byte(candidate), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", renderFlags.out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(candidate), renderFlags.out)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFlags.out, "out", "o", "", "write to file instead of stdout")
	renderCmd.Flags().Uint64Var(&renderFlags.server, "server", 0, "render only the server with this id")
}

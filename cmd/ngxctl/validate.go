package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go_ngxmgr/internal/app"
	"go_ngxmgr/internal/nginx"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compose the configuration and check it with nginx -t",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			_, err := a.ConfigService.Validate(cmd.Context())
			if err != nil {
				return reportRejection(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration accepted")
			return nil
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Compose, check, activate and reload",
	Long: `Compose the configuration, check it with nginx -t, swap it in as the live
file and run the reload command. A rejected candidate is never activated.
A failed reload leaves the new file in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			res, err := a.ConfigService.Apply(cmd.Context())
			if err != nil {
				if res != nil && res.Activated {
					fmt.Fprintf(cmd.ErrOrStderr(), "activated %s (%d bytes)\n", a.Config.Nginx.ConfPath, res.Bytes)
				}
				return reportRejection(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s (%d bytes, reloaded=%t)\n", a.Config.Nginx.ConfPath, res.Bytes, res.Reloaded)
			return nil
		})
	},
}

// reportRejection prints nginx diagnostics before returning err
func reportRejection(w io.Writer, err error) error {
	var rejected *nginx.RejectedError
	if errors.As(err, &rejected) && rejected.Diagnostics != "" {
		fmt.Fprintln(w, rejected.Diagnostics)
		return errors.New("configuration rejected")
	}
	return err
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(applyCmd)
}

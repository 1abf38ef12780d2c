package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosom/gmaps-favorites/browser"
	"github.com/gosom/gmaps-favorites/common/logger"
)

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Google in a browser window using the import profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := browser.NewPlaywrightWindow(browser.PlaywrightOptions{
				ProfileDir:      a.cfg.ProfileDir,
				InstallBrowsers: a.cfg.InstallBrowsers,
			})
			if err != nil {
				return err
			}

			defer func() {
				if err := w.Close(); err != nil {
					logger.Debug("browser close", "error", err)
				}
			}()

			if err := w.Login(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "profile saved to %s\n", a.cfg.ProfileDir)

			return nil
		},
	}

	cmd.Flags().Bool("install-browsers", false, "download the playwright browsers before starting")

	return cmd
}

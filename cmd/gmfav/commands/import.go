package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosom/gmaps-favorites/gmaps"
	"github.com/gosom/gmaps-favorites/runner"
	"github.com/gosom/gmaps-favorites/runner/importrunner"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import all saved places of the signed-in account.",
		Long: "Import reads every favorites folder of the Google account signed in to the\n" +
			"browser profile and writes the places located in Korea to the configured outputs.\n" +
			"Run `gmfav login` first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			r, err := importrunner.New(ctx, a.cfg)
			if err != nil {
				return err
			}

			defer func() {
				_ = r.Close(ctx)
			}()

			err = r.Run(ctx)
			if errors.Is(err, gmaps.ErrAuthenticationRequired) {
				return fmt.Errorf("%w: run `gmfav login` and sign in first", err)
			}

			return err
		},
	}

	flags := cmd.Flags()
	flags.String("engine", runner.EnginePlaywright, "browser engine: playwright or scrapemate")
	flags.Bool("headless", true, "run the browser without a window")
	flags.Bool("install-browsers", false, "download the playwright browsers before starting")
	flags.Bool("block-resources", true, "strip stylesheets from the map page once it is ready")
	flags.Duration("timeout", 5*time.Minute, "overall import timeout")
	flags.Duration("settle-delay", 2*time.Second, "wait after the map is ready before the session check")
	flags.StringSlice("formats", []string{"json"}, "output formats: json, csv, xlsx")
	flags.Bool("stdout", false, "write the json export to stdout")
	flags.Bool("disable-history", false, "do not record the import in the history database")
	flags.String("pg-dsn", "", "also record the import in this postgres database")
	flags.String("s3-bucket", "", "upload the json export to this S3 bucket")
	flags.String("s3-prefix", "", "key prefix inside the S3 bucket")
	flags.String("s3-region", "", "S3 region")
	flags.String("writer-plugin-dir", "", "directory with a Go plugin exporting a result writer")
	flags.String("writer-plugin-name", "Writer", "exported symbol of the plugin writer")

	return cmd
}

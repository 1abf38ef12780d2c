package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosom/gmaps-favorites/history"
	"github.com/gosom/gmaps-favorites/runner"
	"github.com/gosom/gmaps-favorites/store/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show, export or delete recorded imports.",
	}

	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryShowCmd(a),
		newHistoryExportCmd(a),
		newHistoryDeleteCmd(a),
	)

	return cmd
}

// withService opens the history database for the duration of fn.
func (a *app) withService(fn func(*history.Service) error) error {
	if a.cfg.DisableHistory {
		return errors.New("history is disabled")
	}

	repo, err := sqlite.New(a.cfg.HistoryDB)
	if err != nil {
		return err
	}

	defer repo.Close()

	return fn(history.NewService(repo, a.cfg.DataFolder))
}

func newHistoryListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded imports, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(func(s *history.Service) error {
				items, err := s.All(cmd.Context(), limit)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{
						it.ID,
						it.Source,
						it.StartedAt.Local().Format(timeLayout),
						it.FinishedAt.Sub(it.StartedAt).Round(time.Millisecond).String(),
						strconv.Itoa(it.Folders),
						strconv.Itoa(it.Items),
					})
				}

				return runner.PrintTable(cmd.OutOrStdout(),
					[]string{"ID", "SOURCE", "STARTED", "DURATION", "FOLDERS", "ITEMS"}, rows)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of imports to list")

	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the places of a recorded import.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(s *history.Service) error {
				imp, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				rows := make([][]string, 0, imp.ItemCount())
				for _, r := range imp.Rows() {
					rows = append(rows, []string{
						r.Folder,
						r.Name,
						strconv.FormatFloat(r.LatLng.Lat, 'f', 6, 64),
						strconv.FormatFloat(r.LatLng.Lng, 'f', 6, 64),
						r.Description,
					})
				}

				return runner.PrintTable(cmd.OutOrStdout(),
					[]string{"FOLDER", "NAME", "LAT", "LNG", "DESCRIPTION"}, rows)
			})
		},
	}
}

func newHistoryExportCmd(a *app) *cobra.Command {
	var (
		format string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a recorded import as csv or xlsx and print the file path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(s *history.Service) error {
				var (
					path string
					err  error
				)

				switch format {
				case "csv":
					path, err = s.GetCSV(cmd.Context(), args[0])
				case "xlsx":
					path, err = s.GetExcel(cmd.Context(), args[0], fields)
				default:
					return fmt.Errorf("unsupported export format %q", format)
				}

				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), path)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "xlsx columns to keep, e.g. name,lat,lng")

	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded import and its export files.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(s *history.Service) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])

				return nil
			})
		},
	}
}

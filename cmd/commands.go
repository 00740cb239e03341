package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nakambe-watch/nakambe-dashboard/internal/delivery"
	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
	"github.com/nakambe-watch/nakambe-dashboard/internal/maps"
	"github.com/nakambe-watch/nakambe-dashboard/internal/notification"
	"github.com/nakambe-watch/nakambe-dashboard/internal/properties"
	"github.com/nakambe-watch/nakambe-dashboard/internal/server"
	"github.com/nakambe-watch/nakambe-dashboard/internal/ui"
	"github.com/nakambe-watch/nakambe-dashboard/output"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nakambe",
		Short:         "Yearly NDVI/NDWI maps of the Nakambé basin",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if env := properties.LoadEnv(); env != "" {
				logging.Debugf("loaded %s", env)
			}
			logging.SetLevel(properties.LogLevel())
		},
	}
	root.AddCommand(
		newServeCmd(),
		newViewCmd(),
		newCompareCmd(),
		newPlotCmd(),
		newTimelapseCmd(),
		newCheckCmd(),
		newMenuCmd(),
	)
	return root
}

func loadDashboard() (*delivery.Dashboard, error) {
	return delivery.NewDashboard(delivery.OptionsFromEnv())
}

func success(cmd *cobra.Command, msg string) {
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), msg)
	if err := notification.SendDiscordSuccessNotification("Nakambé dashboard\n\n" + msg); err != nil {
		logging.Warnf("failed to send notification: %v", err)
	}
}

func warn(cmd *cobra.Command, msg string) {
	color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), msg)
}

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			if port == 0 {
				port = properties.Port()
			}
			printBanner()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(dash, properties.AllowedOrigins()).Run(ctx, fmt.Sprintf(":%d", port))
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default PORT or 8080)")
	return cmd
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <year>",
		Short: "Export the map of a year as Carte_<year>.png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			path, err := dash.ExportMap(args[0])
			if err != nil {
				if maps.IsUnavailable(err) {
					warn(cmd, fmt.Sprintf("L'image pour %s est introuvable ! Vérifiez le dossier %s.", args[0], dash.Viewer.Dir()))
					return nil
				}
				return err
			}
			success(cmd, fmt.Sprintf("Carte - %s: %s", args[0], path))
			return nil
		},
	}
}

func newCompareCmd() *cobra.Command {
	var opacity float64
	cmd := &cobra.Command{
		Use:   "compare <year1> <year2>",
		Short: "Blend the map of year2 over the map of year1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			path, res, err := dash.ExportComparison(args[0], args[1], opacity)
			if err != nil {
				return err
			}
			if res.Degraded() {
				for _, w := range res.Warnings {
					warn(cmd, w)
				}
				return nil
			}
			success(cmd, fmt.Sprintf("Comparaison %s vs %s: %s", args[0], args[1], path))
			return nil
		},
	}
	cmd.Flags().Float64Var(&opacity, "opacity", maps.DefaultOpacity, "opacity of the second map, between 0.1 and 1.0")
	return cmd
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Render the NDVI and NDWI evolution panels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			for _, a := range dash.Table.Anomalies() {
				warn(cmd, a.String())
			}
			path, err := dash.ExportChart()
			if err != nil {
				return err
			}
			success(cmd, fmt.Sprintf("Évolution des indices: %s", path))
			return nil
		},
	}
}

func newTimelapseCmd() *cobra.Command {
	var fps int32
	cmd := &cobra.Command{
		Use:   "timelapse",
		Short: "Write a Motion-JPEG timelapse of the yearly maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			path, skipped, err := dash.ExportTimelapse(fps)
			for _, y := range skipped {
				warn(cmd, fmt.Sprintf("L'image pour %s est introuvable, ignorée.", y))
			}
			if err != nil {
				return err
			}
			success(cmd, fmt.Sprintf("Timelapse: %s", path))
			return nil
		},
	}
	cmd.Flags().Int32Var(&fps, "fps", output.DefaultFPS, "frames per second")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var (
		workers int
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which yearly maps are present, missing or malformed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			report := dash.CheckAssets(workers, cmd.ErrOrStderr())
			fmt.Fprintln(cmd.ErrOrStderr())
			for _, s := range report.Statuses {
				if s.State == delivery.AssetPresent {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%dx%d\n", s.Year, s.State, s.Format, s.Width, s.Height)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.Year, s.State, s.Path)
			}
			if strict && !report.Complete() {
				return fmt.Errorf("%d of %d maps unavailable", len(report.Statuses)-report.Count(delivery.AssetPresent), len(report.Statuses))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "maps decoded concurrently")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a map is unavailable")
	return cmd
}

func newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive terminal menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := loadDashboard()
			if err != nil {
				return err
			}
			printBanner()
			ui.ShowMenu(dash)
			return nil
		},
	}
}

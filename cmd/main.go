package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachdehooge/mpg-dashboard/internal/cli/ui"
	"github.com/Zachdehooge/mpg-dashboard/internal/generator"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
)

var (
	cfgFile    string
	outputFile string
	verbose    bool
	interval   int
	watchMode  bool
	year       string
	showData   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mpg-dashboard",
		Short: "Explore fuel economy data as a reactive dashboard",
		Long: `mpg-dashboard loads the MPG dataset, applies the year and table widgets,
and renders scatter plots, a point map and a choropleth to a static HTML page.`,
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp(cmd)
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to start: %w", err))
				os.Exit(1)
			}
			defer a.close()

			exec, err := generateDashboardHTML(cmd, a)
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to generate dashboard: %w", err))
				os.Exit(1)
			}

			if watchMode {
				runWatchMode(cmd, exec)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "mpg-dashboard.html", "Output HTML file path")
	rootCmd.Flags().IntVarP(&interval, "interval", "i", 30, "Update interval in seconds (minimum 5)")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously regenerate the dashboard HTML")
	rootCmd.Flags().StringVar(&year, "year", pipeline.AllYears, "Year to select")
	rootCmd.Flags().BoolVar(&showData, "show-data", false, "Include the raw dataset table")

	addServeCmd(rootCmd)
	addListCmd(rootCmd)
	addExploreCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applySelection pushes the flag values through the widget store so they are
// validated like any other interaction.
func applySelection(exec *pipeline.Executor, year string, showData bool) error {
	if showData {
		if err := exec.Set(pipeline.ShowDataKey, strconv.FormatBool(showData)); err != nil {
			return err
		}
	}
	if year != "" && year != exec.Store().Get(pipeline.YearKey) {
		if err := exec.Set(pipeline.YearKey, year); err != nil {
			return fmt.Errorf("year %q: %w", year, err)
		}
	}
	return nil
}

// generateDashboardHTML renders the static page once and writes it.
func generateDashboardHTML(cmd *cobra.Command, a *app) (*pipeline.Executor, error) {
	if verbose {
		cmd.Println("Loading map sources...")
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Remote.Timeout*2)
	defer cancel()
	sources := a.loadSources(ctx, true)

	renderer, err := generator.NewHTMLRenderer(generator.Options{Refresh: refreshSeconds()})
	if err != nil {
		return nil, err
	}
	exec := a.newExecutor(renderer, sources)

	frame, err := exec.Run()
	if err != nil {
		return nil, err
	}
	if frame.Err != nil {
		ui.PrintWarning("%v", frame.Err)
	} else if err := applySelection(exec, year, showData); err != nil {
		return nil, err
	}

	if err := writeOutput(cmd, exec); err != nil {
		return nil, err
	}
	return exec, nil
}

func writeOutput(cmd *cobra.Command, exec *pipeline.Executor) error {
	if verbose {
		cmd.Println(fmt.Sprintf("Generating HTML to %s...", outputFile))
	}
	if err := generator.WriteHTML(outputFile, exec.Output()); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	ui.PrintSuccess("Dashboard saved to %s", outputFile)
	return nil
}

func refreshSeconds() int {
	if watchMode {
		return clampInterval()
	}
	return 0
}

func clampInterval() int {
	if interval < 5 {
		return 5
	}
	return interval
}

// runWatchMode reloads the dataset and rewrites the page on every tick.
func runWatchMode(cmd *cobra.Command, exec *pipeline.Executor) {
	every := clampInterval()
	cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", every))

	ticker := time.NewTicker(time.Duration(every) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := exec.Reload(); err != nil {
			cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
			continue
		}
		if err := writeOutput(cmd, exec); err != nil {
			cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
		}
	}
}

// addListCmd adds a 'list' subcommand to show the filtered data without
// generating HTML
func addListCmd(rootCmd *cobra.Command) {
	var (
		listYear string
		listShow bool
		maxRows  int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the filtered dataset and class means",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp(cmd)
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to start: %w", err))
				os.Exit(1)
			}
			defer a.close()

			sources := a.loadSources(context.Background(), false)
			exec := a.newExecutor(&ui.TerminalRenderer{MaxRows: maxRows}, sources)
			frame, err := exec.Run()
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to render: %w", err))
				os.Exit(1)
			}
			if frame.Err == nil {
				if err := applySelection(exec, listYear, listShow); err != nil {
					cmd.PrintErrln(fmt.Errorf("failed to apply selection: %w", err))
					os.Exit(1)
				}
			}

			cmd.OutOrStdout().Write(exec.Output())
			if exec.Frame().Err != nil {
				os.Exit(1)
			}
		},
	}
	listCmd.Flags().StringVar(&listYear, "year", pipeline.AllYears, "Year to select")
	listCmd.Flags().BoolVar(&listShow, "show-data", false, "Print the raw rows too")
	listCmd.Flags().IntVar(&maxRows, "max-rows", 50, "Cap on printed raw rows (0 for all)")

	rootCmd.AddCommand(listCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/mpg-dashboard/internal/cli/ui"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
)

// addExploreCmd adds an interactive terminal session driven by prompts
// instead of a browser.
func addExploreCmd(rootCmd *cobra.Command) {
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the dataset interactively in the terminal",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp(cmd)
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to start: %w", err))
				os.Exit(1)
			}
			defer a.close()

			exec := a.newExecutor(&ui.TerminalRenderer{MaxRows: 20, Widgets: true}, a.loadSources(context.Background(), false))
			frame, err := exec.Run()
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to render: %w", err))
				os.Exit(1)
			}
			if frame.Err != nil {
				cmd.OutOrStdout().Write(exec.Output())
				os.Exit(1)
			}

			if err := explore(cmd, exec); err != nil {
				if errors.Is(err, terminal.InterruptErr) {
					return
				}
				cmd.PrintErrln(fmt.Errorf("explore failed: %w", err))
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(exploreCmd)
}

func explore(cmd *cobra.Command, exec *pipeline.Executor) error {
	for {
		yearWidget, _ := exec.Store().Widget(pipeline.YearKey)
		var choice string
		if err := survey.AskOne(&survey.Select{
			Message: yearWidget.Label,
			Options: yearWidget.Options,
			Default: yearWidget.Value,
		}, &choice); err != nil {
			return err
		}
		if err := exec.Set(pipeline.YearKey, choice); err != nil {
			ui.PrintError("%v", err)
			continue
		}

		show := exec.Store().Bool(pipeline.ShowDataKey)
		if err := survey.AskOne(&survey.Confirm{
			Message: pipeline.ShowDataKey,
			Default: show,
		}, &show); err != nil {
			return err
		}
		if err := exec.Set(pipeline.ShowDataKey, strconv.FormatBool(show)); err != nil {
			ui.PrintError("%v", err)
			continue
		}

		ui.ClearScreen()
		cmd.OutOrStdout().Write(exec.Output())

		again := true
		if err := survey.AskOne(&survey.Confirm{
			Message: "Explore another selection?",
			Default: true,
		}, &again); err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

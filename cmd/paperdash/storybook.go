package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdash/internal/modules"
)

var storybookCmd = &cobra.Command{
	Use:   "storybook [paper-id]",
	Short: "Generate a storybook rendition of a paper",
	Long: `Storybook asks the backend to rewrite a paper as an illustrated
storybook. Generation happens server-side in one long exchange; on
success the command prints a signed URL for the finished artifact.`,
	Args: cobra.ExactArgs(1),
	RunE: runStorybook,
}

func init() {
	rootCmd.AddCommand(storybookCmd)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func runStorybook(cmd *cobra.Command, args []string) error {
	paperID := args[0]

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	job := modules.NewStorybook(client)

	spinner := getSpinner("generating storybook...")
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(120 * time.Millisecond):
				spinner.Add(1)
			}
		}
	}()

	res, err := job.Run(context.Background(), paperID)
	close(done)
	spinner.Finish()
	fmt.Print("\r")

	if err != nil {
		return err
	}

	color.Green("storybook ready")
	fmt.Println(res.SignedURL)
	return nil
}

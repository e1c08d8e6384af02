package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdash/internal/paper"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Manage papers on the backend (list, show, upload, delete)",
	Long: `Papers drives the backend's paper resource: list the dashboard inventory,
inspect one paper, upload new papers from files or URLs, and delete papers.
The backend owns all processing state; these commands only read and submit.`,
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all papers with their processing status",
	RunE:  runPapersList,
}

func runPapersList(cmd *cobra.Command, args []string) error {
	svc, err := newPaperService(cmd)
	if err != nil {
		return err
	}

	papers, err := svc.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No papers found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-10s  %-50s  %s\n", "ID", "Status", "Title", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, p := range papers {
		title := p.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-10s  %-50s  %s\n", p.ID, p.Status, title, created)
	}

	fmt.Fprintf(os.Stdout, "\n%d papers\n", len(papers))
	return nil
}

// --- show subcommand ---

var papersShowCmd = &cobra.Command{
	Use:   "show [paper-id]",
	Short: "Show one paper's record",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersShow,
}

func runPapersShow(cmd *cobra.Command, args []string) error {
	svc, err := newPaperService(cmd)
	if err != nil {
		return err
	}

	p, err := svc.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	fmt.Printf("ID:      %s\n", p.ID)
	fmt.Printf("Title:   %s\n", p.Title)
	fmt.Printf("Status:  %s\n", p.Status)
	if p.SourceURL != "" {
		fmt.Printf("Source:  %s\n", p.SourceURL)
	}
	if !p.CreatedAt.IsZero() {
		fmt.Printf("Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// --- upload subcommand ---

var papersUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload papers from files, URLs, or a manifest",
	Long: `Upload submits papers to the backend. A single upload takes --file and/or
--url, optionally with --dataset for an accompanying dataset file. A batch
upload takes --manifest pointing at a YAML file listing papers:

    papers:
      - file: attention.pdf
        dataset_file: glue.csv
      - source_url: https://arxiv.org/abs/2301.07041

Each upload is acknowledged by the backend and the full record re-fetched,
so the printed status is the backend's own.`,
	RunE: runPapersUpload,
}

func runPapersUpload(cmd *cobra.Command, args []string) error {
	svc, err := newPaperService(cmd)
	if err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath != "" {
		m, err := paper.ReadManifest(manifestPath)
		if err != nil {
			return err
		}
		summary, err := svc.UploadBatch(context.Background(), m.Papers, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d paper(s) failed upload", summary.Failed)
		}
		return nil
	}

	file, _ := cmd.Flags().GetString("file")
	url, _ := cmd.Flags().GetString("url")
	dataset, _ := cmd.Flags().GetString("dataset")

	if file == "" && url == "" {
		return fmt.Errorf("provide --file or --url (or --manifest for a batch)")
	}

	in := paper.UploadInput{File: file, SourceURL: url, DatasetFile: dataset}
	p, err := svc.Upload(context.Background(), in)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s -> %s (%s)\n", in.Label(), p.ID, p.Status)
	return nil
}

// --- delete subcommand ---

var papersDeleteCmd = &cobra.Command{
	Use:   "delete [paper-id]",
	Short: "Delete a paper from the backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersDelete,
}

func runPapersDelete(cmd *cobra.Command, args []string) error {
	svc, err := newPaperService(cmd)
	if err != nil {
		return err
	}

	if err := svc.Delete(context.Background(), args[0]); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func init() {
	papersListCmd.Flags().Bool("json", false, "output results as JSON")

	papersShowCmd.Flags().Bool("json", false, "output the record as JSON")

	papersUploadCmd.Flags().String("file", "", "local paper file to upload")
	papersUploadCmd.Flags().String("url", "", "source URL for the backend to fetch")
	papersUploadCmd.Flags().String("dataset", "", "local dataset file to attach")
	papersUploadCmd.Flags().String("manifest", "", "YAML manifest for a batch upload")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersShowCmd)
	papersCmd.AddCommand(papersUploadCmd)
	papersCmd.AddCommand(papersDeleteCmd)

	rootCmd.AddCommand(papersCmd)
}

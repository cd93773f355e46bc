package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// auditctl is a small operator CLI for the item-audit service. It talks to
// the service's operational API; it never touches the database directly.

var serverURL string

func main() {
	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Inspect and drive the item-audit service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the item-audit service")

	root.AddCommand(stagedCmd(), runsCmd(), triggerCmd())

	if err := root.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func stagedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "staged <check>",
		Short: "List barcodes currently staged for re-verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Check    string   `json:"check"`
				Count    int      `json:"count"`
				Barcodes []string `json:"barcodes"`
			}
			if err := getJSON("/api/v1/staged/"+args[0], &resp); err != nil {
				return err
			}

			color.Cyan("%s: %d staged", resp.Check, resp.Count)
			for _, b := range resp.Barcodes {
				fmt.Println(b)
			}
			return nil
		},
	}
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect batch re-verification runs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Runs []runView `json:"runs"`
			}
			if err := getJSON("/api/v1/runs", &resp); err != nil {
				return err
			}
			for _, r := range resp.Runs {
				printRun(r)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a single run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r runView
			if err := getJSON("/api/v1/runs/"+args[0], &r); err != nil {
				return err
			}
			printRun(r)
			return nil
		},
	})

	return cmd
}

func triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Start a sweep now instead of waiting for the schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Post(serverURL+"/api/v1/runs/trigger", "application/json", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				return fmt.Errorf("unexpected status %s", resp.Status)
			}
			color.Green("sweep started")
			return nil
		},
	}
}

type runView struct {
	ID        string    `json:"id"`
	CheckName string    `json:"check_name"`
	Status    string    `json:"status"`
	Cursor    int       `json:"cursor"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

func printRun(r runView) {
	status := color.YellowString(r.Status)
	switch r.Status {
	case "completed":
		status = color.GreenString(r.Status)
	case "in_progress":
		status = color.CyanString(r.Status)
	}
	fmt.Printf("%s  %-10s  %s  %d/%d  updated %s\n",
		r.ID, r.CheckName, status, r.Cursor, r.Total,
		r.UpdatedAt.Local().Format(time.RFC3339))
}

func getJSON(path string, out any) error {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

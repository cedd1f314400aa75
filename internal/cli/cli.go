// Package cli provides the command-line interface for dnshealth.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sudo-tiz/dnshealth-go/internal/api"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

const (
	// PackageVersion is the current version of the CLI
	PackageVersion = "1.0.0"

	// DefaultAPIURL is the default API server URL
	DefaultAPIURL = "http://localhost:5000"
	// DefaultPollInterval is the default interval for polling task status
	DefaultPollInterval = 500 * time.Millisecond
)

const (
	levelInfo = "ok"
	levelWarn = "warn"
	levelErr  = "error"
)

var (
	apiURL   string
	insecure bool
	debug    bool
	pretty   bool
	checks   []string
)

// NewRootCmd creates the root CLI command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dnshealth",
		Short:   "DNS health analysis tool",
		Long:    `A DNS health analysis tool that runs a battery of resolution, delegation, and authentication checks against a domain.`,
		Version: PackageVersion,
	}

	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "u", DefaultAPIURL, "Base URL of the API")
	rootCmd.PersistentFlags().BoolVarP(&insecure, "insecure", "i", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Show detailed error messages for failed checks")
	rootCmd.PersistentFlags().BoolVarP(&pretty, "pretty", "p", false, "Enable emoji-enhanced output")

	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewServerCommand())
	rootCmd.AddCommand(NewWorkerCommand())
	return rootCmd
}

// NewAnalyzeCommand creates the 'analyze' subcommand.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyze [domain]",
		Aliases: []string{"check", "a"},
		Short:   "Run a DNS health analysis",
		Long:    `Submit a domain for DNS health analysis and print the resulting report once it completes.`,
		Example: `  # Run every declared check
  dnshealth analyze example.com

  # Run a subset of checks
  dnshealth analyze --checks ns,soa,mx example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runAnalyze(args[0])
			if err != nil {
				cmd.PrintErrln(err)
				return nil
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&checks, "checks", nil, "Comma-separated subset of checks to run (default: all)")

	return cmd
}

func runAnalyze(domain string) error {
	fmt.Printf("Analyzing %s ", domain)
	if debug {
		fmt.Printf("\n\tAPI Base URL: %s\n", apiURL)
		fmt.Printf("\tTLS Skip Verify: %t\n", insecure)
		if len(checks) > 0 {
			fmt.Printf("\tChecks: %s\n", strings.Join(checks, ", "))
		}
		if insecure {
			fmt.Println("\tWARNING: TLS certificate verification is DISABLED - USE ONLY FOR TESTING")
		}
	}

	ctx := context.Background()
	client := api.NewClient(apiURL, 30*time.Second, insecure)

	taskID, err := client.EnqueueAnalyze(ctx, domain, checks)
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	if debug {
		fmt.Printf("\tTask ID: %s\n", taskID)
	}

	for {
		taskStatus, err := client.GetTaskStatus(ctx, taskID)
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}

		switch taskStatus.Status {
		case "SUCCESS":
			printReport(taskStatus.Result)
			return nil
		case "FAILURE":
			msg := "unknown error"
			if taskStatus.Error != nil {
				msg = *taskStatus.Error
			}
			fmt.Printf("\n\tAnalysis failed: %s\n", msg)
			return nil
		}

		fmt.Print(".")
		time.Sleep(DefaultPollInterval)
	}
}

func printReport(rep *report.Report) {
	if rep == nil {
		fmt.Println("\nNo report available")
		return
	}

	fmt.Printf("\n\nDomain: %s (TLD: %s) - %.1fms\n", rep.Domain, rep.TLD, rep.DurationMs)
	fmt.Printf("Summary: %d pass, %d warning, %d error, %d info (of %d checks)\n\n",
		rep.Summary.Passed, rep.Summary.Warnings, rep.Summary.Errors, rep.Summary.Info, rep.Summary.Total)

	for _, name := range rep.Checks.Names() {
		result, ok := rep.Checks.Get(name)
		if !ok {
			continue
		}
		logResult(levelFor(result.Status), fmt.Sprintf("%-16s %s", name, summaryLine(result)))
		if debug {
			for _, sc := range result.SubChecks {
				fmt.Printf("\t  - %s [%s] %s\n", sc.Name, sc.Status, sc.Message)
			}
			if result.Error != "" {
				fmt.Printf("\t  error: %s\n", result.Error)
			}
		}
	}
}

func summaryLine(result report.CheckResult) string {
	if len(result.Messages) > 0 {
		return strings.Join(result.Messages, "; ")
	}
	if result.Error != "" {
		return result.Error
	}
	return string(result.Status)
}

func levelFor(status report.Status) string {
	switch status {
	case report.StatusError:
		return levelErr
	case report.StatusWarning:
		return levelWarn
	default:
		return levelInfo
	}
}

func logResult(level, message string) {
	symbols := map[string][2]string{
		"ok":    {"✅ ", "[OK] "},
		"warn":  {"⚠️ ", "[WARN] "},
		"error": {"❌ ", "[FAILED] "},
	}

	symbol := "[???] "
	if syms, ok := symbols[level]; ok {
		if pretty {
			symbol = syms[0]
		} else {
			symbol = syms[1]
		}
	}

	fmt.Printf("%s%s\n", symbol, message)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand is an alias for backward compatibility.
func NewRootCommand() *cobra.Command {
	return NewRootCmd()
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/glrs/lighthouse/internal/app/system/dataaudit"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report per-PIR streaks, collection counts and data problems",
	Long: `Scan every user and their records and print a report.

The report lists document counts per collection, each PIR's check-in count,
current and longest streak and 30-day compliance, records that point at
missing users, and users with invalid fields.

Examples:
  lighthousectl audit
  lighthousectl audit --format yaml > audit.yaml
  lighthousectl audit --concurrency 16 --no-color`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		zone, _ := cmd.Flags().GetString("time-zone")

		if format != "table" && format != "yaml" {
			return fmt.Errorf("--format must be table or yaml, got %q", format)
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return fmt.Errorf("--time-zone: %w", err)
		}

		a := dataaudit.New(db, logger)
		a.DefaultLoc = loc
		if concurrency > 0 {
			a.Concurrency = concurrency
		}

		report, err := a.Run(cmd.Context())
		if err != nil {
			return err
		}

		if format == "yaml" {
			return dataaudit.WriteYAML(os.Stdout, report)
		}
		if err := dataaudit.WriteTable(os.Stdout, report, !color.NoColor); err != nil {
			return err
		}

		problems := len(report.Orphans) + len(report.UserIssues)
		if problems > 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(os.Stderr, "\n%s %d problem(s) found (run %s)\n", yellow("!"), problems, report.RunID)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().String("format", "table", "Output format: table or yaml")
	auditCmd.Flags().Int("concurrency", 0, "PIRs audited in parallel (default 8)")
	auditCmd.Flags().String("time-zone", envOr("default_time_zone", "America/New_York"), "Zone for users without one")
	rootCmd.AddCommand(auditCmd)
}

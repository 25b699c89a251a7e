package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/glrs/lighthouse/internal/app/system/addressmigrate"
	"github.com/glrs/lighthouse/internal/app/system/geocode"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var migrateAddressesCmd = &cobra.Command{
	Use:   "migrate-addresses",
	Short: "Geocode meeting addresses",
	Long: `Geocode meetings that have never been geocoded and store their
coordinates so the meeting list can sort by distance.

Failures are recorded on the meeting (not_found or error) and the run moves
on; rerun with --force to revisit them.

Examples:
  lighthousectl migrate-addresses --dry-run
  lighthousectl migrate-addresses --batch-size 25 --pause 2s
  lighthousectl migrate-addresses --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		pause, _ := cmd.Flags().GetDuration("pause")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")
		geoURL, _ := cmd.Flags().GetString("geocode-url")
		apiKey, _ := cmd.Flags().GetString("geocode-api-key")
		rps, _ := cmd.Flags().GetFloat64("rps")
		asYAML, _ := cmd.Flags().GetBool("yaml")

		geo, err := geocode.New(geoURL, apiKey, rps)
		if err != nil {
			return err
		}

		res, err := addressmigrate.New(db, geo, logger).Run(cmd.Context(), addressmigrate.Options{
			BatchSize: batchSize,
			Pause:     pause,
			DryRun:    dryRun,
			Force:     force,
		})
		if err != nil {
			return err
		}

		if asYAML {
			return yaml.NewEncoder(os.Stdout).Encode(res)
		}
		printMigrateResult(res, dryRun)
		return nil
	},
}

func printMigrateResult(res addressmigrate.Result, dryRun bool) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if dryRun {
		fmt.Println(yellow("dry run: nothing was written"))
	}
	fmt.Printf("scanned   %d in %d batch(es)\n", res.Scanned, res.Batches)
	fmt.Printf("geocoded  %s\n", green(strconv.Itoa(res.Geocoded)))
	fmt.Printf("not found %s\n", yellow(strconv.Itoa(res.NotFound)))
	fmt.Printf("skipped   %s\n", yellow(strconv.Itoa(res.Skipped)))
	fmt.Printf("failed    %s\n", red(strconv.Itoa(res.Failed)))
}

func init() {
	defaultRPS, err := strconv.ParseFloat(envOr("geocode_rps", "1"), 64)
	if err != nil {
		defaultRPS = 1
	}
	migrateAddressesCmd.Flags().Int("batch-size", 50, "Meetings per batch")
	migrateAddressesCmd.Flags().Duration("pause", time.Second, "Pause between batches")
	migrateAddressesCmd.Flags().Bool("dry-run", false, "Geocode but write nothing")
	migrateAddressesCmd.Flags().Bool("force", false, "Revisit meetings that already have a geocode status")
	migrateAddressesCmd.Flags().String("geocode-url", envOr("geocode_url", geocode.DefaultBaseURL), "Nominatim-compatible geocoder base URL")
	migrateAddressesCmd.Flags().String("geocode-api-key", envOr("geocode_api_key", ""), "Geocoder API key")
	migrateAddressesCmd.Flags().Float64("rps", defaultRPS, "Geocoder requests per second (0 = unpaced)")
	migrateAddressesCmd.Flags().Bool("yaml", false, "Print the result as YAML")
	rootCmd.AddCommand(migrateAddressesCmd)
}

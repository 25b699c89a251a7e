// Command lighthousectl runs maintenance tasks against a Lighthouse
// database: the data audit, the meeting address migration and issuing
// session cookies for API testing.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const envPrefix = "LIGHTHOUSE_"

var (
	mongoURI      string
	mongoDatabase string
	verbose       bool
	noColor       bool

	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lighthousectl",
	Short: "Lighthouse maintenance commands",
	Long: `Maintenance commands for a Lighthouse deployment.

Connection settings default to the same LIGHTHOUSE_* environment variables
the server reads (LIGHTHOUSE_MONGO_URI, LIGHTHOUSE_MONGO_DATABASE, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
			logger, err = cfg.Build()
		}
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetAppName("lighthousectl"))
		if err != nil {
			return fmt.Errorf("connect %s: %w", mongoURI, err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("ping %s: %w", mongoURI, err)
		}
		db = client.Database(mongoDatabase)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if client == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("mongo_uri", "mongodb://localhost:27017"), "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "database", envOr("mongo_database", "lighthouse"), "MongoDB database name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// envOr reads LIGHTHOUSE_<KEY>, falling back to def.
func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + strings.ToUpper(key))); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

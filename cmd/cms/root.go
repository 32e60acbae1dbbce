package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/blogcms/cms-api/internal/infrastructure/db/mongo"
	"github.com/blogcms/cms-api/internal/pkg/config"
	"github.com/blogcms/cms-api/pkg/logger"
)

const serviceName = "blog-cms"

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "cms",
		Short:        "Blog CMS API server and maintenance commands",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment (ignored when missing)")

	cmd.AddCommand(newServeCmd(), newSeedAdminCmd(), newEnsureIndexesCmd())
	return cmd
}

// loadEnvFile fills unset environment variables from path. Variables already
// in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// bootstrap loads the configuration and initialises the logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadWith(ctx, envconfig.OsLookuper())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})
	return cfg, log, nil
}

func mongoConfig(cfg *config.Config) mongo.Config {
	return mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	}
}

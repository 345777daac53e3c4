package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/sitepress"
	"github.com/eringen/sitepress/views"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "sitepress",
	Short:         "sitepress: a small blog engine built with Go, Echo, and templ",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return sitepress.New(cfg, views.Default()).Start()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		// NewStore migrates on open.
		store, err := sitepress.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		v, err := sitepress.MigrationVersion(store.DB())
		if err != nil {
			return err
		}
		slog.Info("database migrated", "path", cfg.DatabasePath, "version", v)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty database with demo content",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		store, err := sitepress.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := sitepress.Seed(context.Background(), store); err != nil {
			return err
		}
		slog.Info("database seeded", "path", cfg.DatabasePath)
		return nil
	},
}

var faviconCmd = &cobra.Command{
	Use:   "favicon <image>",
	Short: "Scale an image to a 32px favicon and set it on the site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		path, err := sitepress.SaveFavicon(cfg.StaticDir, f)
		if err != nil {
			return err
		}

		store, err := sitepress.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		site, err := store.SiteSetup(ctx)
		if err != nil {
			return err
		}
		site.Favicon = path
		if _, err := store.SaveSiteSetup(ctx, site); err != nil {
			return err
		}
		slog.Info("favicon updated", "path", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sitepress version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitepress %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading SITEPRESS_* variables")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, faviconCmd, versionCmd)
}

// setup loads the dotenv file, parses the config, and installs the logger
// as the slog default.
func setup() (sitepress.SiteConfig, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return sitepress.SiteConfig{}, fmt.Errorf("loading %s: %w", envFile, err)
	}
	cfg, err := sitepress.LoadConfig()
	if err != nil {
		return sitepress.SiteConfig{}, err
	}
	logger, err := sitepress.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return sitepress.SiteConfig{}, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

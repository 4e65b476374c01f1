package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the catalog from the product source",
	Long: `Fetch products from the configured source, embed their reference images,
save the catalog to CATALOG_SOURCE and publish a catalog event when Kafka is configured.`,
	RunE: runCatalogBuild,
}

var (
	buildTotal       int
	buildConcurrency int
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogBuildCmd)

	catalogBuildCmd.Flags().IntVar(&buildTotal, "total", 0, "Number of products to fetch (overrides BUILDER_TOTAL)")
	catalogBuildCmd.Flags().IntVar(&buildConcurrency, "concurrency", 0, "Parallel downloads (overrides BUILDER_CONCURRENCY)")
}

func runCatalogBuild(cmd *cobra.Command, _ []string) error {
	application, cfg, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = application.Close(context.Background()) }()

	if cmd.Flags().Changed("total") {
		cfg.Builder.Total = buildTotal
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Builder.Concurrency = buildConcurrency
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := application.BuildCatalog(ctx)
	if err != nil {
		log.Errorf(err, "catalog build failed")
		return err
	}

	log.Infof("Catalog built: %d products saved, %d failed", res.Saved, res.Failed)
	return nil
}

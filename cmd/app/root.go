package main

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/app"
	config "github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/spf13/cobra"
)

var log = logger.NewSlogLogger()

var rootCmd = &cobra.Command{
	Use:           "app",
	Short:         "Visual product matcher",
	Long:          "Search catalog products by visual similarity of their images.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP and gRPC servers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newApp загружает конфигурацию и подключает клиенты.
func newApp() (*app.App, *config.Config, error) {
	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return nil, nil, err
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return nil, nil, err
	}

	return application, cfg, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	application, _, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = application.Close(context.Background()) }()

	return application.Run()
}

package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"he-demo/api"
	"he-demo/config"
	"he-demo/logging"
)

var (
	confPath string
	listen   string
	logLevel string
)

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo page and JSON API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(confPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen = listen
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := logging.Setup(cfg.Log.Level); err != nil {
			return err
		}
		defer logging.Sync()

		return start(cfg)
	},
}

func init() {
	Cmd.Flags().StringVarP(&confPath, "config", "c", "", "Path to the YAML configuration file.")
	Cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "Address to listen on.")
	Cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error or none.")
}

func start(cfg *config.Conf) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := api.NewServer(cfg, nil)
	if err != nil {
		return err
	}
	logging.Infof("Stage timings: encrypt=%s send=%s compute=%s",
		cfg.Stages.Encrypt.D(), cfg.Stages.Send.D(), cfg.Stages.Compute.D())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logging.Infof("Shutdown complete.")
	return nil
}

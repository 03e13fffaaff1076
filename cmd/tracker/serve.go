package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/server"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server exposing authentication, application list and profile endpoints.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") || cfg.Port == 0 {
				cfg.Port = port
			}

			log, err := opts.logger(cmd, cfg, cfg.LogLevel)
			if err != nil {
				return err
			}

			env, err := config.LoadServerEnv()
			if err != nil {
				return err
			}
			jwtConfig, err := config.NewJWTConfig()
			if err != nil {
				return fmt.Errorf("failed to create JWT config: %w", err)
			}
			passwordConfig, err := config.NewPasswordConfig()
			if err != nil {
				return fmt.Errorf("failed to create password config: %w", err)
			}

			client, closeStore, err := storeOpener(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			var metrics *observability.Metrics
			if env.MetricsEnabled {
				metrics = observability.NewMetrics()
			}

			srv, err := server.New(server.Config{
				Port:     cfg.Port,
				Store:    client,
				Logger:   log.WithField("component", "server"),
				Metrics:  metrics,
				JWT:      jwtConfig,
				Password: passwordConfig,
			})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			log.WithField("store", cfg.Store).Info("starting tracker API")
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	return cmd
}
